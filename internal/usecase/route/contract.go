package route

import "github.com/kailas-cloud/intentsearch/internal/domain/catalog"

// SportLookup finds a community by its sport title.
type SportLookup interface {
	SportByTitle(title string) (catalog.Sport, bool)
}
