// Package catalog holds the static, in-process reference data the engine
// matches against without a network round trip: the sport/community catalog,
// the static page directory, the autocomplete term dictionary and the
// trending terms shown for gibberish or empty results.
package catalog

import (
	"slices"

	"github.com/kailas-cloud/intentsearch/internal/domain/text"
)

// Sport is a community known to exist.
type Sport struct {
	Title   string `yaml:"title"`
	Imagery string `yaml:"imagery"`
}

// Page is a static page of the storefront.
type Page struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Catalog bundles the reference data. Treat as read-only after construction.
type Catalog struct {
	Sports   []Sport
	Pages    []Page
	Terms    []string
	Trending []string
}

// SportByTitle returns the sport whose title equals title, ignoring case and surrounding space.
func (c *Catalog) SportByTitle(title string) (Sport, bool) {
	for _, s := range c.Sports {
		if text.EqualFold(s.Title, title) {
			return s, true
		}
	}
	return Sport{}, false
}

// TrendingTerms returns a copy of the trending list.
func (c *Catalog) TrendingTerms() []string {
	return slices.Clone(c.Trending)
}

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return &Catalog{
		Sports:   slices.Clone(defaultSports),
		Pages:    slices.Clone(defaultPages),
		Terms:    slices.Clone(defaultTerms),
		Trending: slices.Clone(defaultTrending),
	}
}

var defaultSports = []Sport{
	{Title: "Running", Imagery: "/images/sports/running.jpg"},
	{Title: "Trail Running", Imagery: "/images/sports/trail-running.jpg"},
	{Title: "Yoga", Imagery: "/images/sports/yoga.jpg"},
	{Title: "Cycling", Imagery: "/images/sports/cycling.jpg"},
	{Title: "Basketball", Imagery: "/images/sports/basketball.jpg"},
	{Title: "Football", Imagery: "/images/sports/football.jpg"},
	{Title: "Tennis", Imagery: "/images/sports/tennis.jpg"},
	{Title: "Swimming", Imagery: "/images/sports/swimming.jpg"},
	{Title: "Hiking", Imagery: "/images/sports/hiking.jpg"},
	{Title: "Rock Climbing", Imagery: "/images/sports/rock-climbing.jpg"},
	{Title: "Boxing", Imagery: "/images/sports/boxing.jpg"},
	{Title: "Skateboarding", Imagery: "/images/sports/skateboarding.jpg"},
}

var defaultPages = []Page{
	{Name: "About", Path: "/about"},
	{Name: "Contact", Path: "/contact"},
	{Name: "FAQ", Path: "/faq"},
	{Name: "Shipping", Path: "/shipping"},
	{Name: "Returns", Path: "/returns"},
	{Name: "Privacy", Path: "/privacy"},
	{Name: "Terms", Path: "/terms"},
	{Name: "Careers", Path: "/careers"},
}

var defaultTerms = []string{
	"running shoes",
	"running shorts",
	"running jacket",
	"trail running shoes",
	"yoga mat",
	"yoga pants",
	"yoga blocks",
	"cycling helmet",
	"cycling gloves",
	"basketball shoes",
	"basketball",
	"football boots",
	"tennis racket",
	"tennis balls",
	"swimming goggles",
	"swimsuit",
	"hiking boots",
	"hiking backpack",
	"climbing shoes",
	"chalk bag",
	"boxing gloves",
	"skateboard",
	"sports bra",
	"water bottle",
	"gym bag",
}

var defaultTrending = []string{
	"running shoes",
	"yoga mat",
	"hiking boots",
	"tennis racket",
	"boxing gloves",
}
