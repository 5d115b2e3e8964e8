package result

import "sort"

// Source is a network-backed search source.
type Source string

// Search sources worth querying for a given intent.
const (
	Products Source = "product"
	Content  Source = "content"
)

// Plan is the set of network sources to query. The zero Plan is empty.
type Plan struct {
	products bool
	content  bool
}

// NewPlan builds a plan from sources. Unknown sources are ignored.
func NewPlan(sources ...Source) Plan {
	var p Plan
	for _, s := range sources {
		switch s {
		case Products:
			p.products = true
		case Content:
			p.content = true
		}
	}
	return p
}

// Includes reports whether the plan names source s.
func (p Plan) Includes(s Source) bool {
	switch s {
	case Products:
		return p.products
	case Content:
		return p.content
	}
	return false
}

// Sources lists the included sources in a stable order.
func (p Plan) Sources() []Source {
	var out []Source
	if p.products {
		out = append(out, Products)
	}
	if p.content {
		out = append(out, Content)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsEmpty reports whether no network source is planned.
func (p Plan) IsEmpty() bool { return !p.products && !p.content }

// Product is a product summary returned by the product search service.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Post is a blog post summary returned by the content search service.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

// Community is a local community match against the sport catalog.
type Community struct {
	Title   string `json:"title"`
	Imagery string `json:"imagery,omitempty"`
	Path    string `json:"path"`
}

// StaticPage is a local match against the static page directory.
type StaticPage struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Set is the aggregated result of one query. Each list may be empty independently.
type Set struct {
	Products    []Product    `json:"products"`
	Content     []Post       `json:"content"`
	Communities []Community  `json:"communities"`
	StaticPages []StaticPage `json:"static_pages"`
}

// IsEmpty reports whether all four lists are empty.
func (s Set) IsEmpty() bool {
	return len(s.Products) == 0 && len(s.Content) == 0 &&
		len(s.Communities) == 0 && len(s.StaticPages) == 0
}

// Normalize replaces nil lists with empty ones so JSON renders [] instead of null.
func (s Set) Normalize() Set {
	if s.Products == nil {
		s.Products = []Product{}
	}
	if s.Content == nil {
		s.Content = []Post{}
	}
	if s.Communities == nil {
		s.Communities = []Community{}
	}
	if s.StaticPages == nil {
		s.StaticPages = []StaticPage{}
	}
	return s
}
