package facet

import "fmt"

// SortBy selects the facet value ordering.
type SortBy string

// Facet orderings.
const (
	ByCount    SortBy = "count"
	ByLabel    SortBy = "label"
	ByNumValue SortBy = "numericValue"
)

// Order is the facet sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// DefaultMax is the value count used when a group declares none.
const DefaultMax = 10

// Config declares one summary group.
type Config struct {
	// Name is the plural display name of the group.
	Name string `yaml:"name"`
	// Item names a single entry of the group.
	Item string `yaml:"item"`
	// Path is the taxonomy category path counted for the group.
	Path       string `yaml:"path"`
	Max        int    `yaml:"max"`
	SortBy     SortBy `yaml:"sort_by"`
	Order      Order  `yaml:"sort_order"`
	Translator string `yaml:"translator"`
}

// Normalize fills defaults.
func (c *Config) Normalize() {
	if c.Max <= 0 {
		c.Max = DefaultMax
	}
	if c.SortBy == "" {
		c.SortBy = ByCount
	}
	if c.Order == "" {
		c.Order = Desc
	}
	if c.Item == "" {
		c.Item = c.Path
	}
	if c.Name == "" {
		c.Name = c.Path + "s"
	}
}

// Validate checks a normalized config.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("facet path is required")
	}
	switch c.SortBy {
	case ByCount, ByLabel, ByNumValue:
	default:
		return fmt.Errorf("facet %q: invalid sort_by %q", c.Path, c.SortBy)
	}
	switch c.Order {
	case Asc, Desc:
	default:
		return fmt.Errorf("facet %q: invalid sort_order %q", c.Path, c.Order)
	}
	return nil
}

// Request asks the engine for the top Max values of a category path.
type Request struct {
	Path string
	Max  int
}

// Requests builds engine requests in declaration order.
func Requests(cfgs []Config) []Request {
	out := make([]Request, len(cfgs))
	for i, c := range cfgs {
		out[i] = Request{Path: c.Path, Max: c.Max}
	}
	return out
}

// Entry is one value of a summary group.
type Entry struct {
	Value string `json:"name"`
	Count string `json:"count"`
	Label string `json:"label,omitempty"`
}

// Group is the rendered summary of one facet.
type Group struct {
	Name    string  `json:"name"`
	Item    string  `json:"item"`
	Entries []Entry `json:"entries"`
}

// Summary is the facet summary of a search. Group order follows the
// configuration.
type Summary struct {
	Count  int     `json:"count"`
	Type   string  `json:"type"`
	Groups []Group `json:"groups"`
}

// SummaryTypeLocal marks a summary computed by this node.
const SummaryTypeLocal = "local"
