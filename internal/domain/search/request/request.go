package request

import (
	"slices"
	"strings"
)

// Reserved parameter names.
const (
	Group      = "group"
	Owner      = "_owner"
	IsAdmin    = "_isAdmin"
	IsReviewer = "_isReviewer"
	Operation  = "_op0"

	DateFrom            = "dateFrom"
	DateTo              = "dateTo"
	CreationDateFrom    = "creationDateFrom"
	CreationDateTo      = "creationDateTo"
	RevisionDateFrom    = "revisionDateFrom"
	RevisionDateTo      = "revisionDateTo"
	PublicationDateFrom = "publicationDateFrom"
	PublicationDateTo   = "publicationDateTo"

	SortBy            = "sortBy"
	SortOrder         = "sortOrder"
	Geometry          = "geometry"
	Relation          = "relation"
	From              = "from"
	To                = "to"
	Fast              = "fast"
	BuildSummary      = "buildSummary"
	RequestedLanguage = "requestedLanguage"
	ResultType        = "resultType"
	Any               = "any"
)

// SecurityFields are stripped from every inbound request before augmentation.
var SecurityFields = []string{Owner, IsAdmin, IsReviewer, Operation}

// DatePair names a from/to pair of range bounds.
type DatePair struct {
	From string
	To   string
}

// DatePairs lists the independently normalized date ranges.
var DatePairs = []DatePair{
	{DateFrom, DateTo},
	{CreationDateFrom, CreationDateTo},
	{RevisionDateFrom, RevisionDateTo},
	{PublicationDateFrom, PublicationDateTo},
}

var control = map[string]bool{
	SortBy: true, SortOrder: true, Geometry: true, Relation: true,
	From: true, To: true, Fast: true, BuildSummary: true,
	RequestedLanguage: true, ResultType: true,
}

// IsControl reports whether name steers execution rather than matching.
func IsControl(name string) bool { return control[name] }

// IsReserved reports whether name is part of the fixed request vocabulary.
func IsReserved(name string) bool {
	if control[name] || name == Group || slices.Contains(SecurityFields, name) {
		return true
	}
	for _, p := range DatePairs {
		if name == p.From || name == p.To {
			return true
		}
	}
	return false
}

// Request is a multi-valued search parameter map that keeps insertion order.
type Request struct {
	names  []string
	values map[string][]string
}

// New creates an empty request.
func New() *Request {
	return &Request{values: make(map[string][]string)}
}

// FromMap builds a request from a map. Names are added in sorted order.
func FromMap(m map[string][]string) *Request {
	r := New()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range m[name] {
			r.Add(name, v)
		}
	}
	return r
}

// Add appends a value for name.
func (r *Request) Add(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = append(r.values[name], value)
}

// Set replaces all values of name.
func (r *Request) Set(name string, values ...string) {
	r.Del(name)
	for _, v := range values {
		r.Add(name, v)
	}
}

// Del removes name entirely.
func (r *Request) Del(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
}

// Has reports whether name is present, even with blank values.
func (r *Request) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the first value of name or "".
func (r *Request) Get(name string) string {
	if v := r.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Param returns the trimmed first value of name, or def when name is absent.
func (r *Request) Param(name, def string) string {
	if !r.Has(name) {
		return def
	}
	return strings.TrimSpace(r.Get(name))
}

// Values returns a copy of all values of name.
func (r *Request) Values(name string) []string {
	return slices.Clone(r.values[name])
}

// Names returns parameter names in insertion order.
func (r *Request) Names() []string {
	return slices.Clone(r.names)
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	c := New()
	for _, name := range r.names {
		for _, v := range r.values[name] {
			c.Add(name, v)
		}
	}
	return c
}
