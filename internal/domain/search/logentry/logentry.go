// Package logentry describes one logged search for query analytics.
package logentry

import (
	"strconv"
	"time"
)

// Entry records one executed search.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Query      string    `json:"query"`
	Hits       int       `json:"hits"`
	Sort       string    `json:"sort"`
	SpatialWKT string    `json:"spatial,omitempty"`
	Origin     string    `json:"origin"`
	Language   string    `json:"language,omitempty"`
}

// Fields flattens the entry into string pairs for stream sinks.
func (e Entry) Fields() map[string]string {
	m := map[string]string{
		"id":     e.ID,
		"time":   e.Time.UTC().Format(time.RFC3339Nano),
		"query":  e.Query,
		"hits":   strconv.Itoa(e.Hits),
		"sort":   e.Sort,
		"origin": e.Origin,
	}
	if e.SpatialWKT != "" {
		m["spatial"] = e.SpatialWKT
	}
	if e.Language != "" {
		m["language"] = e.Language
	}
	return m
}
