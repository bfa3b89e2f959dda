package query

import (
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// LocaleField holds the document language code.
const LocaleField = "_locale"

// ScoreFunc rescales a hit's score from its stored fields.
type ScoreFunc func(score float64, fields result.Fields) float64

// Boost is a named scoring transform applied to the whole tree.
// It adjusts scores only; it never changes which documents match.
type Boost struct {
	Name   string
	Params map[string]string
	Fields []string
	Score  ScoreFunc
}

// Compiled is an executable query.
type Compiled struct {
	Root    Node
	Locales []string
	Boost   *Boost
}

// String renders the query for logs and cache keys.
func (c *Compiled) String() string {
	if c == nil || c.Root == nil {
		return ""
	}
	s := c.Root.String()
	if c.Boost != nil {
		s = c.Boost.Name + "(" + s + ")"
	}
	return s
}

// Rescore applies the boost, if any, to a score.
func (c *Compiled) Rescore(score float64, fields result.Fields) float64 {
	if c == nil || c.Boost == nil || c.Boost.Score == nil {
		return score
	}
	return c.Boost.Score(score, fields)
}

// WithBoost returns a copy of c wrapped in b.
func (c *Compiled) WithBoost(b *Boost) *Compiled {
	cp := *c
	cp.Boost = b
	return &cp
}
