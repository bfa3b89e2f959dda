// Package geo parses search geometries and evaluates spatial relations
// between document and query extents.
package geo

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/kailas-cloud/mdsearch/internal/domain"
)

// Relation is the spatial predicate between a document and a query geometry.
type Relation string

// Spatial relations.
const (
	Intersection Relation = "intersection"
	Within       Relation = "within"
	Contains     Relation = "contains"
	Encloses     Relation = "encloses"
	Equal        Relation = "equal"
	Overlaps     Relation = "overlaps"
	Disjoint     Relation = "disjoint"
	OutsideOf    Relation = "outsideOf"
	Touches      Relation = "touches"
	Crosses      Relation = "crosses"
)

var relations = []Relation{
	Intersection, Within, Contains, Encloses, Equal,
	Overlaps, Disjoint, OutsideOf, Touches, Crosses,
}

// ParseRelation matches s case-insensitively. Blank or unknown values mean
// intersection.
func ParseRelation(s string) Relation {
	s = strings.TrimSpace(s)
	for _, r := range relations {
		if strings.EqualFold(s, string(r)) {
			return r
		}
	}
	return Intersection
}

// ParseWKT parses well-known text.
func ParseWKT(text string) (geom.T, error) {
	g, err := wkt.Unmarshal(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGeometry, err)
	}
	return g, nil
}

// WKT renders g as well-known text.
func WKT(g geom.T) string {
	s, err := wkt.Marshal(g)
	if err != nil {
		return ""
	}
	return s
}

// Union merges polygonal geometries into one MultiPolygon.
func Union(gs []geom.T) (geom.T, error) {
	if len(gs) == 0 {
		return nil, fmt.Errorf("%w: nothing to union", domain.ErrInvalidGeometry)
	}
	mp := geom.NewMultiPolygon(gs[0].Layout())
	for _, g := range gs {
		switch v := g.(type) {
		case *geom.Polygon:
			if err := mp.Push(v); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGeometry, err)
			}
		case *geom.MultiPolygon:
			for i := 0; i < v.NumPolygons(); i++ {
				if err := mp.Push(v.Polygon(i)); err != nil {
					return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGeometry, err)
				}
			}
		default:
			return nil, fmt.Errorf("%w: cannot union %T", domain.ErrInvalidGeometry, g)
		}
	}
	return mp, nil
}

// Extent is an axis-aligned 2D envelope.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// ExtentOf returns the envelope of g. ok is false for empty geometries.
func ExtentOf(g geom.T) (Extent, bool) {
	b := g.Bounds()
	if b == nil || b.IsEmpty() {
		return Extent{}, false
	}
	return Extent{MinX: b.Min(0), MinY: b.Min(1), MaxX: b.Max(0), MaxY: b.Max(1)}, true
}

// Intersects reports whether e and o share at least one point.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX <= o.MaxX && o.MinX <= e.MaxX && e.MinY <= o.MaxY && o.MinY <= e.MaxY
}

// Within reports whether e lies inside o.
func (e Extent) Within(o Extent) bool {
	return o.MinX <= e.MinX && e.MaxX <= o.MaxX && o.MinY <= e.MinY && e.MaxY <= o.MaxY
}

func (e Extent) interiorsOverlap(o Extent) bool {
	return e.MinX < o.MaxX && o.MinX < e.MaxX && e.MinY < o.MaxY && o.MinY < e.MaxY
}

// Matches evaluates rel with doc as the subject and query as the object.
func Matches(rel Relation, doc, query Extent) bool {
	switch rel {
	case Within:
		return doc.Within(query)
	case Contains, Encloses:
		return query.Within(doc)
	case Equal:
		return doc == query
	case Disjoint, OutsideOf:
		return !doc.Intersects(query)
	case Overlaps:
		return doc.interiorsOverlap(query) && !doc.Within(query) && !query.Within(doc)
	case Touches:
		return doc.Intersects(query) && !doc.interiorsOverlap(query)
	case Crosses:
		return doc.Intersects(query) && !doc.Within(query) && !query.Within(doc)
	default:
		return doc.Intersects(query)
	}
}
