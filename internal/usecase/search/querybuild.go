package search

import (
	"regexp"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
)

// Index fields the access clause matches on.
const (
	operationField  = request.Operation
	ownerField      = request.Owner
	groupOwnerField = "_groupOwner"
)

// dateFields maps each date pair to the index field it ranges over.
var dateFields = map[string]string{
	request.DateFrom:            "_changeDate",
	request.CreationDateFrom:    "_createDate",
	request.RevisionDateFrom:    "_revisionDate",
	request.PublicationDateFrom: "_publicationDate",
}

var orSeparator = regexp.MustCompile(`(?i)\s+or\s+`)

// buildDescription turns plain request parameters into a query description.
// Every parameter is required; several values of one parameter, or values
// joined by "or", are alternatives.
func buildDescription(req *request.Request) query.Description {
	var clauses []query.ClauseDescription

	for _, name := range req.Names() {
		if request.IsReserved(name) {
			continue
		}
		var values []string
		for _, v := range nonBlank(req.Values(name)) {
			values = append(values, nonBlank(orSeparator.Split(v, -1))...)
		}

		switch {
		case len(values) == 0:
		case name == request.Any:
			for _, v := range values {
				clauses = append(clauses, query.MustOf(query.TermOf(name, v)))
			}
		case len(values) == 1:
			clauses = append(clauses, query.MustOf(query.TermOf(name, values[0])))
		default:
			alts := make([]query.ClauseDescription, len(values))
			for i, v := range values {
				alts[i] = query.ShouldOf(query.TermOf(name, v))
			}
			clauses = append(clauses, query.MustOf(query.BooleanOf(alts...)))
		}
	}

	for _, p := range request.DatePairs {
		if !req.Has(p.From) {
			continue
		}
		clauses = append(clauses, query.MustOf(query.DateRangeOf(dateFields[p.From], req.Get(p.From), req.Get(p.To))))
	}

	if len(clauses) == 0 {
		return query.MatchAllOf()
	}
	return query.BooleanOf(clauses...)
}

// accessClause restricts matches to the augmented groups and owner.
// Administrators searching without a group restriction see everything.
// A caller with no groups and no identity matches nothing.
func accessClause(req *request.Request) *query.Description {
	if req.Get(request.IsAdmin) == "true" {
		return nil
	}

	groups := nonBlank(req.Values(request.Group))
	var alts []query.ClauseDescription
	for _, g := range groups {
		alts = append(alts, query.ShouldOf(query.TermOf(operationField, g)))
	}
	if owner := req.Param(request.Owner, ""); owner != "" {
		alts = append(alts, query.ShouldOf(query.TermOf(ownerField, owner)))
	}
	if req.Get(request.IsReviewer) == "true" {
		for _, g := range groups {
			alts = append(alts, query.ShouldOf(query.TermOf(groupOwnerField, g)))
		}
	}

	d := query.BooleanOf(alts...)
	return &d
}
