package search

import (
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/sortkey"
)

// Well-known sortBy values and the typed keys they resolve to.
var namedSortKeys = map[string]sortkey.Key{
	"popularity":       {Field: "_popularity", Kind: sortkey.Integer},
	"rating":           {Field: "_rating", Kind: sortkey.Integer},
	"scaleDenominator": {Field: "_scaleDenominator", Kind: sortkey.Integer},
	"date":             {Field: "_date", Kind: sortkey.String},
	"title":            {Field: "_title", Kind: sortkey.String},
}

// buildSort resolves the result ordering of a request. Ties always fall
// back to relevance.
func (s *Service) buildSort(req *request.Request, language string) sortkey.Spec {
	var keys []sortkey.Key
	if s.cfg.RequestedLanguageOnTop && language != "" {
		keys = append(keys, sortkey.Key{Kind: sortkey.LangOnTop, Locale: language})
	}

	by := req.Param(request.SortBy, "relevance")
	if by == "relevance" || by == "" {
		return sortkey.New(keys...)
	}

	key, ok := namedSortKeys[by]
	switch {
	case ok:
	case language != "":
		key = sortkey.Key{Field: by, Kind: sortkey.LocaleString, Locale: language}
	default:
		key = sortkey.Key{Field: by, Kind: sortkey.String}
	}
	key.Reverse = req.Param(request.SortOrder, "") == ""
	return sortkey.New(append(keys, key)...)
}
