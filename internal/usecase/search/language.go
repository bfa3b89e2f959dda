package search

import (
	"github.com/kailas-cloud/mdsearch/internal/analysis"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
)

// determineLanguage picks the search language: the requested language, a
// language detected from free text, the caller context, then the default.
// It is empty when requested languages are ignored.
func (s *Service) determineLanguage(req *request.Request, contextLanguage string) string {
	if s.cfg.IgnoreRequestedLanguage {
		return ""
	}
	if l := req.Param(request.RequestedLanguage, ""); l != "" {
		return l
	}
	if s.cfg.AutoDetectLanguage {
		if text := req.Param(request.Any, ""); text != "" {
			if l := analysis.DetectLanguage(text); l != "" {
				return l
			}
		}
	}
	if contextLanguage != "" {
		return contextLanguage
	}
	return s.cfg.DefaultLanguage
}
