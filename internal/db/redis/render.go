package redis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
)

// IDField is the tag field every catalog document carries.
const IDField = "_id"

// matchNone is a clause no document satisfies.
var matchNone = "@" + IDField + ":{__match_none__}"

// renderer translates query trees into RediSearch DIALECT 2 syntax.
type renderer struct {
	def *db.IndexDefinition
}

func (r renderer) render(n query.Node) (string, error) {
	switch n := n.(type) {
	case query.Term:
		return r.term(n.Field, n.Text)
	case query.Fuzzy:
		if r.def.TypeOf(n.Field) != db.IndexFieldText {
			return r.term(n.Field, n.Text)
		}
		pct := "%"
		if n.Similarity < 0.5 {
			pct = "%%"
		}
		return fmt.Sprintf("@%s:(%s%s%s)", n.Field, pct, escapeQuery(n.Text), pct), nil
	case query.Prefix:
		switch r.def.TypeOf(n.Field) {
		case db.IndexFieldText:
			return fmt.Sprintf("@%s:(%s*)", n.Field, escapeQuery(n.Text)), nil
		case db.IndexFieldTag:
			return fmt.Sprintf("@%s:{%s*}", n.Field, tagEscaper.Replace(n.Text)), nil
		}
		return "", unsupported(n)
	case query.Wildcard:
		pattern := strings.ReplaceAll(n.Pattern, "'", `\'`)
		switch r.def.TypeOf(n.Field) {
		case db.IndexFieldText:
			return fmt.Sprintf("@%s:(w'%s')", n.Field, pattern), nil
		case db.IndexFieldTag:
			return fmt.Sprintf("@%s:{w'%s'}", n.Field, pattern), nil
		}
		return "", unsupported(n)
	case query.Phrase:
		return r.phrase(n)
	case query.Range:
		return r.rangeOf(n)
	case query.Boolean:
		return r.boolean(n)
	case query.MatchAll:
		return "*", nil
	default:
		return "", &domain.UnsupportedQueryNodeError{Kind: fmt.Sprintf("%T", n)}
	}
}

func (r renderer) term(field, text string) (string, error) {
	switch r.def.TypeOf(field) {
	case db.IndexFieldText:
		return fmt.Sprintf("@%s:(%s)", field, escapeQuery(text)), nil
	case db.IndexFieldNumeric:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return "", fmt.Errorf("%w: field %s: %q is not numeric", domain.ErrInvalidQuery, field, text)
		}
		n := formatNum(v)
		return fmt.Sprintf("@%s:[%s %s]", field, n, n), nil
	case db.IndexFieldDate:
		t, err := query.ParseDate(text)
		if err != nil {
			return "", err
		}
		n := strconv.FormatInt(t.Unix(), 10)
		return fmt.Sprintf("@%s:[%s %s]", field, n, n), nil
	case db.IndexFieldStored:
		return "", fmt.Errorf("%w: field %s is not indexed", domain.ErrUnsupportedByEngine, field)
	default:
		return fmt.Sprintf("@%s:{%s}", field, tagEscaper.Replace(text)), nil
	}
}

func (r renderer) phrase(n query.Phrase) (string, error) {
	if len(n.Terms) == 0 {
		return matchNone, nil
	}
	switch r.def.TypeOf(n.Field) {
	case db.IndexFieldText:
		words := make([]string, len(n.Terms))
		for i, t := range n.Terms {
			words[i] = escapeQuery(t)
		}
		return fmt.Sprintf(`@%s:("%s")`, n.Field, strings.Join(words, " ")), nil
	case db.IndexFieldTag:
		return fmt.Sprintf("@%s:{%s}", n.Field, tagEscaper.Replace(strings.Join(n.Terms, " "))), nil
	}
	return "", unsupported(n)
}

func (r renderer) rangeOf(n query.Range) (string, error) {
	lo, hi := "-inf", "+inf"
	switch n.Kind {
	case query.RangeNumeric:
		if n.LowerNum != nil {
			lo = bound(formatNum(*n.LowerNum), n.IncludeLower)
		}
		if n.UpperNum != nil {
			hi = bound(formatNum(*n.UpperNum), n.IncludeUpper)
		}
	case query.RangeDate:
		if n.Lower != nil {
			t, err := query.ParseDate(*n.Lower)
			if err != nil {
				return "", err
			}
			lo = bound(strconv.FormatInt(t.Unix(), 10), n.IncludeLower)
		}
		if n.Upper != nil {
			t, err := query.ParseDate(*n.Upper)
			if err != nil {
				return "", err
			}
			hi = bound(strconv.FormatInt(t.Unix(), 10), n.IncludeUpper)
		}
	default:
		return "", fmt.Errorf("%w: lexical range on %s", domain.ErrUnsupportedByEngine, n.Field)
	}
	return fmt.Sprintf("@%s:[%s %s]", n.Field, lo, hi), nil
}

func (r renderer) boolean(n query.Boolean) (string, error) {
	var must, should, not []string
	for _, c := range n.Clauses {
		s, err := r.render(c.Node)
		if err != nil {
			return "", err
		}
		switch c.Occur {
		case query.Must:
			must = append(must, "("+s+")")
		case query.MustNot:
			not = append(not, "-("+s+")")
		default:
			should = append(should, s)
		}
	}
	if len(must)+len(should)+len(not) == 0 {
		return matchNone, nil
	}

	parts := must
	if len(should) > 0 {
		if len(must) > 0 {
			for _, s := range should {
				parts = append(parts, "~("+s+")")
			}
		} else {
			parts = append(parts, "("+strings.Join(should, " | ")+")")
		}
	}
	parts = append(parts, not...)
	return strings.Join(parts, " "), nil
}

func bound(v string, inclusive bool) string {
	if inclusive {
		return v
	}
	return "(" + v
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unsupported(n query.Node) error {
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedByEngine, n.String())
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)
