// Package extract pulls structured receipt fields out of semi-structured
// document content using ordered heuristic strategies.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/autocheckrh/reconciler/internal/normalize"
)

// Mode selects which strategy set runs first. Labelled documents (DANFE
// receipts with "Número:"/"Emissão:" labels) get the strict patterns with
// the permissive ones as fallback; everything else goes straight to the
// permissive set.
type Mode string

// Supported extraction modes.
const (
	ModePermissive Mode = "permissive"
	ModeLabelled   Mode = "labelled"
)

// Record holds the fields extracted from one document. Extraction is
// best-effort: a field the heuristics cannot find stays absent (empty
// string or nil), never an error.
type Record struct {
	Numero     string
	NumeroNorm *int64
	Valor      string
	ValorNorm  *float64
	Emissao    string
	EmissaoAt  time.Time
	HasEmissao bool
	HasTime    bool

	Title           string
	MetaDescription string
	Emails          []string
}

var (
	numeroPermissive  = regexp.MustCompile(`\d{3,44}`)
	numeroLabelled    = regexp.MustCompile(`(?i)n[uú]mero\s*[:\x{00A0}]?\s*(\d+)`)
	emissaoPermissive = regexp.MustCompile(`\d{2}/\d{2}/\d{4}(?:\s+\d{2}:\d{2}(?::\d{2})?)?`)
	emissaoLabelled   = regexp.MustCompile(`(?i)emiss(?:ão|ao)\s*[:\x{00A0}]?\s*(\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2})`)
	valorLabelled     = regexp.MustCompile(`(?i)valor\s*a\s*pagar\s*r\$\s*[:\x{00A0}]?\s*([0-9.,]+)`)
	valorPermissive   = regexp.MustCompile(`R\$\s*([0-9.,]+)|\b[0-9]{1,3}[.,][0-9]{2}\b`)
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// textStrategy finds one field in the flattened document text. An empty
// return means "not found, try the next one".
type textStrategy func(text string) string

// valorStrategy may also consult document structure, not just text.
type valorStrategy func(doc *goquery.Document, text string) string

// Extractor applies its strategy lists in order and keeps the first hit.
type Extractor struct {
	numero  []textStrategy
	emissao []textStrategy
	valor   []valorStrategy
}

// New builds an Extractor for the given mode.
func New(mode Mode) *Extractor {
	e := &Extractor{
		numero:  []textStrategy{firstMatch(numeroPermissive, 0)},
		emissao: []textStrategy{firstMatch(emissaoPermissive, 0)},
		valor: []valorStrategy{
			structuralTotal,
			textOnly(firstMatch(valorLabelled, 1)),
			permissiveValor,
		},
	}
	if mode == ModeLabelled {
		e.numero = append([]textStrategy{firstMatch(numeroLabelled, 1)}, e.numero...)
		e.emissao = append([]textStrategy{firstMatch(emissaoLabelled, 1)}, e.emissao...)
	}
	return e
}

// Extract derives a Record from raw textual content.
func (e *Extractor) Extract(body string) Record {
	var rec Record
	if strings.TrimSpace(body) == "" {
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	text := body
	if err == nil {
		rec.Title = firstNonEmptyTitle(doc)
		rec.MetaDescription = metaDescription(doc)
		text = flatten(doc)
	} else {
		doc = nil
	}

	rec.Emails = uniqueEmails(text)

	for _, s := range e.numero {
		if m := s(text); m != "" {
			rec.Numero = m
			break
		}
	}
	if n, ok := normalize.Num(rec.Numero); ok {
		rec.NumeroNorm = &n
	}

	for _, s := range e.emissao {
		if m := s(text); m != "" {
			rec.Emissao = m
			break
		}
	}
	if ts, hasTime, ok := normalize.Emissao(rec.Emissao); ok {
		rec.EmissaoAt = ts
		rec.HasEmissao = true
		rec.HasTime = hasTime
	}

	for _, s := range e.valor {
		if m := s(doc, text); m != "" {
			rec.Valor = m
			break
		}
	}
	if v, ok := normalize.Currency(rec.Valor); ok {
		rec.ValorNorm = &v
	}

	return rec
}

func firstMatch(re *regexp.Regexp, group int) textStrategy {
	return func(text string) string {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[group])
	}
}

func textOnly(s textStrategy) valorStrategy {
	return func(_ *goquery.Document, text string) string {
		return s(text)
	}
}

// structuralTotal prefers a visually distinguished total element when the
// source exposes total-indicating style classes (NFC-e portals render the
// amount due in a span.totalNumb.txtMax).
func structuralTotal(doc *goquery.Document, _ string) string {
	if doc == nil {
		return ""
	}
	var valor string
	doc.Find("span[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		classes := strings.Fields(sel.AttrOr("class", ""))
		hasTotal := false
		hasMax := false
		for _, c := range classes {
			if c == "totalNumb" {
				hasTotal = true
			}
			if strings.Contains(c, "txtMax") {
				hasMax = true
			}
		}
		if hasTotal && hasMax {
			valor = strings.TrimSpace(sel.Text())
			return false
		}
		return true
	})
	return valor
}

func permissiveValor(_ *goquery.Document, text string) string {
	m := valorPermissive.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

// flatten strips tags and collapses whitespace into single spaces.
func flatten(doc *goquery.Document) string {
	clone := doc.Clone()
	clone.Find("script,style").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}

func firstNonEmptyTitle(doc *goquery.Document) string {
	title := ""
	doc.Find("title").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			title = t
			return false
		}
		return true
	})
	return title
}

func metaDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if c := strings.TrimSpace(content); c != "" {
				return c
			}
		}
	}
	return ""
}

func uniqueEmails(text string) []string {
	found := emailPattern.FindAllString(text, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, e := range found {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
