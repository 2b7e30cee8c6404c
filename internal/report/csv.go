// Package report reads the tabular inputs and writes the pipeline's
// tabular outputs.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/autocheckrh/reconciler/internal/extract"
	"github.com/autocheckrh/reconciler/internal/normalize"
)

// Reference-side column names in the comparison sheet.
const (
	ColNumNota = "numNotaFiscal"
	ColData    = "Data"
	ColValor   = "Valor"
)

// Extra columns appended to each reconciliation output row.
var resultColumns = []string{"classificacao", "matched_num", "matched_valor", "matched_emissao", "observacao"}

// Reference is one row of the comparison sheet. Identity is its original
// row position; all original columns pass through to the output untouched.
type Reference struct {
	NumNota string
	Data    string
	Valor   string
	Fields  map[string]string
}

// ResultRow is one reconciled output row: the original reference plus the
// derived columns.
type ResultRow struct {
	Ref            Reference
	Classificacao  string
	MatchedNum     string
	MatchedValor   string
	MatchedEmissao string
	Observacao     string
}

// LogRow is one diagnostic log entry per fetch target.
type LogRow struct {
	OrigURL    string
	FinalURL   string
	Emails     []string
	Elapsed    time.Duration
	Error      string
	Title      string
	StatusCode int
}

// ReadTargets loads the fetch-target list. The value comes from the second
// column when present, else the first; the header row is skipped, invisible
// characters are stripped, blanks are dropped, and duplicates are removed
// preserving first-seen order.
func ReadTargets(path string) ([]string, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var targets []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		val := row[0]
		if len(row) >= 2 {
			val = row[1]
		}
		val = strings.TrimSpace(stripInvisible(val))
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		targets = append(targets, val)
	}
	return targets, nil
}

// ReadReferences loads the comparison sheet keyed by its header row. Rows
// whose cells are all blank are skipped. The returned header preserves the
// sheet's column order for pass-through output.
func ReadReferences(path string) ([]string, []Reference, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("reference sheet %s has no header row", path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(stripInvisible(h))
	}

	var refs []Reference
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		blank := true
		for i, h := range header {
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			fields[h] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		refs = append(refs, Reference{
			NumNota: fields[ColNumNota],
			Data:    fields[ColData],
			Valor:   fields[ColValor],
			Fields:  fields,
		})
	}
	return header, refs, nil
}

// ReadClean loads a previously written compact result set back into
// extracted records, rebuilding the normalized views so matching can run
// without refetching anything.
func ReadClean(path string) ([]extract.Record, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("clean sheet %s has no header row", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(stripInvisible(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []extract.Record
	for _, row := range rows[1:] {
		rec := extract.Record{
			Numero:  cell(row, "numero"),
			Emissao: cell(row, "emissao"),
			Valor:   cell(row, "valor_pagar"),
		}
		if rec.Numero == "" && rec.Emissao == "" && rec.Valor == "" {
			continue
		}
		if n, ok := normalize.Num(rec.Numero); ok {
			rec.NumeroNorm = &n
		}
		if v, ok := normalize.Currency(rec.Valor); ok {
			rec.ValorNorm = &v
		}
		if ts, hasTime, ok := normalize.Emissao(rec.Emissao); ok {
			rec.EmissaoAt = ts
			rec.HasEmissao = true
			rec.HasTime = hasTime
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteClean writes the compact result set: canonical extracted fields only.
func WriteClean(path string, records []extract.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"numero", "emissao", "valor_pagar"})
	for _, r := range records {
		rows = append(rows, []string{r.Numero, r.Emissao, r.Valor})
	}
	return writeAll(path, rows)
}

// WriteLog writes the diagnostic log with transport and extraction metadata.
func WriteLog(path string, logRows []LogRow) error {
	rows := make([][]string, 0, len(logRows)+1)
	rows = append(rows, []string{"orig_url", "final_url", "emails", "fetch_time", "error", "title", "status_code"})
	for _, r := range logRows {
		status := ""
		if r.StatusCode != 0 {
			status = strconv.Itoa(r.StatusCode)
		}
		rows = append(rows, []string{
			r.OrigURL,
			r.FinalURL,
			strings.Join(r.Emails, ","),
			strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 3, 64),
			r.Error,
			r.Title,
			status,
		})
	}
	return writeAll(path, rows)
}

// WriteResults writes one row per reference, preserving input order and the
// original columns, with the derived columns appended.
func WriteResults(path string, header []string, results []ResultRow) error {
	full := append(append([]string{}, header...), resultColumns...)
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, full)
	for _, r := range results {
		row := make([]string, 0, len(full))
		for _, h := range header {
			row = append(row, r.Ref.Fields[h])
		}
		row = append(row, r.Classificacao, r.MatchedNum, r.MatchedValor, r.MatchedEmissao, r.Observacao)
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

func readAll(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func stripInvisible(s string) string {
	return strings.NewReplacer("\ufeff", "", "\u200b", "", "\u00a0", "").Replace(s)
}
