// Package pipeline wires fetching, extraction, matching, and classification
// into a single reconciliation run.
package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/classify"
	"github.com/autocheckrh/reconciler/internal/extract"
	"github.com/autocheckrh/reconciler/internal/fetch"
	"github.com/autocheckrh/reconciler/internal/match"
	"github.com/autocheckrh/reconciler/internal/metrics"
	"github.com/autocheckrh/reconciler/internal/normalize"
	"github.com/autocheckrh/reconciler/internal/report"
)

// valueDiffThreshold is the cents threshold beyond which a reference's own
// declared amount is flagged against the matched amount.
const valueDiffThreshold = 0.70

// TargetFetcher resolves a batch of targets under a bounded pool.
type TargetFetcher interface {
	FetchAll(ctx context.Context, targets []string, workers int) []fetch.Result
}

// Config tunes one pipeline run.
type Config struct {
	Workers   int
	Tolerance int64
}

// Pipeline executes the fetch-extract-match-classify sequence.
type Pipeline struct {
	fetcher   TargetFetcher
	extractor *extract.Extractor
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Pipeline.
func New(fetcher TargetFetcher, extractor *extract.Extractor, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = match.DefaultTolerance
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Outcome bundles the output streams of one run. Records and LogRows are
// indexed like the target list; Rows preserves reference input order.
type Outcome struct {
	RunID   string
	Results []fetch.Result
	Records []extract.Record
	LogRows []report.LogRow
	Rows    []report.ResultRow
}

// Run fans the targets out over the fetch pool, extracts fields from every
// fetched document after the pool drains, then reconciles each reference
// against the full extracted set. A nil reference list yields a crawl-only
// outcome. Individual fetch or extraction failures degrade single rows,
// never the run.
func (p *Pipeline) Run(ctx context.Context, targets []string, refs []report.Reference) Outcome {
	out := Outcome{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", out.RunID))
	logger.Info("starting run",
		zap.Int("targets", len(targets)),
		zap.Int("references", len(refs)),
		zap.Int("workers", p.cfg.Workers),
	)

	out.Results = p.fetcher.FetchAll(ctx, targets, p.cfg.Workers)

	// extraction runs single-threaded after the pool joins; there is no
	// pipelining across stages within one run
	out.Records = make([]extract.Record, len(out.Results))
	for i, res := range out.Results {
		if res.OK() {
			out.Records[i] = p.extractor.Extract(res.Body)
		}
	}

	out.LogRows = make([]report.LogRow, len(out.Results))
	for i, res := range out.Results {
		out.LogRows[i] = report.LogRow{
			OrigURL:    res.Target,
			FinalURL:   res.FinalURL,
			Emails:     out.Records[i].Emails,
			Elapsed:    res.Elapsed,
			Error:      res.Err,
			Title:      out.Records[i].Title,
			StatusCode: res.StatusCode,
		}
	}

	out.Rows = Reconcile(refs, out.Records, p.cfg.Tolerance)

	logger.Info("run finished",
		zap.Int("fetched", len(out.Results)),
		zap.Int("rows", len(out.Rows)),
	)
	return out
}

// Reconcile matches and classifies each reference against the extracted
// set. Output order equals reference input order regardless of how the
// extracted records were produced.
func Reconcile(refs []report.Reference, records []extract.Record, tolerance int64) []report.ResultRow {
	if tolerance <= 0 {
		tolerance = match.DefaultTolerance
	}
	candidates := make([]*int64, len(records))
	for i := range records {
		candidates[i] = records[i].NumeroNorm
	}

	rows := make([]report.ResultRow, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, reconcileOne(ref, records, candidates, tolerance))
	}
	return rows
}

func reconcileOne(ref report.Reference, records []extract.Record, candidates []*int64, tolerance int64) report.ResultRow {
	row := report.ResultRow{Ref: ref}

	var (
		idx      int
		distance int64
		found    bool
	)
	if target, ok := normalize.Num(ref.NumNota); ok {
		idx, distance, found = match.Best(target, candidates, tolerance)
	}
	if !found {
		metrics.ReferencesUnmatched.Inc()
		row.Classificacao = string(classify.NaoEncontrado)
		row.Observacao = string(classify.NaoEncontrado)
		return row
	}
	metrics.ReferencesMatched.Inc()

	rec := records[idx]
	if rec.NumeroNorm != nil {
		row.MatchedNum = strconv.FormatInt(*rec.NumeroNorm, 10)
	}
	row.MatchedEmissao = rec.Emissao

	hasValor := rec.ValorNorm != nil
	var valor float64
	if hasValor {
		valor = *rec.ValorNorm
		row.MatchedValor = strconv.FormatFloat(valor, 'f', 2, 64)
	}
	row.Classificacao = string(classify.Classify(valor, hasValor, rec.EmissaoAt, rec.HasEmissao && rec.HasTime))

	note := "OK"
	if distance != 0 {
		note = fmt.Sprintf("VERIFICAR_NUMNOTA (dif=%d)", distance)
	}
	if refValor, ok := normalize.Currency(ref.Valor); ok && hasValor {
		if gap := refValor - valor; gap > valueDiffThreshold || -gap > valueDiffThreshold {
			note += " | VAL_DIFF"
		}
	}
	if refDate, ok := normalize.RefDate(ref.Data); ok && rec.HasEmissao {
		ry, rm, rd := refDate.Date()
		ey, em, ed := rec.EmissaoAt.Date()
		if ry != ey || rm != em || rd != ed {
			note += " | DATE_MISMATCH"
		}
	}
	row.Observacao = note
	return row
}
