package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stockdiff/internal"
)

type Options struct {
	Rules         Rules
	ExcludeTarget ItemFilter

	SourceLabel string
	TargetLabel string
	SourceSheet string
	TargetSheet string
}

type Report struct {
	RunID         string                          `json:"runId" yaml:"runId"`
	SourceName    string                          `json:"sourceName" yaml:"sourceName"`
	TargetName    string                          `json:"targetName" yaml:"targetName"`
	SourceLabel   string                          `json:"sourceLabel" yaml:"sourceLabel"`
	TargetLabel   string                          `json:"targetLabel" yaml:"targetLabel"`
	KeyKind       internal.KeyKind                `json:"keyKind" yaml:"keyKind"`
	SourceColumns internal.TableColumns           `json:"sourceColumns" yaml:"sourceColumns"`
	TargetColumns internal.TableColumns           `json:"targetColumns" yaml:"targetColumns"`
	Records       []internal.ReconciliationRecord `json:"records" yaml:"records"`
	Summary       internal.Summary                `json:"summary" yaml:"summary"`
}

type ComparisonService struct {
	opts Options
	log  zerolog.Logger
}

func NewComparisonService(opts Options, log zerolog.Logger) *ComparisonService {
	if opts.Rules.Identifier == nil && opts.Rules.Item == nil {
		opts.Rules = DefaultRules()
	}
	if opts.SourceLabel == "" {
		opts.SourceLabel = "Source"
	}
	if opts.TargetLabel == "" {
		opts.TargetLabel = "Target"
	}
	return &ComparisonService{opts: opts, log: log}
}

// CompareFiles loads both files fully, then compares them.
func (s *ComparisonService) CompareFiles(sourcePath, targetPath string) (Report, error) {
	source, err := LoadTable(sourcePath, s.opts.SourceSheet)
	if err != nil {
		return Report{}, err
	}
	target, err := LoadTable(targetPath, s.opts.TargetSheet)
	if err != nil {
		return Report{}, err
	}
	return s.Compare(source, target)
}

// Compare resolves columns on both tables and reconciles them. A resolution
// failure returns *internal.ResolutionError before any row is touched.
func (s *ComparisonService) Compare(source, target internal.RawTable) (Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()

	kind, srcCols, tgtCols, err := ResolveTables(source.Header, target.Header, s.opts.Rules)
	if err != nil {
		log.Error().Err(err).
			Strs("source_columns", source.Header).
			Strs("target_columns", target.Header).
			Msg("column resolution failed")
		return Report{}, err
	}
	log.Info().
		Str("key", string(kind)).
		Str("source_key", srcCols.Key.Name).
		Str("source_qty", srcCols.Quantity.Name).
		Str("target_key", tgtCols.Key.Name).
		Str("target_qty", tgtCols.Quantity.Name).
		Msg("columns resolved")

	src := NormalizeRows(source, srcCols, nil)
	tgt := NormalizeRows(target, tgtCols, s.opts.ExcludeTarget)
	s.warnEmpty(log, internal.SideSource, source, src)
	s.warnEmpty(log, internal.SideTarget, target, tgt)

	result := Reconcile(src.Rows, tgt.Rows)
	summary := result.Summary
	summary.MissingKeys = src.MissingKeys + tgt.MissingKeys
	summary.Excluded = src.Excluded + tgt.Excluded
	summary.InvalidQuantities = src.InvalidQuantities + tgt.InvalidQuantities

	log.Info().
		Int("source_rows", summary.SourceRows).
		Int("target_rows", summary.TargetRows).
		Int("missing_keys", summary.MissingKeys).
		Int("excluded", summary.Excluded).
		Int("invalid_qty", summary.InvalidQuantities).
		Int("duplicate_keys", summary.DuplicateKeys).
		Int("discrepancies", len(result.Records)).
		Dur("took", time.Since(start)).
		Msg("reconciliation done")

	return Report{
		RunID:         runID,
		SourceName:    source.Name,
		TargetName:    target.Name,
		SourceLabel:   s.opts.SourceLabel,
		TargetLabel:   s.opts.TargetLabel,
		KeyKind:       kind,
		SourceColumns: srcCols,
		TargetColumns: tgtCols,
		Records:       result.Records,
		Summary:       summary,
	}, nil
}

func (s *ComparisonService) warnEmpty(log zerolog.Logger, side internal.Side, table internal.RawTable, p Projection) {
	if len(p.Rows) > 0 {
		return
	}
	log.Warn().
		Str("side", string(side)).
		Str("file", table.Name).
		Int("rows", len(table.Rows)).
		Msg("no usable rows, every key on the other side is reported as one-sided")
}
