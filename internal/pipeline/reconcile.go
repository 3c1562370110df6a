package pipeline

import (
	"github.com/shopspring/decimal"

	"stockdiff/internal"
)

type Result struct {
	Records []internal.ReconciliationRecord
	Summary internal.Summary
}

// Reconcile full-outer-joins source and target on Key and keeps the
// discrepancies. Within one side a repeated key overwrites the earlier row.
// Records follow source order, then target-only keys in target order.
func Reconcile(source, target []internal.NormalizedRow) Result {
	srcByKey, srcOrder, srcDup := indexRows(source)
	tgtByKey, tgtOrder, tgtDup := indexRows(target)

	keys := make([]string, 0, len(srcOrder)+len(tgtOrder))
	keys = append(keys, srcOrder...)
	for _, k := range tgtOrder {
		if _, ok := srcByKey[k]; !ok {
			keys = append(keys, k)
		}
	}

	summary := internal.Summary{
		SourceRows:    len(source),
		TargetRows:    len(target),
		DuplicateKeys: srcDup + tgtDup,
	}
	records := make([]internal.ReconciliationRecord, 0)
	for _, key := range keys {
		src, inSource := srcByKey[key]
		tgt, inTarget := tgtByKey[key]

		rec := internal.ReconciliationRecord{
			Key:            key,
			QuantitySource: decimal.Zero,
			QuantityTarget: decimal.Zero,
		}
		switch {
		case inSource && inTarget:
			rec.Presence = internal.Both
		case inSource:
			rec.Presence = internal.OnlyInSource
		default:
			rec.Presence = internal.OnlyInTarget
		}
		if inSource {
			rec.QuantitySource = src.Quantity
		}
		if inTarget {
			rec.QuantityTarget = tgt.Quantity
		}
		rec.Difference = rec.QuantitySource.Sub(rec.QuantityTarget)
		rec.Description = firstPresent(tgt.Description, src.Description)
		rec.ItemCode = firstPresent(tgt.ItemCode, src.ItemCode)

		switch {
		case rec.Presence == internal.OnlyInSource:
			summary.OnlyInSource++
		case rec.Presence == internal.OnlyInTarget:
			summary.OnlyInTarget++
		case rec.Difference.IsZero():
			summary.Matched++
		default:
			summary.Mismatched++
		}

		if Discrepancy(rec) {
			records = append(records, rec)
		}
	}

	return Result{Records: records, Summary: summary}
}

// Discrepancy is the report filter: a record is kept unless it is present on
// both sides with equal quantities.
func Discrepancy(rec internal.ReconciliationRecord) bool {
	return !rec.Difference.IsZero() || rec.Presence != internal.Both
}

func indexRows(rows []internal.NormalizedRow) (map[string]internal.NormalizedRow, []string, int) {
	byKey := make(map[string]internal.NormalizedRow, len(rows))
	order := make([]string, 0, len(rows))
	dup := 0
	for _, row := range rows {
		if _, ok := byKey[row.Key]; ok {
			dup++
		} else {
			order = append(order, row.Key)
		}
		byKey[row.Key] = row
	}
	return byKey, order, dup
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
