// Package step implements the idempotent batch pattern shared by every
// pipeline action: filter rows to "selected and not yet done", apply one
// side-effecting action per row, write the outcome back to that row before
// moving on, and report a summary.
package step

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/sheet"
)

// ErrNothingSelected aborts a step whose table holds no selected rows.
var ErrNothingSelected = eris.New("no selected rows to process")

// Step describes one batch action over a single table.
type Step struct {
	Name    string
	Table   string
	Columns []string

	// Selected reports whether the operator has flagged the row for this
	// workflow. Unselected rows are ignored entirely.
	Selected func(row []string) bool

	// Pending reports whether the row still needs this step's action.
	// Selected rows that are already done count as skipped.
	Pending func(row []string) bool

	// Process performs the row's external action and returns the cell
	// writes recording its result.
	Process func(ctx context.Context, idx int, row []string) ([]sheet.CellWrite, error)

	// OnError maps a per-row failure to the cell writes that make it
	// visible to the operator. Optional; when nil the failure is only
	// counted and logged.
	OnError func(idx int, row []string, err error) []sheet.CellWrite
}

// Summary tallies row outcomes for the completion report.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
}

// Run executes a step. Pre-flight failures (bad header, unreadable table,
// nothing selected) abort before any row is touched. Per-row failures are
// recorded into that row's cells and never abort the remaining rows.
//
// Each row's writes land before the next row is visited, so an interrupted
// run leaves earlier rows done and later rows untouched; re-running skips
// the finished rows via Pending.
func Run(ctx context.Context, store sheet.Store, s Step) (Summary, error) {
	log := zap.L().With(zap.String("step", s.Name))

	if err := store.EnsureHeader(s.Table, s.Columns); err != nil {
		return Summary{}, err
	}

	rows, err := store.ReadRows(s.Table, len(s.Columns))
	if err != nil {
		return Summary{}, eris.Wrapf(err, "step %s: read rows", s.Name)
	}

	selected := 0
	for _, row := range rows {
		if s.Selected(row) {
			selected++
		}
	}
	if selected == 0 {
		return Summary{}, eris.Wrapf(ErrNothingSelected, "step %s", s.Name)
	}

	var sum Summary
	for idx, row := range rows {
		if ctx.Err() != nil {
			// Stop between rows; earlier writes are already durable.
			return sum, eris.Wrapf(ctx.Err(), "step %s: cancelled at row %d", s.Name, idx)
		}

		if !s.Selected(row) {
			continue
		}
		if s.Pending != nil && !s.Pending(row) {
			sum.Skipped++
			continue
		}

		writes, err := s.Process(ctx, idx, row)
		if err != nil {
			sum.Failed++
			log.Warn("row failed", zap.Int("row", idx), zap.Error(err))
			if s.OnError != nil {
				writes = s.OnError(idx, row, err)
			} else {
				writes = nil
			}
		} else {
			sum.Processed++
		}

		if err := sheet.ApplyWrites(store, s.Table, writes); err != nil {
			return sum, eris.Wrapf(err, "step %s: write row %d", s.Name, idx)
		}
	}

	log.Info("step complete",
		zap.Int("processed", sum.Processed),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}
