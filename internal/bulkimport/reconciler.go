package bulkimport

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/rxline/pharmaflow/internal/drugs"
)

// DrugCreator is the slice of the inventory store the reconciler needs.
type DrugCreator interface {
	Create(ctx context.Context, d drugs.Drug) error
}

// Outcome is the full result of one import submission: how many rows were
// persisted plus every per-row failure, in original row order. Nothing is
// discarded even when all rows fail.
type Outcome struct {
	SuccessCount int        `json:"successCount"`
	Errors       []RowError `json:"errors"`
}

// Reconciler turns raw tabular rows into persisted drug records plus an error
// report. Rows are processed strictly one at a time; the batch is deliberately
// not wrapped in a single transaction so good rows land even when bad rows
// surround them.
type Reconciler struct {
	store DrugCreator
	newID func() string
}

// NewReconciler returns a Reconciler writing through the given store.
func NewReconciler(store DrugCreator) *Reconciler {
	return &Reconciler{store: store, newID: uuid.NewString}
}

// Run validates and persists each row for the owning entity. A row failing
// validation never reaches the store; a row failing at the store is recorded
// and the remaining rows still run. Row numbers in the outcome are 1-based
// over data rows.
func (r *Reconciler) Run(ctx context.Context, ownerID string, rows [][]string) Outcome {
	out := Outcome{Errors: []RowError{}}
	for i, raw := range rows {
		rowNum := i + 1
		parsed, rowErr := ValidateRow(rowNum, raw)
		if rowErr != nil {
			out.Errors = append(out.Errors, *rowErr)
			continue
		}

		d := drugs.Drug{
			DrugID:      r.newID(),
			DrugType:    parsed.DrugType,
			Name:        parsed.Name,
			BatchNo:     parsed.BatchNo,
			Description: parsed.Description,
			Stock:       parsed.Stock,
			MfgDate:     parsed.MfgDate,
			ExpDate:     parsed.ExpDate,
			Price:       parsed.Price,
			Category:    parsed.Category,
			CreatedBy:   ownerID,
		}
		if err := r.store.Create(ctx, d); err != nil {
			code := ErrCodeStoreFailure
			if errors.Is(err, drugs.ErrBatchConflict) {
				code = ErrCodeStoreConflict
			}
			log.Printf("import row %d rejected by store: %v", rowNum, err)
			out.Errors = append(out.Errors, RowError{
				Row:     rowNum,
				Code:    code,
				Message: err.Error(),
				Data:    raw,
			})
			continue
		}
		out.SuccessCount++
	}
	return out
}
