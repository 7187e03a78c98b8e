// Package importer implements the administrative bulk loaders for catalog
// reference data. Rows come from CSV files; every row produces a report entry
// (created, updated, or failed with a reason) instead of a silent upsert, so
// operators can see exactly what a run did.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// Row actions reported per input line.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionFailed  = "failed"
)

// RowResult is the outcome of one input row.
type RowResult struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// Report summarizes a bulk import run.
type Report struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Failed  int         `json:"failed"`
	Rows    []RowResult `json:"rows"`
}

func (r *Report) add(res RowResult) {
	switch res.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	default:
		r.Failed++
	}
	r.Rows = append(r.Rows, res)
}

// ImportIngredients reads CSV rows of (name, measurement_unit) and upserts
// catalog rows: an exact (name, unit) match is left as-is and reported as
// updated; a name match with a different unit gets the unit rewritten; a new
// name is created. Malformed rows are reported, never skipped silently.
func ImportIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (*Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated per row for a better error message

	report := &Report{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.add(RowResult{Line: line, Action: ActionFailed, Reason: err.Error()})
			continue
		}
		if len(rec) != 2 {
			report.add(RowResult{Line: line, Action: ActionFailed, Reason: "expected 2 columns (name, measurement_unit)"})
			continue
		}
		name := strings.TrimSpace(rec[0])
		unit := strings.TrimSpace(rec[1])
		if name == "" || unit == "" {
			report.add(RowResult{Line: line, Name: name, Action: ActionFailed, Reason: "name and measurement_unit must not be empty"})
			continue
		}

		res, err := upsertIngredient(ctx, db, name, unit)
		if err != nil {
			report.add(RowResult{Line: line, Name: name, Action: ActionFailed, Reason: err.Error()})
			continue
		}
		res.Line = line
		report.add(res)
	}
	return report, nil
}

func upsertIngredient(ctx context.Context, db *gorm.DB, name, unit string) (RowResult, error) {
	// Exact (name, unit) match: nothing to change.
	if _, err := repo.FindIngredientByNameUnit(ctx, db, name, unit); err == nil {
		return RowResult{Name: name, Action: ActionUpdated, Reason: "already present"}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return RowResult{}, err
	}

	// Name-only match: rewrite the unit.
	var existing domain.Ingredient
	err := db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		if err := repo.UpdateIngredientUnit(ctx, db, existing.ID, unit); err != nil {
			return RowResult{}, err
		}
		return RowResult{Name: name, Action: ActionUpdated}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := repo.CreateIngredient(ctx, db, name, unit); err != nil {
			return RowResult{}, err
		}
		return RowResult{Name: name, Action: ActionCreated}, nil
	default:
		return RowResult{}, err
	}
}
