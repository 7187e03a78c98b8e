package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// tagColorRE validates the #RRGGBB color field.
var tagColorRE = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ImportTags reads CSV rows of (name, color, slug) and upserts tags keyed by
// slug: an existing slug gets name and color rewritten, a new slug is created.
func ImportTags(ctx context.Context, db *gorm.DB, r io.Reader) (*Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

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
		if len(rec) != 3 {
			report.add(RowResult{Line: line, Action: ActionFailed, Reason: "expected 3 columns (name, color, slug)"})
			continue
		}
		name := strings.TrimSpace(rec[0])
		color := strings.TrimSpace(rec[1])
		slug := strings.TrimSpace(rec[2])
		switch {
		case name == "" || slug == "":
			report.add(RowResult{Line: line, Name: name, Action: ActionFailed, Reason: "name and slug must not be empty"})
			continue
		case !tagColorRE.MatchString(color):
			report.add(RowResult{Line: line, Name: name, Action: ActionFailed, Reason: "color must match #RRGGBB"})
			continue
		}

		res, err := upsertTag(ctx, db, name, color, slug)
		if err != nil {
			report.add(RowResult{Line: line, Name: name, Action: ActionFailed, Reason: err.Error()})
			continue
		}
		res.Line = line
		report.add(res)
	}
	return report, nil
}

func upsertTag(ctx context.Context, db *gorm.DB, name, color, slug string) (RowResult, error) {
	var existing domain.Tag
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{"name": name, "color": color}
		if err := db.WithContext(ctx).Model(&domain.Tag{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return RowResult{}, err
		}
		return RowResult{Name: name, Action: ActionUpdated}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		t := &domain.Tag{ID: uuid.NewString(), Name: name, Color: color, Slug: slug}
		if err := db.WithContext(ctx).Create(t).Error; err != nil {
			return RowResult{}, err
		}
		return RowResult{Name: name, Action: ActionCreated}, nil
	default:
		return RowResult{}, err
	}
}
