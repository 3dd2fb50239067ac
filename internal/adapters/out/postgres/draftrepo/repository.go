package draftrepo

import (
	"context"
	"errors"
	"time"

	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ ports.DraftStore  = (*GormDraftRepository)(nil)
	_ ports.DraftPurger = (*GormDraftRepository)(nil)
)

// GormDraftRepository implements ports.DraftStore and ports.DraftPurger using GORM.
type GormDraftRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormDraftRepository creates a new GORM draft repository.
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{
		db:  db,
		now: time.Now,
	}
}

// Save upserts the draft stored under key.
func (r *GormDraftRepository) Save(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return errs.NewValueIsRequiredError("key")
	}

	dto := DraftDTO{
		SessionKey: key,
		Payload:    string(payload),
		UpdatedAt:  r.now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&dto).Error
}

// Load retrieves the draft stored under key.
func (r *GormDraftRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var dto DraftDTO
	if err := r.db.WithContext(ctx).First(&dto, "session_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("draft", key)
		}
		return nil, err
	}

	return []byte(dto.Payload), nil
}

// Clear deletes the draft stored under key.
func (r *GormDraftRepository) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&DraftDTO{}, "session_key = ?", key).Error
}

// PurgeOlderThan deletes the drafts last saved before cutoff.
func (r *GormDraftRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&DraftDTO{}, "updated_at < ?", cutoff.UTC())
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
