// Package draftrepo persists serialized expedition drafts in PostgreSQL, one row per
// session key.
package draftrepo

import "time"

// DraftDTO is a stored draft. Payload holds the JSON snapshot as written by the drafts
// repository.
type DraftDTO struct {
	SessionKey string    `gorm:"primaryKey;size:128"`
	Payload    string    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"index;not null"`
}

// TableName overrides GORM's default naming convention.
func (DraftDTO) TableName() string {
	return "expedition_drafts"
}
