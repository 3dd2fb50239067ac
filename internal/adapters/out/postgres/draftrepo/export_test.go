package draftrepo

import "time"

// SetClock replaces the clock used to stamp saved drafts.
func (r *GormDraftRepository) SetClock(now func() time.Time) {
	r.now = now
}
