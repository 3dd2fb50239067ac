// Package commands contains the maintenance operations run against the wizard sessions
// and the draft store. Every command is built by its constructor and checked by its
// handler before anything is changed.
package commands

import "context"

// SessionEvictor drops idle sessions from memory and reports how many were dropped.
// *wizard.Sessions implements it.
type SessionEvictor interface {
	EvictIdle(ctx context.Context) int
}
