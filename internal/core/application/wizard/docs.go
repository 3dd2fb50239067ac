// Package wizard sequences the intake stages of one session at a time.
//
// The package includes:
//   - Controller: owns a session's draft, validates before advancing, saves on every
//     mutation, resolves the route and submits the finalized shipment
//   - Sessions: the registry of controllers keyed by session id, with idle eviction
//   - Nudge: an optional timer the host arms after confirmation
//
// Concurrency rules:
//   - Advance, ResolveRoute and Finalize are mutually exclusive per session; while one
//     of them waits on an external call the others fail with ErrOperationInProgress
//   - Retreat and Reset stay available and win: a late external result for a draft
//     that moved on is discarded with ErrDraftMoved
//   - External calls are bounded by a timeout (15 s by default)
//   - A failing draft store never blocks the wizard; the session continues in memory
package wizard
