package commands

import (
	"errors"

	"expedition/internal/pkg/guard"
)

var ErrEvictIdleSessionsCommandIsNotConstructed = errors.New(
	"EvictIdleSessionsCommand must be created via NewEvictIdleSessionsCommand constructor",
)

// EvictIdleSessionsCommand asks for the sessions idle past their TTL to be released.
// Drafts of evicted sessions stay in the store and are restored on the next open.
type EvictIdleSessionsCommand struct {
	guard guard.ConstructorGuard
}

func NewEvictIdleSessionsCommand() EvictIdleSessionsCommand {
	return EvictIdleSessionsCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c EvictIdleSessionsCommand) Validate() error {
	return c.guard.Validate(ErrEvictIdleSessionsCommandIsNotConstructed)
}
