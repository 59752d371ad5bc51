package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSkipQueueEntryCommandIsNotConstructed = errors.New(
	"SkipQueueEntryCommand must be created via NewSkipQueueEntryCommand constructor",
)

// SkipQueueEntryCommand passes over an active queue entry, for example when the
// contractor cannot reach the site. The reason is required.
type SkipQueueEntryCommand struct {
	entryID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewSkipQueueEntryCommand validates the entry id and requires a non-empty reason.
func NewSkipQueueEntryCommand(entryID kernel.UUID, reason string) (SkipQueueEntryCommand, error) {
	var reasonErr error
	if strings.TrimSpace(reason) == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(entryID.Validate(), reasonErr); err != nil {
		return SkipQueueEntryCommand{}, err
	}
	return SkipQueueEntryCommand{entryID: entryID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c SkipQueueEntryCommand) Validate() error {
	return c.guard.Validate(ErrSkipQueueEntryCommandIsNotConstructed)
}

// EntryID and Reason expose the validated input.
func (c SkipQueueEntryCommand) EntryID() kernel.UUID { return c.entryID }
func (c SkipQueueEntryCommand) Reason() string       { return c.reason }
