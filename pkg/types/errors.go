package types

import "errors"

// Failure taxonomy shared by the state machine, the aggregator and the
// HTTP layer. Services wrap these with fmt.Errorf("%w: ...") to attach a
// human-readable reason; handlers branch with errors.Is.
var (
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation: the request payload is malformed or incomplete.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition: the requested edge is not in the transition table.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrBusinessRuleViolation: the edge exists but its predicate failed.
	ErrBusinessRuleViolation = errors.New("business rule violation")
	// ErrNoActiveMenuCycle: aggregation precondition unmet.
	ErrNoActiveMenuCycle = errors.New("no active menu cycle configured")
	// ErrMultipleActiveMenuCycles: more than one cycle is flagged active.
	// Never resolved by picking the first row found.
	ErrMultipleActiveMenuCycles = errors.New("multiple active menu cycles configured")
	// ErrDataIntegrity: an orphaned or inconsistent reference was found.
	// During aggregation these are recovered locally, not surfaced as a
	// call failure.
	ErrDataIntegrity = errors.New("data integrity fault")
)
