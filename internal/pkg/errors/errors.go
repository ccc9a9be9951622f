package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	// ErrAIUnavailable covers failed or timed-out embedding/model provider
	// calls. Provider detail is logged, never surfaced to callers, and the
	// call is never retried here.
	ErrAIUnavailable = errors.New("ai unavailable")

	// ErrMalformedAgentOutput means the model call succeeded but its output
	// did not parse into the required structured shape. Distinct from
	// ErrAIUnavailable so callers can retry with a clarified prompt.
	ErrMalformedAgentOutput = errors.New("malformed agent output")

	// ErrToolLoopExceeded means the agent hit its iteration cap before
	// producing a final answer. The turn fails, nothing is committed.
	ErrToolLoopExceeded = errors.New("tool loop exceeded")

	// ErrMetricsOutdated is the freshness guard: latest metrics are older
	// than the window and force was not set. An expected outcome, not a
	// failure.
	ErrMetricsOutdated = errors.New("metrics outdated")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsGuard(err error) bool {
	return errors.Is(err, ErrMetricsOutdated)
}
