package navigator

import "errors"

var (
	// ErrTerminal is returned by transitions attempted after the session
	// was disqualified or completed.
	ErrTerminal = errors.New("navigator: session is in a terminal state")
	// ErrFirstStep is returned by Retreat on the first step.
	ErrFirstStep = errors.New("navigator: already on the first step")
	// ErrNotCompleted is returned by Submit before the session completed.
	ErrNotCompleted = errors.New("navigator: session has not completed")
	// ErrSubmissionInFlight rejects calls made while a submission runs.
	ErrSubmissionInFlight = errors.New("navigator: submission in flight")
	// ErrAlreadySubmitted is returned by Submit once delivery succeeded.
	ErrAlreadySubmitted = errors.New("navigator: record already submitted")
	// ErrPrefillAfterStart is returned by Prefill after the first advance.
	ErrPrefillAfterStart = errors.New("navigator: prefill must happen before the first advance")
	// ErrUnknownField is returned by Capture for inputs the current step
	// does not render.
	ErrUnknownField = errors.New("navigator: unknown field")
)
