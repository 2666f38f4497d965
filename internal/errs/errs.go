package errs

import (
	"context"
	"errors"
	"net"
)

// Kind identifies the failure class of a terminated run.
type Kind string

const (
	KindSourceUnavailable   Kind = "source_unavailable"
	KindMalformedClaim      Kind = "malformed_claim"
	KindGenerationFailed    Kind = "generation_failed"
	KindDeclarationNotFound Kind = "declaration_not_found"
	KindSynthesisFailed     Kind = "synthesis_failed"
	KindTimeout             Kind = "timeout"
	KindInternal            Kind = "internal"
)

type classifiedError struct {
	kind  Kind
	step  string
	cause error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return string(e.kind)
	}
	if e.step == "" {
		return string(e.kind) + ": " + e.cause.Error()
	}
	return string(e.kind) + " at " + e.step + ": " + e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func (e *classifiedError) Kind() Kind {
	return e.kind
}

func (e *classifiedError) Step() string {
	return e.step
}

// Wrap classifies cause with a kind and the pipeline step it occurred at.
// A nil cause returns nil so call sites can wrap unconditionally.
func Wrap(cause error, kind Kind, step string) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		kind:  kind,
		step:  step,
		cause: cause,
	}
}

func KindOf(err error) Kind {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.kind
	}
	return ""
}

func StepOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.step
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Classify wraps cause with fallback unless it is already classified or
// is a deadline expiry, which becomes KindTimeout so callers can tell a
// slow collaborator from a failed one.
func Classify(cause error, fallback Kind, step string) error {
	if cause == nil {
		return nil
	}
	if KindOf(cause) != "" {
		return cause
	}
	// Caller abandonment is not a failure kind; let it propagate bare.
	if errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		return Wrap(cause, KindTimeout, step)
	}
	var netErr net.Error
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return Wrap(cause, KindTimeout, step)
	}
	return Wrap(cause, fallback, step)
}
