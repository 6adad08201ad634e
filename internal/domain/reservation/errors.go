package reservation

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindTechnical  Kind = "technical"
	KindNotFound   Kind = "not_found"
)

// Sentinels for errors.Is against a *Rejection of the matching kind.
var (
	ErrValidation = errors.New("reservation rejected")
	ErrConflict   = errors.New("slot already taken")
	ErrTechnical  = errors.New("technical failure")
	ErrNotFound   = errors.New("not found")
)

const (
	reasonConflict  = "another meeting is already booked for this slot in this room"
	reasonTechnical = "technical failure while saving the reservation"
)

// Rejection is every failure the engine returns. Reason is safe to show to
// callers; Err carries the underlying storage error for technical failures
// and is never rendered.
type Rejection struct {
	Kind      Kind
	Reason    string
	Retryable bool
	Err       error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Reason, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func (r *Rejection) Is(target error) bool {
	switch target {
	case ErrValidation:
		return r.Kind == KindValidation
	case ErrConflict:
		return r.Kind == KindConflict
	case ErrTechnical:
		return r.Kind == KindTechnical
	case ErrNotFound:
		return r.Kind == KindNotFound
	}
	return false
}

func invalid(format string, args ...any) *Rejection {
	return &Rejection{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func notFound(reason string) *Rejection {
	return &Rejection{Kind: KindNotFound, Reason: reason}
}

func conflict() *Rejection {
	return &Rejection{Kind: KindConflict, Reason: reasonConflict}
}

func technical(err error) *Rejection {
	return &Rejection{Kind: KindTechnical, Reason: reasonTechnical, Retryable: true, Err: err}
}

// AsRejection returns err as a *Rejection, wrapping anything else as a
// technical failure.
func AsRejection(err error) *Rejection {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return technical(err)
}
