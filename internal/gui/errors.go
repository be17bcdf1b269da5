package gui

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures reported by a Ui.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindStaleID means an id was never issued by this Ui or its widget was removed.
	KindStaleID
	// KindCapability means a structural operation was attempted from inside an
	// operation, or a capability was used after its delivery finished.
	KindCapability
	// KindReentrant means a top-level operation was started while another was running.
	KindReentrant
	// KindCallCycle means a Call targeted a widget that already has a handler on the stack.
	KindCallCycle
	// KindNoResponse means the called widget does not answer calls.
	KindNoResponse
	// KindLimit means an operation exceeded its delivery budget.
	KindLimit
	// KindCanceled means the context ended; queued work was dropped.
	KindCanceled
	// KindClosed means the Ui was closed.
	KindClosed
	// KindBuild means a data or widget factory failed or panicked.
	KindBuild
	// KindInvalid means the arguments make no sense, e.g. removing the root.
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindStaleID:
		return "stale id"
	case KindCapability:
		return "capability"
	case KindReentrant:
		return "reentrant"
	case KindCallCycle:
		return "call cycle"
	case KindNoResponse:
		return "no response"
	case KindLimit:
		return "limit"
	case KindCanceled:
		return "canceled"
	case KindClosed:
		return "closed"
	case KindBuild:
		return "build"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	ErrStaleID       = errors.New("widget id is not live")
	ErrForeignID     = errors.New("widget id belongs to another ui")
	ErrInFlight      = errors.New("structural change while an operation is in flight")
	ErrExpired       = errors.New("capability used outside its delivery")
	ErrReentrant     = errors.New("operation already in flight")
	ErrNoResponder   = errors.New("widget does not respond to calls")
	ErrDeliveryLimit = errors.New("delivery budget exhausted")
	ErrClosed        = errors.New("ui is closed")
	ErrNilWidget     = errors.New("widget factory returned nil")
	ErrRemoveRoot    = errors.New("the root widget cannot be removed")
)

// Error is the error type returned by every Ui operation.
type Error struct {
	Op   string
	Kind ErrorKind
	ID   ID
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if !e.ID.IsZero() {
		b.WriteString(" (")
		b.WriteString(e.ID.String())
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op string, kind ErrorKind, id ID, err error) error {
	return errors.WithStack(&Error{Op: op, Kind: kind, ID: id, Err: err})
}

// IsKind reports whether err carries a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOfError returns the kind of the first *Error in err's chain.
func KindOfError(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
