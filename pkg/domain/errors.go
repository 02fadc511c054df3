package domain

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrItemNotFound is returned when an id does not resolve to an item of the graph.
var ErrItemNotFound = errors.New("item not found")

// ErrMissingID is returned when adding an item without an id.
var ErrMissingID = errors.New("item id is required")

// ErrDuplicateID is returned when adding an item whose id is already taken.
var ErrDuplicateID = errors.New("duplicate item id")

// ErrInvalidEndpoint is returned when an edge endpoint references a missing node.
var ErrInvalidEndpoint = errors.New("invalid edge endpoint")

// ErrRejected matches every *RejectionError.
var ErrRejected = errors.New("rejected")

// RejectReason says why a command or gesture was refused.
type RejectReason string

const (
	ReasonUnknownCommand      RejectReason = "UnknownCommand"
	ReasonReadOnlyMode        RejectReason = "ReadOnlyMode"
	ReasonNoSelection         RejectReason = "NoSelection"
	ReasonEmptyClipboard      RejectReason = "EmptyClipboard"
	ReasonNothingToUndo       RejectReason = "NothingToUndo"
	ReasonNothingToRedo       RejectReason = "NothingToRedo"
	ReasonNoItems             RejectReason = "NoItems"
	ReasonZoomLimit           RejectReason = "ZoomLimit"
	ReasonGuard               RejectReason = "Guard"
	ReasonDegreeLimitExceeded RejectReason = "DegreeLimitExceeded"
	ReasonSelfLoop            RejectReason = "SelfLoop"
	ReasonDuplicateEdge       RejectReason = "DuplicateEdge"
	ReasonTransitiveLimit     RejectReason = "TransitiveLimit"
	ReasonNotAnchor           RejectReason = "NotAnchor"
	ReasonCustomValidation    RejectReason = "CustomValidation"
	ReasonUnchanged           RejectReason = "Unchanged"
)

// RejectionError reports a refused command. Refusals never touch the graph or
// the history; callers are free to ignore them.
type RejectionError struct {
	Command string
	Reason  RejectReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("command %q rejected: %s", e.Command, e.Reason)
}

// Is makes errors.Is(err, ErrRejected) hold for every rejection.
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// Reject builds a *RejectionError.
func Reject(command string, reason RejectReason) error {
	return &RejectionError{Command: command, Reason: reason}
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a rejection.
func ReasonOf(err error) RejectReason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

// SurfaceError wraps a failure to construct the graph surface an editor runs on.
type SurfaceError struct {
	Op  string
	Err error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("graph surface %s: %v", e.Op, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

// ErrInvalidParams is returned when command params do not decode into the command's params type.
var ErrInvalidParams = errors.New("invalid command params")
