package services

import "errors"

// Sentinel errors shared by the workflow services. Controllers map them to
// HTTP statuses: ErrNotFound -> 404, ErrInvalidTransition and
// ErrPrecondition -> 409, ErrForbidden -> 403; validation failures are
// carried by ValidationResult instead.
var (
	// ErrNotFound signals an unknown DOI label, thread or record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition signals an editorial action applied to a
	// submission whose status does not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPrecondition signals a state precondition violation, e.g.
	// accepting an already-accepted conditional assignment offer.
	ErrPrecondition = errors.New("precondition failed")

	// ErrForbidden signals an actor without the right over the record.
	ErrForbidden = errors.New("forbidden")
)
