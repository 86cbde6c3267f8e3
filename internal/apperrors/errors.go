package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation lost a race or would re-lock an
// already locked resource (e.g. assembling a task that sits in another package).
var ErrConflict = errors.New("resource state conflict")

// ErrInvalidReference indicates that a linked entity (contract, client,
// contractor) could not be resolved.
var ErrInvalidReference = errors.New("invalid reference")

// ErrInvalidTransition indicates that an approval action is not legal for the
// document's current status.
var ErrInvalidTransition = errors.New("invalid approval transition")

// ErrForbidden indicates that the caller fails the guard for the attempted action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
