package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Failure kinds surfaced by the membership, message and auth services.
// Concrete failures wrap one of them so callers can branch with errors.Is.
var (
	ErrValidation       = fmt.Errorf("validation error")
	ErrBadRequest       = fmt.Errorf("bad request")
	ErrNotFound         = fmt.Errorf("not found")
	ErrConflict         = fmt.Errorf("conflict")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrCrypto           = fmt.Errorf("crypto error")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrUnauthenticated  = fmt.Errorf("unauthenticated")
)

var (
	ErrGroupNotFound     = fmt.Errorf("%w: group not found", ErrNotFound)
	ErrAlreadyMember     = fmt.Errorf("%w: already a member", ErrConflict)
	ErrGroupFull         = fmt.Errorf("%w: group is full", ErrConflict)
	ErrBanished          = fmt.Errorf("%w: banished from group, re-request required", ErrForbidden)
	ErrCooldown          = fmt.Errorf("%w: cooldown in effect", ErrForbidden)
	ErrOwnerCannotLeave  = fmt.Errorf("%w: owner must transfer ownership first", ErrForbidden)
	ErrOwnerOnly         = fmt.Errorf("%w: only the group owner can do this", ErrForbidden)
	ErrCannotBanishOwner = fmt.Errorf("%w: the owner cannot be banished", ErrForbidden)
	ErrNotMember         = fmt.Errorf("%w: not a group member", ErrBadRequest)
	ErrNoJoinRequest     = fmt.Errorf("%w: no such join request", ErrBadRequest)
	ErrNotGroupMember    = fmt.Errorf("%w: not a group member", ErrForbidden)
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrUserAlreadyExists  = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet complexity rules", ErrValidation)
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidKeyLength   = fmt.Errorf("cipher key and iv must be exactly 16 bytes")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// MapToHTTPStatus returns the status code matching the kind of err.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation), stderrors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrConflict):
		return http.StatusConflict
	case stderrors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the description safe to send back to a caller.
// Crypto and store failures never leak their cause.
func PublicMessage(err error) string {
	switch {
	case stderrors.Is(err, ErrCrypto):
		return "message could not be processed"
	case stderrors.Is(err, ErrStoreUnavailable):
		return "storage temporarily unavailable"
	case MapToHTTPStatus(err) == http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
