package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes; anything else is treated as an internal error.
var (
	// ErrNotFound means the referenced record does not exist or is out of
	// the caller's scope.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden means the caller is not allowed to act on the record.
	ErrForbidden = errors.New("access denied")

	// ErrValidation means the request payload failed a business validation.
	ErrValidation = errors.New("validation failed")

	// ErrRoomFull means the target room already holds as many active
	// residents as its sharing allows.
	ErrRoomFull = errors.New("room capacity exceeded")

	// ErrReviewLimit means the resident already has a review for their
	// current stay.
	ErrReviewLimit = errors.New("review limit reached")

	// ErrInvalidSignature means a payment callback carried a signature that
	// does not verify. No state is changed when this is returned.
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrInvalidTransition means the payment is already in a terminal state
	// that the requested transition would move backward from.
	ErrInvalidTransition = errors.New("invalid payment status transition")

	// ErrNoReviews means a rating average was requested for a listing with
	// no reviews.
	ErrNoReviews = errors.New("no reviews found")

	// ErrUpstream means an external dependency (payment gateway, geocoder)
	// failed.
	ErrUpstream = errors.New("upstream service failed")
)
