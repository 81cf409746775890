package service

import "errors"

var (
	// ErrRateLimited rejects a creation attempt over a window ceiling.
	ErrRateLimited = errors.New("creation rate limit exceeded")
	// ErrUnsafeURL rejects a target the threat screener flagged.
	ErrUnsafeURL = errors.New("target url was flagged as unsafe")
	// ErrInvalidClickLimit rejects a non-positive click limit.
	ErrInvalidClickLimit = errors.New("click limit must be positive")
	// ErrNoFields rejects an update that changes nothing.
	ErrNoFields = errors.New("no updatable fields provided")
	// ErrLinkExpired marks a link past its expiry.
	ErrLinkExpired = errors.New("link expired")
	// ErrClickLimitReached marks a link whose click budget is used up.
	ErrClickLimitReached = errors.New("click limit exceeded")
)
