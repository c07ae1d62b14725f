package service

import "errors"

var (
	// ErrConfiguration means a setting is missing or holds an unusable value.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateCode is a generated invite code colliding with a stored one.
	// Issue retries it internally.
	ErrDuplicateCode = errors.New("duplicate invite code")

	// ErrLinkCreationFailed covers the link provider refusing or lacking
	// permission, and exhausting code retries.
	ErrLinkCreationFailed = errors.New("invite link creation failed")

	ErrValidation    = errors.New("validation error")
	ErrAccessDenied  = errors.New("access denied")
	ErrNoPendingEdit = errors.New("no pending admin edit")

	ErrRateLimited     = errors.New("too many invite requests")
	ErrInviteNotFound  = errors.New("invite not found")
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrPersistenceLost = errors.New("invite could not be saved")
)
