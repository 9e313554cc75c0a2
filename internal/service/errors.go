package service

import "errors"

var (
	ErrUnknownStrategy = errors.New("unknown conflict strategy")

	ErrStateLoad        = errors.New("failed to load sync state")
	ErrStatePersistence = errors.New("failed to persist sync state")

	ErrNoLinkedInToken    = errors.New("no linkedin access token, run linkedin-auth first")
	ErrInvalidScope       = errors.New("invalid linkedin sync scope")
	ErrAuthorizerDisabled = errors.New("linkedin oauth is not configured")
)
