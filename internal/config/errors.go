package config

import "errors"

// Validation errors returned when the merged configuration cannot be used.
// All of them are fatal at startup.
var (
	// ErrMissingAPIURL indicates an empty TWENTY_API_URL.
	ErrMissingAPIURL = errors.New("missing CRM API url")
	// ErrMissingAPIKey indicates an empty TWENTY_API_KEY.
	ErrMissingAPIKey = errors.New("missing CRM API key")
	// ErrInvalidStrategy indicates an unknown CONFLICT_STRATEGY.
	ErrInvalidStrategy = errors.New("invalid conflict strategy")
	// ErrUnknownObject indicates a requested object type that is not configured.
	ErrUnknownObject = errors.New("unknown object type")
	// ErrNoObjects indicates that no object type is configured or selected.
	ErrNoObjects = errors.New("no object types configured")
	// ErrDuplicateObject indicates two object specs sharing a name.
	ErrDuplicateObject = errors.New("duplicate object type")
	// ErrInvalidObject indicates an object spec with a missing name, sheet or
	// field list, or one that tracks an identity field.
	ErrInvalidObject = errors.New("invalid object spec")
	// ErrInvalidBatchSize indicates a non-positive BATCH_SIZE.
	ErrInvalidBatchSize = errors.New("invalid batch size")
	// ErrInvalidInterval indicates a non-positive SYNC_INTERVAL_MINUTES.
	ErrInvalidInterval = errors.New("invalid sync interval")
	// ErrInvalidStorageConfigs indicates a missing workbook or state path, or
	// an unknown state backend.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrMissingLinkedInClient indicates missing LinkedIn OAuth credentials.
	ErrMissingLinkedInClient = errors.New("LINKEDIN_CLIENT_ID and LINKEDIN_CLIENT_SECRET must be set")
)
