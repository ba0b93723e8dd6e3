package lock

import "context"

// Config is the durable screen-lock record for one user. There is at most one
// per user; disabling the lock overwrites the fields rather than deleting the
// record.
type Config struct {
	// Enabled reports whether the screen lock is active for the user.
	Enabled bool `bson:"enabled" json:"enabled"`

	// Pin holds the PinHash digest of the current PIN, or nil when the lock
	// is disabled. The field keeps its historical name even though it never
	// contains the raw PIN.
	Pin *string `bson:"pin" json:"pin"`

	// UpdatedAt is the last mutation time as an ISO-8601 string.
	UpdatedAt string `bson:"updatedAt" json:"updatedAt"`
}

// ConfigRepository is the remote document store for lock configurations.
type ConfigRepository interface {
	// Get returns the configuration for the user, or (nil, nil) when none
	// exists yet.
	Get(ctx context.Context, userID string) (*Config, error)

	// Set overwrites the configuration for the user.
	Set(ctx context.Context, userID string, cfg Config) error
}
