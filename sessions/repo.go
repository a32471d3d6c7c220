package sessions

import "context"

// Repo is the durable key/value storage behind a Store.
// Implementations must apply SetMany and Delete atomically: either every key changes or none does.
type Repo interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// SetMany writes all values in one step
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes the keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error
}
