package drafts

import "context"

// Store is a keyed draft store. Keys are lead identifiers; values are
// JSON-serializable draft payloads owned by the caller.
//
// Failure policy: draft persistence is best-effort. Callers must treat write
// errors as non-fatal and a corrupt or unreadable draft as "no draft" —
// implementations signal that by returning (false, nil) from Get.
type Store interface {
	// Put serializes payload under key, overwriting any prior draft.
	Put(ctx context.Context, key string, payload any) error

	// Get deserializes the draft under key into out.
	// Returns (false, nil) when no usable draft exists.
	Get(ctx context.Context, key string, out any) (bool, error)

	// Delete removes the draft under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
