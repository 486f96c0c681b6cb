package interfaces

import "context"

// Store is the durable keyed persistence port for one record kind. Every method is atomic per key:
// a write either fully succeeds or the previous record stays in place.
//
//go:generate moq -stub -out mock/store.go -pkg mock . Store
type Store[T any] interface {
	// CreateValue inserts item under key.
	// Returns:
	// 1) nil on success;
	// 2) entity_already_exists when key is already stored;
	// 3) internal_server_error when marshalling or the storage write fails.
	CreateValue(ctx context.Context, key string, item T) error

	// WriteValue inserts or replaces item under key (last write wins).
	// Returns:
	// 1) nil on success;
	// 2) internal_server_error when marshalling or the storage write fails.
	WriteValue(ctx context.Context, key string, item T) error

	// ReadValue returns the item stored under key.
	// Returns:
	// 1) (item, nil) on success;
	// 2) (zero, entity_not_found) when key is absent;
	// 3) (zero, internal_server_error) when the storage read or unmarshalling fails.
	ReadValue(ctx context.Context, key string) (T, error)

	// ListAllValues returns every stored item, possibly none.
	// Returns:
	// 1) (items, nil), items may be empty;
	// 2) (nil, internal_server_error) when listing fails.
	ListAllValues(ctx context.Context) ([]T, error)

	// DeleteValue removes key. Deleting an absent key is not an error.
	// Returns:
	// 1) nil on success;
	// 2) internal_server_error when the storage delete fails.
	DeleteValue(ctx context.Context, key string) error
}
