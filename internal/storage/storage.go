// Package storage persists export artifacts and hands out short-lived
// download links.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object_not_found")

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error

	// PresignGet returns a time-limited URL serving the object as an
	// attachment named fileName.
	PresignGet(ctx context.Context, key, fileName string) (string, error)
}
