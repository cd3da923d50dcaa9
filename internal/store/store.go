// Package store persists accepted card requests keyed by enrollment number.
package store

import (
	"context"
	"errors"

	"librarycard/internal/card"
)

// ErrNotFound is returned when no card is stored under a key.
var ErrNotFound = errors.New("student card not found")

// RecordStore is the card persistence contract. Create overwrites any card
// with the same enrollment number (last write wins) and never fails on a
// duplicate key.
type RecordStore interface {
	Create(ctx context.Context, req card.Request) (card.StoredCard, error)
	GetByEnrollment(ctx context.Context, enrollmentNumber string) (card.StoredCard, error)
	ListAll(ctx context.Context) ([]card.StoredCard, error)
	Healthy(ctx context.Context) bool
}
