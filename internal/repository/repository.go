package repository

import (
	"context"
	"errors"

	"scanimals-checkout/internal/domain"
)

// ErrNotFound is returned when a document or row does not exist
var ErrNotFound = errors.New("not found")

// CheckoutFeed streams full snapshots of the checkout collection
type CheckoutFeed interface {
	// Subscribe blocks, calling onSnapshot for every snapshot, until ctx is
	// done (nil) or the stream fails (the error).
	Subscribe(ctx context.Context, onSnapshot func([]domain.CheckoutRecord)) error
}

// CheckoutReader is a one-shot read of the current checkouts
type CheckoutReader interface {
	ListCheckouts(ctx context.Context) ([]domain.CheckoutRecord, error)
}

type CheckoutRepository interface {
	CheckoutReader
	CheckIn(ctx context.Context, id string) error
	SetOverride(ctx context.Context, id string, override domain.Override) error
}

type InventoryRepository interface {
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
}

type ReportDispatchRepository interface {
	Create(ctx context.Context, d *domain.ReportDispatch) error
	ListRecent(ctx context.Context, limit int) ([]domain.ReportDispatch, error)
}
