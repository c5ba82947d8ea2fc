package service

import (
	"context"
	"errors"

	"scanimals-checkout/internal/domain"
)

var (
	ErrInvalidRecipient = errors.New("invalid recipient email address")
	ErrRateLimited      = errors.New("too many report emails, try again shortly")
	ErrEmailDelivery    = errors.New("failed to send report email")
	ErrInvalidOverride  = errors.New("override must be one of overdue, active, none")
)

type ReportService interface {
	GetReport(ctx context.Context, period domain.ReportPeriod) (*domain.ReportResult, error)
	GetItemSummary(ctx context.Context) (*domain.ItemSummaryReport, error)
	SendReport(ctx context.Context, recipient string, period domain.ReportPeriod) (*domain.ReportDispatch, error)
	ListDispatches(ctx context.Context, limit int) ([]domain.ReportDispatch, error)
}

type InventoryService interface {
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
	CheckIn(ctx context.Context, id string) error
	SetOverride(ctx context.Context, id, override string) error
}

type EmailService interface {
	SendReport(ctx context.Context, email domain.ReportEmail) error
}
