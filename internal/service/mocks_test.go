package service

import (
	"context"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/mock"

	"scanimals-checkout/internal/domain"
)

type MockCheckoutRepo struct {
	mock.Mock
}

func (m *MockCheckoutRepo) ListCheckouts(ctx context.Context) ([]domain.CheckoutRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckoutRecord), args.Error(1)
}

func (m *MockCheckoutRepo) CheckIn(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCheckoutRepo) SetOverride(ctx context.Context, id string, override domain.Override) error {
	args := m.Called(ctx, id, override)
	return args.Error(0)
}

type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

type MockDispatchRepo struct {
	mock.Mock
}

func (m *MockDispatchRepo) Create(ctx context.Context, d *domain.ReportDispatch) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDispatchRepo) ListRecent(ctx context.Context, limit int) ([]domain.ReportDispatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportDispatch), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReport(ctx context.Context, email domain.ReportEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockSendGridClient struct {
	mock.Mock
}

func (m *MockSendGridClient) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rest.Response), args.Error(1)
}

// fakeFeed delivers a fixed list of snapshots, then either fails with err or
// blocks until the context is cancelled.
type fakeFeed struct {
	snapshots [][]domain.CheckoutRecord
	err       error
}

func (f *fakeFeed) Subscribe(ctx context.Context, onSnapshot func([]domain.CheckoutRecord)) error {
	for _, s := range f.snapshots {
		onSnapshot(s)
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}
