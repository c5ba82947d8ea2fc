package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
	"scanimals-checkout/internal/utils"
)

// Dashboard holds the latest checkout snapshot and its classified view.
// Snapshots arrive from the feed goroutine; Tick reclassifies against a fresh
// clock reading so items turn overdue without any data change.
type Dashboard struct {
	feed  repository.CheckoutFeed
	clock func() time.Time

	mu      sync.RWMutex
	records []domain.CheckoutRecord
	loading bool
	feedErr string
	view    domain.DashboardView
}

func NewDashboard(feed repository.CheckoutFeed, clock func() time.Time) *Dashboard {
	if clock == nil {
		clock = time.Now
	}
	d := &Dashboard{
		feed:    feed,
		clock:   clock,
		loading: true,
	}
	d.view = BuildView(nil, clock(), true, "")
	return d
}

// Run consumes the feed until ctx is done. A stream failure is recorded in
// the view and returned; the last snapshot keeps being served.
func (d *Dashboard) Run(ctx context.Context) error {
	logger.Info("Subscribing to checkout feed")
	err := d.feed.Subscribe(ctx, d.ApplySnapshot)
	if err != nil {
		d.FeedFailed(err)
		return err
	}
	logger.Info("Checkout feed subscription released")
	return nil
}

// ApplySnapshot replaces the working set
func (d *Dashboard) ApplySnapshot(records []domain.CheckoutRecord) {
	snapshot := make([]domain.CheckoutRecord, len(records))
	copy(snapshot, records)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = snapshot
	d.loading = false
	d.feedErr = ""
	d.view = BuildView(d.records, d.clock(), d.loading, d.feedErr)
	logger.Debug("Applied checkout snapshot", "count", len(snapshot))
}

// Tick recomputes the view with the current time
func (d *Dashboard) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = BuildView(d.records, d.clock(), d.loading, d.feedErr)
}

// FeedFailed clears the loading state and keeps whatever data was last seen
func (d *Dashboard) FeedFailed(err error) {
	logger.Error("Checkout feed failed", "error", err)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	d.feedErr = err.Error()
	d.view = BuildView(d.records, d.clock(), d.loading, d.feedErr)
}

// View returns the most recently computed view. Its slices are never
// mutated after being published.
func (d *Dashboard) View() domain.DashboardView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// ListCheckouts serves the latest snapshot, making the dashboard a
// CheckoutReader for the report service.
func (d *Dashboard) ListCheckouts(ctx context.Context) ([]domain.CheckoutRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	records := make([]domain.CheckoutRecord, len(d.records))
	copy(records, d.records)
	return records, nil
}

// BuildView classifies every record at now. CheckedOut lists all records in
// snapshot order; Overdue is the overdue subset in the same order.
func BuildView(records []domain.CheckoutRecord, now time.Time, loading bool, errMsg string) domain.DashboardView {
	view := domain.DashboardView{
		Now:        now,
		Loading:    loading,
		Error:      errMsg,
		CheckedOut: make([]domain.ItemView, 0, len(records)),
		Overdue:    []domain.ItemView{},
	}
	for _, r := range records {
		item := domain.ItemView{
			Record:       r,
			Status:       utils.Classify(r, now),
			Override:     r.Override.String(),
			CheckedOutAt: utils.FormatDateTimeIn(r.CheckoutTime, now.Location()),
		}
		if r.CheckoutTime != nil {
			item.HeldFor = strings.TrimSpace(humanize.RelTime(*r.CheckoutTime, now, "", ""))
		}
		view.CheckedOut = append(view.CheckedOut, item)
		if item.Status == domain.StatusOverdue {
			view.Overdue = append(view.Overdue, item)
		}
	}
	return view
}
