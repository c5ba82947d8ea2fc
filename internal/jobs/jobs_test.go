package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"scanimals-checkout/internal/config"
	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/service"
)

var _ service.ReportService = (*MockReportService)(nil)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GetReport(ctx context.Context, period domain.ReportPeriod) (*domain.ReportResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportResult), args.Error(1)
}

func (m *MockReportService) GetItemSummary(ctx context.Context) (*domain.ItemSummaryReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemSummaryReport), args.Error(1)
}

func (m *MockReportService) SendReport(ctx context.Context, recipient string, period domain.ReportPeriod) (*domain.ReportDispatch, error) {
	args := m.Called(ctx, recipient, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDispatch), args.Error(1)
}

func (m *MockReportService) ListDispatches(ctx context.Context, limit int) ([]domain.ReportDispatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportDispatch), args.Error(1)
}

type countingTicker struct {
	ticks int
	panic bool
}

func (c *countingTicker) Tick() {
	c.ticks++
	if c.panic {
		panic("boom")
	}
}

func testConfig(recipients ...string) *config.Config {
	return &config.Config{Reports: config.ReportsConfig{Recipients: recipients}}
}

func TestJobRunner_SendScheduledReport(t *testing.T) {
	reports := new(MockReportService)
	jr := NewJobRunner(nil, reports, testConfig("a@zoo.test", "b@zoo.test", "c@zoo.test"))

	reports.On("SendReport", mock.Anything, "a@zoo.test", domain.PeriodDaily).Return(&domain.ReportDispatch{TotalCount: 3}, nil).Once()
	reports.On("SendReport", mock.Anything, "b@zoo.test", domain.PeriodDaily).Return(nil, errors.New("sendgrid down")).Once()
	reports.On("SendReport", mock.Anything, "c@zoo.test", domain.PeriodDaily).Return(&domain.ReportDispatch{TotalCount: 3}, nil).Once()

	assert.Equal(t, 2, jr.sendScheduledReport(domain.PeriodDaily))
	reports.AssertExpectations(t)
}

func TestJobRunner_NoRecipients(t *testing.T) {
	reports := new(MockReportService)
	jr := NewJobRunner(nil, reports, testConfig())

	assert.Equal(t, 0, jr.sendScheduledReport(domain.PeriodWeekly))
	reports.AssertNotCalled(t, "SendReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobRunner_RunAllReports(t *testing.T) {
	reports := new(MockReportService)
	jr := NewJobRunner(nil, reports, testConfig("a@zoo.test"))

	for _, p := range []domain.ReportPeriod{domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly} {
		reports.On("SendReport", mock.Anything, "a@zoo.test", p).Return(&domain.ReportDispatch{}, nil).Once()
	}

	jr.RunAllReports()
	reports.AssertExpectations(t)
}

func TestJobRunner_TickDashboard(t *testing.T) {
	t.Run("Ticks", func(t *testing.T) {
		ticker := &countingTicker{}
		jr := NewJobRunner(ticker, nil, testConfig())
		jr.TickDashboard()
		jr.TickDashboard()
		assert.Equal(t, 2, ticker.ticks)
		assert.True(t, jr.HasDashboard())
	})

	t.Run("Panic is recovered", func(t *testing.T) {
		ticker := &countingTicker{panic: true}
		jr := NewJobRunner(ticker, nil, testConfig())
		assert.NotPanics(t, jr.TickDashboard)
	})

	t.Run("No dashboard", func(t *testing.T) {
		jr := NewJobRunner(nil, nil, testConfig())
		assert.False(t, jr.HasDashboard())
		assert.NotPanics(t, jr.TickDashboard)
	})
}

func TestMockReportService_FailedLookups(t *testing.T) {
	reports := new(MockReportService)
	reports.On("GetReport", mock.Anything, domain.PeriodDaily).Return(nil, errors.New("feed unavailable")).Once()
	reports.On("GetItemSummary", mock.Anything).Return(nil, errors.New("feed unavailable")).Once()
	reports.On("ListDispatches", mock.Anything, 10).Return(nil, errors.New("no dispatch log")).Once()

	ctx := context.Background()
	result, err := reports.GetReport(ctx, domain.PeriodDaily)
	assert.Nil(t, result)
	assert.Error(t, err)

	summary, err := reports.GetItemSummary(ctx)
	assert.Nil(t, summary)
	assert.Error(t, err)

	dispatches, err := reports.ListDispatches(ctx, 10)
	assert.Nil(t, dispatches)
	assert.Error(t, err)

	reports.AssertExpectations(t)
}
