package dashboard

import (
	"context"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/repository/specification"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/mapper"
	"regdesk-be/pkg/admin/notify"
)

// SummaryProvider exposes the expiry counts already held by the alert aggregator
type SummaryProvider interface {
	Summary() notify.Summary
}

// Aggregator handles dashboard statistics
type Aggregator struct {
	alerts SummaryProvider
	logger logger.ILogger
}

func NewAggregator(alerts SummaryProvider, logger logger.ILogger) *Aggregator {
	return &Aggregator{
		alerts: alerts,
		logger: logger,
	}
}

// GetStats counts registrations per status and reuses the last expiry snapshot
// instead of classifying every pending row again.
func (a *Aggregator) GetStats(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.AdminDashboardStats, error) {
	stats := &dto.AdminDashboardStats{}

	counts := []struct {
		status entity.RegistrationStatus
		target *int
	}{
		{entity.RegistrationStatusPending, &stats.Pending},
		{entity.RegistrationStatusApproved, &stats.Approved},
		{entity.RegistrationStatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		n, err := uow.RegistrationRepository().CountByStatus(ctx, string(c.status))
		if err != nil {
			return nil, err
		}
		*c.target = int(n)
		stats.TotalRegistrations += int(n)
	}

	pendingTransfers, err := uow.TransferRequestRepository().Count(ctx,
		specification.ByStatus{Status: string(entity.TransferStatusPending)},
	)
	if err != nil {
		a.logger.Warn("ADMIN", "Failed to count pending transfers", map[string]interface{}{"error": err.Error()})
	} else {
		stats.PendingTransfers = int(pendingTransfers)
	}

	if a.alerts != nil {
		summary := a.alerts.Summary()
		stats.Expired = summary.ExpiredCount
		stats.ExpiringSoon = summary.ExpiringSoonCount
	}
	return stats, nil
}

// GetSystemLogs pages through the JSON log file, newest first
func (a *Aggregator) GetSystemLogs(ctx context.Context, loggerSvc logger.ILogger, page, limit int, level string) ([]dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	logs, err := loggerSvc.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, mapper.LogToListResponse(l))
	}
	return res, nil
}

func (a *Aggregator) GetLogDetail(ctx context.Context, loggerSvc logger.ILogger, logId string) (*dto.LogDetailResponse, error) {
	l, err := loggerSvc.GetLogById(logId)
	if err != nil {
		return nil, err
	}
	return mapper.LogToDetailResponse(*l), nil
}
