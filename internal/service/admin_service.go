package service

import (
	"context"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/pkg/admin/dashboard"
)

type IAdminService interface {
	GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error)
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	uowFactory          unitofwork.RepositoryFactory
	logger              logger.ILogger
	dashboardAggregator *dashboard.Aggregator
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger, dashboardAggregator *dashboard.Aggregator) IAdminService {
	return &adminService{
		uowFactory:          uowFactory,
		logger:              logger,
		dashboardAggregator: dashboardAggregator,
	}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.dashboardAggregator.GetStats(ctx, uow)
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]dto.LogListResponse, error) {
	return s.dashboardAggregator.GetSystemLogs(ctx, s.logger, page, limit, level)
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	return s.dashboardAggregator.GetLogDetail(ctx, s.logger, logId)
}
