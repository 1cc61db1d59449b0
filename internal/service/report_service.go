package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

var (
	ErrInvalidTimeRange            = errors.New("invalid time range")
	ErrMissingStatisticsParameters = errors.New("either a date range or a list of years is required")
	ErrInvalidSummaryType          = errors.New("invalid summary type")
)

// IsValidation reports whether err was caused by a bad request rather than
// by the record store.
func IsValidation(err error) bool {
	return errors.Is(err, period.ErrInvalidPeriodKind) ||
		errors.Is(err, period.ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrMissingStatisticsParameters) ||
		errors.Is(err, ErrInvalidSummaryType)
}

type ReportService interface {
	SummaryAnalyst(ctx context.Context, req domain.SummaryAnalystRequest) (domain.SummaryAnalystResponse, error)
	TopDoctors(ctx context.Context, req domain.TopDoctorsRequest) ([]domain.TopDoctorItem, error)
	AppointmentStatusSummary(ctx context.Context, req domain.AppointmentStatusSummaryRequest) ([]domain.AppointmentStatusCount, error)
	AppointmentBySpecialty(ctx context.Context, req domain.AppointmentBySpecialtyRequest) (domain.AppointmentBySpecialtyResponse, error)
	SpecialtyStatistics(ctx context.Context, req domain.SpecialtyStatisticsRequest) (domain.Page[domain.SpecialtyStatisticsItem], error)
	DoctorsAppointmentsStatistics(ctx context.Context, req domain.DoctorAppointmentsStatisticsRequest) (domain.Page[domain.DoctorAppointmentsItem], error)
	DoctorReviewStats(ctx context.Context, req domain.DoctorReviewStatsRequest) (domain.Page[domain.DoctorReviewItem], error)
	Ping(ctx context.Context) error
}

type reportService struct {
	repo     repository.ReportRepository
	resolver *period.Resolver
	Logger   *logrus.Logger
}

func NewReportService(repo repository.ReportRepository, resolver *period.Resolver, logger *logrus.Logger) ReportService {
	return &reportService{
		repo:     repo,
		resolver: resolver,
		Logger:   logger,
	}
}

func (s *reportService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *reportService) fail(fields logrus.Fields, err error, msg string) {
	entry := s.Logger.WithFields(fields).WithField("Error", err)
	if IsValidation(err) {
		entry.Warn(msg)
		return
	}
	entry.Error(msg)
}
