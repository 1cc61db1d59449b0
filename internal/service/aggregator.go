package service

import (
	"context"
	"fmt"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

// metric is a countable or summable measure of one entity. The time field
// bounds every measurement; a non-empty sum field turns the count into a sum.
type metric struct {
	base      repository.Query
	timeField repository.Field
	sumField  repository.Field
}

func summaryMetric(t domain.SummaryType) (metric, error) {
	switch t {
	case domain.SummaryPatient:
		return metric{
			base:      repository.From(repository.Patients),
			timeField: repository.FieldCreatedAt,
		}, nil
	case domain.SummaryDoctor:
		return metric{
			base:      repository.From(repository.Doctors, repository.Eq(repository.FieldRegistrationStatus, domain.RegistrationApproved)),
			timeField: repository.FieldCreatedAt,
		}, nil
	case domain.SummaryAppointment:
		return metric{
			base:      repository.From(repository.Appointments),
			timeField: repository.FieldCreatedAt,
		}, nil
	case domain.SummaryRevenue:
		return metric{
			base:      repository.From(repository.Orders, repository.Eq(repository.FieldStatus, domain.OrderCompleted)),
			timeField: repository.FieldCreatedAt,
			sumField:  repository.FieldAmount,
		}, nil
	}
	return metric{}, fmt.Errorf("%w: %q", ErrInvalidSummaryType, t)
}

func (m metric) in(w period.Window) repository.Query {
	return m.base.InWindow(m.timeField, w.Start, w.End)
}

// measure evaluates m over w. Empty windows measure 0 without a query.
func measure(ctx context.Context, repo repository.ReportRepository, m metric, w period.Window) (float64, error) {
	if w.Empty() {
		return 0, nil
	}
	if m.sumField != "" {
		return repo.Sum(ctx, m.in(w), m.sumField)
	}
	n, err := repo.Count(ctx, m.in(w))
	return float64(n), err
}

// onDays bounds the visit day of appointments to the calendar days of w.
func onDays(q repository.Query, w period.Window) repository.Query {
	return q.And(repository.Between(repository.FieldDate, w.StartDate(), w.EndDate())...)
}
