package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

// OtherSpecialty names appointments whose specialty cannot be resolved.
const OtherSpecialty = "Other"

// statusLabels is the fixed status axis of the status summary.
var statusLabels = []struct{ status, label string }{
	{domain.StatusConfirmed, "Đã Xác Nhận"},
	{domain.StatusPending, "Đang Chờ"},
	{domain.StatusCancelled, "Đã Hủy"},
	{domain.StatusCompleted, "Đã Hoàn Thành"},
}

// AppointmentStatusSummary counts appointments created in the range for
// each recognized status. Other statuses are left out of the result.
func (s *reportService) AppointmentStatusSummary(ctx context.Context, req domain.AppointmentStatusSummaryRequest) ([]domain.AppointmentStatusCount, error) {
	fields := logrus.Fields{
		"Function":  "AppointmentStatusSummary",
		"StartDate": req.StartDate,
		"EndDate":   req.EndDate,
	}
	s.Logger.WithFields(fields).Info("Summarizing appointment statuses")

	window, err := s.resolver.Range(period.DateRange{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		s.fail(fields, err, "Invalid status summary range")
		return nil, err
	}
	q := repository.From(repository.Appointments).InWindow(repository.FieldCreatedAt, window.Start, window.End)
	counts, err := s.repo.GroupCount(ctx, q, repository.FieldStatus)
	if err != nil {
		s.fail(fields, err, "Failed to group appointments by status")
		return nil, fmt.Errorf("failed to group appointments by status: %w", err)
	}

	out := make([]domain.AppointmentStatusCount, 0, len(statusLabels))
	for _, sl := range statusLabels {
		out = append(out, domain.AppointmentStatusCount{
			Status:   sl.status,
			StatusVn: sl.label,
			Count:    lookup(counts, sl.status).orZero(),
		})
		delete(counts, sl.status)
	}
	var excluded int64
	for _, n := range counts {
		excluded += n
	}
	if excluded > 0 {
		s.Logger.WithFields(fields).WithField("Excluded", excluded).Warn("Appointments with unlisted statuses left out of summary")
	}

	s.Logger.WithFields(fields).Info("Appointment status summary computed successfully")
	return out, nil
}

// AppointmentBySpecialty charts visits per specialty either month by month
// over a date range or per selected month of each requested year.
func (s *reportService) AppointmentBySpecialty(ctx context.Context, req domain.AppointmentBySpecialtyRequest) (domain.AppointmentBySpecialtyResponse, error) {
	fields := logrus.Fields{
		"Function":  "AppointmentBySpecialty",
		"Years":     req.Years,
		"Months":    req.Months,
		"StartDate": req.StartDate,
		"EndDate":   req.EndDate,
	}
	s.Logger.WithFields(fields).Info("Charting appointments by specialty")

	var (
		resp domain.AppointmentBySpecialtyResponse
		err  error
	)
	switch {
	case req.StartDate != "" && req.EndDate != "":
		resp.Range, err = s.specialtyByRange(ctx, req.StartDate, req.EndDate)
	case len(req.Years) > 0:
		resp.Years, err = s.specialtyByYears(ctx, req.Years, req.Months)
	default:
		err = ErrMissingStatisticsParameters
	}
	if err != nil {
		s.fail(fields, err, "Failed to chart appointments by specialty")
		return domain.AppointmentBySpecialtyResponse{}, err
	}

	s.Logger.WithFields(fields).Info("Appointments by specialty charted successfully")
	return resp, nil
}

func (s *reportService) specialtyByRange(ctx context.Context, startDate, endDate string) (*domain.SpecialtyRangeReport, error) {
	window, err := s.resolver.Range(period.DateRange{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, err
	}
	first := time.Date(window.Start.Year(), window.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(window.End.Year(), window.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	bounds := period.Window{Start: first, End: last.AddDate(0, 1, -1)}

	appointments, names, err := s.appointmentsOnDays(ctx, bounds)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string][]string)
	for _, a := range appointments {
		if len(a.Date) < 7 {
			continue
		}
		key := a.Date[:7]
		byMonth[key] = append(byMonth[key], specialtyName(names, a.SpecialtyID))
	}

	report := &domain.SpecialtyRangeReport{Categories: make([]string, 0, len(months)), Series: []domain.YearSeries{}}
	lines := make(map[int]*orderedCounts)
	var years []int
	for i, m := range months {
		report.Categories = append(report.Categories, fmt.Sprintf("Tháng %d", int(m.Month())))
		oc, ok := lines[m.Year()]
		if !ok {
			oc = newOrderedCounts(len(months))
			lines[m.Year()] = oc
			years = append(years, m.Year())
		}
		for _, name := range byMonth[m.Format("2006-01")] {
			oc.add(name, i)
		}
	}
	for _, y := range years {
		report.Series = append(report.Series, domain.YearSeries{Year: strconv.Itoa(y), Series: lines[y].series()})
	}
	return report, nil
}

func (s *reportService) specialtyByYears(ctx context.Context, years, months []int) ([]domain.SpecialtyYearReport, error) {
	if len(months) == 0 {
		months = make([]int, 12)
		for i := range months {
			months[i] = i + 1
		}
	}
	lo, hi := slices.Min(years), slices.Max(years)
	bounds := period.Window{
		Start: time.Date(lo, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(hi, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	appointments, names, err := s.appointmentsOnDays(ctx, bounds)
	if err != nil {
		return nil, err
	}
	byYear := make(map[int][]domain.Appointment)
	for _, a := range appointments {
		if y, err := strconv.Atoi(a.Date[:min(4, len(a.Date))]); err == nil {
			byYear[y] = append(byYear[y], a)
		}
	}

	out := make([]domain.SpecialtyYearReport, 0, len(years))
	for _, y := range years {
		oc := newOrderedCounts(len(months))
		for _, a := range byYear[y] {
			if len(a.Date) < 7 {
				continue
			}
			month, err := strconv.Atoi(a.Date[5:7])
			if err != nil {
				continue
			}
			if idx := slices.Index(months, month); idx >= 0 {
				oc.add(specialtyName(names, a.SpecialtyID), idx)
			}
		}
		specialties := make([]domain.SpecialtyMonthly, 0, len(oc.order))
		for _, line := range oc.series() {
			specialties = append(specialties, domain.SpecialtyMonthly{Name: line.Name, Monthly: line.Data})
		}
		specialties = Rank(specialties, func(a, b domain.SpecialtyMonthly) int {
			return cmp.Compare(sum(b.Monthly), sum(a.Monthly))
		})
		out = append(out, domain.SpecialtyYearReport{Year: y, Specialties: specialties})
	}
	return out, nil
}

// appointmentsOnDays lists appointments whose visit day falls in w together
// with the names of the specialties they reference.
func (s *reportService) appointmentsOnDays(ctx context.Context, w period.Window) ([]domain.Appointment, map[string]string, error) {
	q := onDays(repository.From(repository.Appointments), w).
		OrderBy(repository.FieldDate, false).
		OrderBy(repository.FieldCreatedAt, false)
	appointments, err := s.repo.ListAppointments(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	var ids []string
	seen := make(map[string]bool)
	for _, a := range appointments {
		if a.SpecialtyID != "" && !seen[a.SpecialtyID] {
			seen[a.SpecialtyID] = true
			ids = append(ids, a.SpecialtyID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return appointments, names, nil
	}
	specialties, err := s.repo.ListSpecialties(ctx, repository.From(repository.Specialties, repository.In(repository.FieldID, ids)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	for _, sp := range specialties {
		names[sp.ID] = sp.Name
	}
	return appointments, names, nil
}

func specialtyName(names map[string]string, id string) string {
	if name := lookup(names, id).orZero(); name != "" {
		return name
	}
	return OtherSpecialty
}

// orderedCounts keeps one fixed-width counter row per name in first-seen
// order.
type orderedCounts struct {
	width int
	order []string
	rows  map[string][]int64
}

func newOrderedCounts(width int) *orderedCounts {
	return &orderedCounts{width: width, rows: make(map[string][]int64)}
}

func (o *orderedCounts) add(name string, idx int) {
	row, ok := o.rows[name]
	if !ok {
		row = make([]int64, o.width)
		o.rows[name] = row
		o.order = append(o.order, name)
	}
	row[idx]++
}

func (o *orderedCounts) series() []domain.NamedSeries {
	out := make([]domain.NamedSeries, 0, len(o.order))
	for _, name := range o.order {
		out = append(out, domain.NamedSeries{Name: name, Data: o.rows[name]})
	}
	return out
}

func sum(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
