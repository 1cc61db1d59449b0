package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

// TimeRangeCustom selects the explicit start and end dates of a request.
const TimeRangeCustom = "custom"

type specialtyDoctors struct {
	count     int64
	avgRating float64
}

// SpecialtyStatistics reports visits, revenue and doctor coverage per
// specialty together with the change in visits against the previous period.
func (s *reportService) SpecialtyStatistics(ctx context.Context, req domain.SpecialtyStatisticsRequest) (domain.Page[domain.SpecialtyStatisticsItem], error) {
	fields := logrus.Fields{
		"Function":  "SpecialtyStatistics",
		"TimeRange": req.TimeRange,
		"Specialty": req.Specialty,
		"Hospital":  req.Hospital,
	}
	s.Logger.WithFields(fields).Info("Computing specialty statistics")
	page, pageSize := pageParams(req.Page, req.PageSize)
	result := domain.Page[domain.SpecialtyStatisticsItem]{Items: []domain.SpecialtyStatisticsItem{}, Page: page, PageSize: pageSize}

	periods, err := s.specialtyPeriods(req)
	if err != nil {
		s.fail(fields, err, "Invalid specialty statistics time range")
		return result, err
	}

	q := repository.From(repository.Specialties)
	if code := filterValue(req.Specialty); code != "" {
		q = q.And(repository.Eq(repository.FieldCode, code))
	}
	specialties, err := s.repo.ListSpecialties(ctx, q.OrderBy(repository.FieldName, false))
	if err != nil {
		s.fail(fields, err, "Failed to list specialties")
		return result, fmt.Errorf("failed to list specialties: %w", err)
	}
	if len(specialties) == 0 {
		s.Logger.WithFields(fields).Info("No specialties matched")
		return result, nil
	}
	ids := make([]string, 0, len(specialties))
	for _, sp := range specialties {
		ids = append(ids, sp.ID)
	}

	visits := repository.From(repository.Appointments, repository.In(repository.FieldSpecialtyID, ids))
	if hospital := filterValue(req.Hospital); hospital != "" {
		visits = visits.And(repository.Eq(repository.FieldHospitalID, hospital))
	}
	current := onDays(visits, periods.Current)
	previous := onDays(visits, periods.Previous)

	var (
		curVisits, prevVisits map[string]int64
		revenue               map[string]float64
		doctors               = make([]specialtyDoctors, len(specialties))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		curVisits, err = s.repo.GroupCount(gctx, current, repository.FieldSpecialtyID)
		return err
	})
	g.Go(func() (err error) {
		prevVisits, err = s.repo.GroupCount(gctx, previous, repository.FieldSpecialtyID)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.repo.GroupSum(gctx, current, repository.FieldSpecialtyID, repository.FieldPaymentTotal)
		return err
	})
	for i, sp := range specialties {
		g.Go(func() error {
			docs, err := s.repo.ListDoctors(gctx, repository.From(repository.Doctors, repository.Contains(repository.FieldSpecialtyIDs, sp.ID)))
			if err != nil {
				return err
			}
			doctors[i] = summarizeDoctors(docs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(fields, err, "Failed to aggregate specialty statistics")
		return result, fmt.Errorf("failed to aggregate specialty statistics: %w", err)
	}

	items := make([]domain.SpecialtyStatisticsItem, 0, len(specialties))
	for i, sp := range specialties {
		visitsNow := lookup(curVisits, sp.ID).orZero()
		items = append(items, domain.SpecialtyStatisticsItem{
			Specialty:     sp.Name,
			SpecialtyCode: sp.Code,
			SpecialtyIcon: sp.AvatarURL,
			Visits:        visitsNow,
			Revenue:       lookup(revenue, sp.ID).orZero(),
			DoctorCount:   doctors[i].count,
			AvgRating:     doctors[i].avgRating,
			PercentChange: ChangePercentagePoints(float64(visitsNow), float64(lookup(prevVisits, sp.ID).orZero())),
		})
	}
	result.Items, result.Total = Paginate(items, page, pageSize)

	s.Logger.WithFields(fields).WithField("Total", result.Total).Info("Specialty statistics computed successfully")
	return result, nil
}

func (s *reportService) specialtyPeriods(req domain.SpecialtyStatisticsRequest) (period.Periods, error) {
	switch req.TimeRange {
	case string(period.Week), string(period.Month), string(period.Quarter):
		return s.resolver.Resolve(period.Kind(req.TimeRange), nil)
	case TimeRangeCustom:
		if req.StartDate == "" || req.EndDate == "" {
			return period.Periods{}, fmt.Errorf("%w: custom range needs start and end dates", ErrInvalidTimeRange)
		}
		return s.resolver.Resolve("", &period.DateRange{StartDate: req.StartDate, EndDate: req.EndDate})
	default:
		return period.Periods{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, req.TimeRange)
	}
}

func summarizeDoctors(docs []domain.Doctor) specialtyDoctors {
	if len(docs) == 0 {
		return specialtyDoctors{}
	}
	var total float64
	for _, d := range docs {
		total += d.AvgScore
	}
	return specialtyDoctors{
		count:     int64(len(docs)),
		avgRating: round2(total / float64(len(docs))),
	}
}

// filterValue returns "" for an absent filter or the "all" wildcard.
func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
