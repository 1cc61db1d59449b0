package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

func (s *reportService) TopDoctors(ctx context.Context, req domain.TopDoctorsRequest) ([]domain.TopDoctorItem, error) {
	fields := logrus.Fields{
		"Function":  "TopDoctors",
		"StartDate": req.StartDate,
		"EndDate":   req.EndDate,
		"Limit":     req.Limit,
	}
	s.Logger.WithFields(fields).Info("Ranking top doctors")

	window, err := s.resolver.Range(period.DateRange{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		s.fail(fields, err, "Invalid top doctors range")
		return nil, err
	}
	doctors, err := s.repo.ListDoctors(ctx, repository.From(repository.Doctors,
		repository.Eq(repository.FieldRegistrationStatus, domain.RegistrationApproved),
	).OrderBy(repository.FieldCreatedAt, false))
	if err != nil {
		s.fail(fields, err, "Failed to list approved doctors")
		return nil, fmt.Errorf("failed to list approved doctors: %w", err)
	}
	stats, err := enrichDoctors(ctx, s.repo, doctors, window)
	if err != nil {
		s.fail(fields, err, "Failed to enrich doctors")
		return nil, err
	}

	ranked := Rank(stats, compareTopDoctors)
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	items := make([]domain.TopDoctorItem, 0, len(ranked))
	for _, st := range ranked {
		items = append(items, domain.TopDoctorItem{
			ID:                st.Doctor.ID,
			Name:              st.Doctor.FullName,
			Avatar:            optional(st.Doctor.AvatarURL),
			Specialty:         st.SpecialtyName,
			Experience:        st.Doctor.ExperienceYears,
			Rating:            st.Rating,
			TotalReviews:      st.Reviews,
			TotalPatients:     st.Patients,
			TotalAppointments: st.Appointments,
			Revenue:           st.Revenue,
			Status:            domain.DoctorActive,
		})
	}

	s.Logger.WithFields(fields).WithField("Count", len(items)).Info("Top doctors ranked successfully")
	return items, nil
}

// DoctorsAppointmentsStatistics counts appointments per doctor and derives
// a completion rate, most booked doctors first.
func (s *reportService) DoctorsAppointmentsStatistics(ctx context.Context, req domain.DoctorAppointmentsStatisticsRequest) (domain.Page[domain.DoctorAppointmentsItem], error) {
	fields := logrus.Fields{
		"Function": "DoctorsAppointmentsStatistics",
		"FromDate": req.FromDate,
		"ToDate":   req.ToDate,
		"Status":   req.Status,
		"Search":   req.Search,
	}
	s.Logger.WithFields(fields).Info("Computing doctor appointment statistics")
	page, pageSize := pageParams(req.Page, req.PageSize)
	result := domain.Page[domain.DoctorAppointmentsItem]{Items: []domain.DoctorAppointmentsItem{}, Page: page, PageSize: pageSize}

	appointments := repository.From(repository.Appointments)
	if req.FromDate != "" {
		appointments = appointments.And(repository.Gte(repository.FieldDate, req.FromDate))
	}
	if req.ToDate != "" {
		appointments = appointments.And(repository.Lte(repository.FieldDate, req.ToDate))
	}
	if status := strings.TrimSpace(req.Status); status != "" && !strings.EqualFold(status, "all") {
		appointments = appointments.And(repository.Eq(repository.FieldStatus, strings.ToUpper(status)))
	}

	doctorQuery := repository.From(repository.Doctors)
	if len(req.DoctorIDs) > 0 {
		doctorQuery = doctorQuery.And(repository.In(repository.FieldID, req.DoctorIDs))
	}
	doctors, err := s.repo.ListDoctors(ctx, doctorQuery.OrderBy(repository.FieldCode, false))
	if err != nil {
		s.fail(fields, err, "Failed to list doctors")
		return result, fmt.Errorf("failed to list doctors: %w", err)
	}
	doctors = slices.DeleteFunc(doctors, func(d domain.Doctor) bool { return !matchesSearch(d, req.Search) })
	if len(doctors) == 0 {
		s.Logger.WithFields(fields).Info("No doctors matched")
		return result, nil
	}
	ids := make([]string, 0, len(doctors))
	for _, d := range doctors {
		ids = append(ids, d.ID)
	}
	appointments = appointments.And(repository.In(repository.FieldDoctorID, ids))

	var totals, completed, cancelled map[string]int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.GroupCount(gctx, appointments, repository.FieldDoctorID)
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.repo.GroupCount(gctx, appointments.And(repository.Eq(repository.FieldStatus, domain.StatusCompleted)), repository.FieldDoctorID)
		return err
	})
	g.Go(func() (err error) {
		cancelled, err = s.repo.GroupCount(gctx, appointments.And(repository.Eq(repository.FieldStatus, domain.StatusCancelled)), repository.FieldDoctorID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(fields, err, "Failed to group appointments by doctor")
		return result, fmt.Errorf("failed to group appointments by doctor: %w", err)
	}

	var items []domain.DoctorAppointmentsItem
	for _, d := range doctors {
		total := lookup(totals, d.ID).orZero()
		if total == 0 {
			continue
		}
		done := lookup(completed, d.ID).orZero()
		items = append(items, domain.DoctorAppointmentsItem{
			DoctorID:              d.Code,
			DoctorName:            d.FullName,
			TotalAppointments:     total,
			CompletedAppointments: done,
			CancelledAppointments: lookup(cancelled, d.ID).orZero(),
			CompletionRate:        completionRate(done, total),
		})
	}
	items = Rank(items, func(a, b domain.DoctorAppointmentsItem) int {
		return cmp.Compare(b.TotalAppointments, a.TotalAppointments)
	})
	result.Items, result.Total = Paginate(items, page, pageSize)

	s.Logger.WithFields(fields).WithField("Total", result.Total).Info("Doctor appointment statistics computed successfully")
	return result, nil
}

// DoctorReviewStats lists approved doctors with their rating entries, best
// rated first.
func (s *reportService) DoctorReviewStats(ctx context.Context, req domain.DoctorReviewStatsRequest) (domain.Page[domain.DoctorReviewItem], error) {
	fields := logrus.Fields{
		"Function": "DoctorReviewStats",
		"Name":     req.Name,
		"DoctorId": req.DoctorID,
	}
	s.Logger.WithFields(fields).Info("Fetching doctor review statistics")
	page, pageSize := pageParams(req.Page, req.PageSize)
	result := domain.Page[domain.DoctorReviewItem]{Items: []domain.DoctorReviewItem{}, Page: page, PageSize: pageSize}

	q := repository.From(repository.Doctors, repository.Eq(repository.FieldRegistrationStatus, domain.RegistrationApproved))
	if name := strings.TrimSpace(req.Name); name != "" {
		q = q.And(repository.ILike(repository.FieldFullName, name))
	}
	if code := strings.TrimSpace(req.DoctorID); code != "" {
		q = q.And(repository.Eq(repository.FieldCode, code))
	}
	doctors, err := s.repo.ListDoctors(ctx, q.OrderBy(repository.FieldAvgScore, true).OrderBy(repository.FieldCode, false))
	if err != nil {
		s.fail(fields, err, "Failed to list reviewed doctors")
		return result, fmt.Errorf("failed to list reviewed doctors: %w", err)
	}

	items := make([]domain.DoctorReviewItem, 0, len(doctors))
	for _, d := range doctors {
		details := []domain.RatingDetail(d.RatingDetails)
		if details == nil {
			details = []domain.RatingDetail{}
		}
		items = append(items, domain.DoctorReviewItem{
			DoctorID:      d.Code,
			Name:          d.FullName,
			AvgRating:     d.AvgScore,
			ReviewCount:   len(details),
			AvatarURL:     optional(d.AvatarURL),
			ReviewDetails: details,
		})
	}
	result.Items, result.Total = Paginate(items, page, pageSize)

	s.Logger.WithFields(fields).WithField("Total", result.Total).Info("Doctor review statistics fetched successfully")
	return result, nil
}

// completionRate is completed/total as a whole percentage. Halves round to
// even.
func completionRate(completed, total int64) int64 {
	if total == 0 {
		return 0
	}
	return int64(math.RoundToEven(float64(completed) / float64(total) * 100))
}

func matchesSearch(d domain.Doctor, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.FullName), search) ||
		strings.Contains(strings.ToLower(d.Code), search)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
