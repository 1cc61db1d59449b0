package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

// CompositeDoctorStat is a doctor joined with its activity in one window.
type CompositeDoctorStat struct {
	Doctor        domain.Doctor
	SpecialtyName string
	Rating        float64
	Appointments  int64
	Patients      int64
	Reviews       int64
	Revenue       float64
}

// joined is the outcome of a foreign-key lookup that may find nothing.
type joined[V any] struct {
	value V
	ok    bool
}

func lookup[K comparable, V any](m map[K]V, key K) joined[V] {
	v, ok := m[key]
	return joined[V]{value: v, ok: ok}
}

// orZero collapses a missing join to the zero value.
func (j joined[V]) orZero() V {
	if !j.ok {
		var zero V
		return zero
	}
	return j.value
}

// enrichDoctors joins doctors with their appointments, distinct patients,
// reviews and settled revenue created inside w.
func enrichDoctors(ctx context.Context, repo repository.ReportRepository, doctors []domain.Doctor, w period.Window) ([]CompositeDoctorStat, error) {
	if len(doctors) == 0 {
		return []CompositeDoctorStat{}, nil
	}
	ids := make([]string, 0, len(doctors))
	var specialtyIDs []string
	for _, d := range doctors {
		ids = append(ids, d.ID)
		if id, ok := d.PrimarySpecialtyID(); ok {
			specialtyIDs = append(specialtyIDs, id)
		}
	}

	appointments := repository.From(repository.Appointments, repository.In(repository.FieldDoctorID, ids)).
		InWindow(repository.FieldCreatedAt, w.Start, w.End)
	orders := repository.From(repository.Orders,
		repository.Eq(repository.FieldStatus, domain.OrderCompleted),
		repository.NotNull(repository.FieldAppointmentID),
	).InWindow(repository.FieldCreatedAt, w.Start, w.End)
	owner := repository.Join{
		Foreign:    repository.Appointments,
		LocalKey:   repository.FieldAppointmentID,
		ForeignKey: repository.FieldID,
		GroupBy:    repository.FieldDoctorID,
	}

	var (
		counts, patients, reviews map[string]int64
		revenue                   map[string]float64
		names                     = map[string]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = repo.GroupCount(gctx, appointments, repository.FieldDoctorID)
		return err
	})
	g.Go(func() (err error) {
		patients, err = repo.GroupCountDistinct(gctx, appointments, repository.FieldDoctorID, repository.FieldPatientID)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = repo.GroupCount(gctx, appointments.And(repository.NotNull(repository.FieldRating)), repository.FieldDoctorID)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = repo.JoinGroupSum(gctx, orders, owner, repository.FieldAmount)
		return err
	})
	if len(specialtyIDs) > 0 {
		g.Go(func() error {
			specialties, err := repo.ListSpecialties(gctx, repository.From(repository.Specialties, repository.In(repository.FieldID, specialtyIDs)))
			if err != nil {
				return err
			}
			for _, s := range specialties {
				names[s.ID] = s.Name
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to enrich doctors: %w", err)
	}

	out := make([]CompositeDoctorStat, 0, len(doctors))
	for _, d := range doctors {
		stat := CompositeDoctorStat{
			Doctor:       d,
			Rating:       d.AvgScore,
			Appointments: lookup(counts, d.ID).orZero(),
			Patients:     lookup(patients, d.ID).orZero(),
			Reviews:      lookup(reviews, d.ID).orZero(),
			Revenue:      lookup(revenue, d.ID).orZero(),
		}
		if id, ok := d.PrimarySpecialtyID(); ok {
			stat.SpecialtyName = lookup(names, id).orZero()
		}
		out = append(out, stat)
	}
	return out, nil
}
