package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
)

// Dataset is a full snapshot of the record store kept in memory.
type Dataset struct {
	Patients     []domain.Patient
	Doctors      []domain.Doctor
	Appointments []domain.Appointment
	Specialties  []domain.Specialty
	Orders       []domain.OrderMapping
}

type memoryRepository struct {
	mu   sync.RWMutex
	data Dataset
}

// NewMemoryRepository serves queries from data. It backs local runs
// without a database and the report tests.
func NewMemoryRepository(data Dataset) ReportRepository {
	return &memoryRepository{data: data}
}

type row struct {
	raw any
	get func(Field) any
}

func (m *memoryRepository) Count(ctx context.Context, q Query) (int64, error) {
	rows, err := m.match(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (m *memoryRepository) Sum(ctx context.Context, q Query, field Field) (float64, error) {
	if err := q.validateFields(field); err != nil {
		return 0, err
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, r := range rows {
		total += number(r.get(field))
	}
	return total, nil
}

func (m *memoryRepository) GroupCount(ctx context.Context, q Query, by Field) (map[string]int64, error) {
	if err := q.validateFields(by); err != nil {
		return nil, err
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, r := range rows {
		out[text(r.get(by))]++
	}
	return out, nil
}

func (m *memoryRepository) GroupCountDistinct(ctx context.Context, q Query, by, distinct Field) (map[string]int64, error) {
	if err := q.validateFields(by, distinct); err != nil {
		return nil, err
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]map[string]struct{})
	for _, r := range rows {
		key := text(r.get(by))
		if seen[key] == nil {
			seen[key] = make(map[string]struct{})
		}
		// an empty reference counts as one value of its own, as in postgres
		seen[key][text(r.get(distinct))] = struct{}{}
	}
	out := make(map[string]int64, len(seen))
	for key, set := range seen {
		out[key] = int64(len(set))
	}
	return out, nil
}

func (m *memoryRepository) GroupSum(ctx context.Context, q Query, by, field Field) (map[string]float64, error) {
	if err := q.validateFields(by, field); err != nil {
		return nil, err
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, r := range rows {
		out[text(r.get(by))] += number(r.get(field))
	}
	return out, nil
}

func (m *memoryRepository) JoinGroupSum(ctx context.Context, q Query, j Join, field Field) (map[string]float64, error) {
	if err := q.validateFields(j.LocalKey, field); err != nil {
		return nil, err
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return nil, err
	}
	foreign, err := m.match(ctx, From(j.Foreign))
	if err != nil {
		return nil, err
	}
	groupOf := make(map[string][]string, len(foreign))
	for _, f := range foreign {
		key := text(f.get(j.ForeignKey))
		groupOf[key] = append(groupOf[key], text(f.get(j.GroupBy)))
	}
	out := make(map[string]float64)
	for _, r := range rows {
		for _, group := range groupOf[text(r.get(j.LocalKey))] {
			out[group] += number(r.get(field))
		}
	}
	return out, nil
}

func (m *memoryRepository) ListDoctors(ctx context.Context, q Query) ([]domain.Doctor, error) {
	return listAs[domain.Doctor](ctx, m, q, Doctors)
}

func (m *memoryRepository) ListSpecialties(ctx context.Context, q Query) ([]domain.Specialty, error) {
	return listAs[domain.Specialty](ctx, m, q, Specialties)
}

func (m *memoryRepository) ListAppointments(ctx context.Context, q Query) ([]domain.Appointment, error) {
	return listAs[domain.Appointment](ctx, m, q, Appointments)
}

func (m *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func listAs[T any](ctx context.Context, m *memoryRepository, q Query, want Entity) ([]T, error) {
	if q.Entity != want {
		return nil, fmt.Errorf("cannot list %s from a %s query", want, q.Entity)
	}
	rows, err := m.match(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := len(q.Order) - 1; i >= 0; i-- {
		s := q.Order[i]
		slices.SortStableFunc(rows, func(a, b row) int {
			c := compare(a.get(s.Field), b.get(s.Field))
			if s.Desc {
				return -c
			}
			return c
		})
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.raw.(*T))
	}
	return out, nil
}

func (m *memoryRepository) match(ctx context.Context, q Query) ([]row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []row
	for _, r := range m.rows(q.Entity) {
		ok, err := matchesAll(r, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepository) rows(e Entity) []row {
	var out []row
	switch e {
	case Patients:
		for i := range m.data.Patients {
			p := &m.data.Patients[i]
			out = append(out, row{raw: p, get: func(f Field) any { return patientValue(p, f) }})
		}
	case Doctors:
		for i := range m.data.Doctors {
			d := &m.data.Doctors[i]
			out = append(out, row{raw: d, get: func(f Field) any { return doctorValue(d, f) }})
		}
	case Appointments:
		for i := range m.data.Appointments {
			a := &m.data.Appointments[i]
			out = append(out, row{raw: a, get: func(f Field) any { return appointmentValue(a, f) }})
		}
	case Specialties:
		for i := range m.data.Specialties {
			s := &m.data.Specialties[i]
			out = append(out, row{raw: s, get: func(f Field) any { return specialtyValue(s, f) }})
		}
	case Orders:
		for i := range m.data.Orders {
			o := &m.data.Orders[i]
			out = append(out, row{raw: o, get: func(f Field) any { return orderValue(o, f) }})
		}
	}
	return out
}

func patientValue(p *domain.Patient, f Field) any {
	switch f {
	case FieldID:
		return p.ID
	case FieldFullName:
		return p.FullName
	case FieldCreatedAt:
		return p.CreatedAt
	}
	return nil
}

func doctorValue(d *domain.Doctor, f Field) any {
	switch f {
	case FieldID:
		return d.ID
	case FieldCode:
		return d.Code
	case FieldFullName:
		return d.FullName
	case FieldCreatedAt:
		return d.CreatedAt
	case FieldRegistrationStatus:
		return d.RegistrationStatus
	case FieldAvgScore:
		return d.AvgScore
	case FieldSpecialtyIDs:
		return []string(d.SpecialtyIDs)
	}
	return nil
}

func appointmentValue(a *domain.Appointment, f Field) any {
	switch f {
	case FieldID:
		return a.ID
	case FieldCreatedAt:
		return a.CreatedAt
	case FieldStatus:
		return a.Status
	case FieldPatientID:
		return a.PatientID
	case FieldDoctorID:
		return a.DoctorID
	case FieldSpecialtyID:
		return a.SpecialtyID
	case FieldHospitalID:
		return a.HospitalID
	case FieldDate:
		return a.Date
	case FieldRating:
		if a.Rating == nil {
			return nil
		}
		return a.Rating.Data()
	case FieldPaymentTotal:
		return a.Payment.Total
	}
	return nil
}

func specialtyValue(s *domain.Specialty, f Field) any {
	switch f {
	case FieldID:
		return s.ID
	case FieldCode:
		return s.Code
	case FieldName:
		return s.Name
	case FieldCreatedAt:
		return s.CreatedAt
	}
	return nil
}

func orderValue(o *domain.OrderMapping, f Field) any {
	switch f {
	case FieldID:
		return o.ID
	case FieldCreatedAt:
		return o.CreatedAt
	case FieldStatus:
		return o.Status
	case FieldAppointmentID:
		return o.AppointmentID
	case FieldAmount:
		return o.Amount
	}
	return nil
}

func matchesAll(r row, conds []Cond) (bool, error) {
	for _, c := range conds {
		ok, err := matches(r.get(c.Field), c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(v any, c Cond) (bool, error) {
	switch c.Op {
	case OpEq:
		return !isNull(v) && compare(v, c.Value) == 0, nil
	case OpIn:
		values, ok := c.Value.([]string)
		if !ok {
			return false, fmt.Errorf("IN on %s needs []string, got %T", c.Field, c.Value)
		}
		return slices.Contains(values, text(v)), nil
	case OpGte:
		return !isNull(v) && compare(v, c.Value) >= 0, nil
	case OpLte:
		return !isNull(v) && compare(v, c.Value) <= 0, nil
	case OpNotNull:
		return !isNull(v), nil
	case OpContains:
		values, _ := v.([]string)
		return slices.Contains(values, text(c.Value)), nil
	case OpILike:
		return strings.Contains(strings.ToLower(text(v)), strings.ToLower(text(c.Value))), nil
	default:
		return false, fmt.Errorf("unsupported operator %q on %s", c.Op, c.Field)
	}
}

// isNull treats empty strings as missing references.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		return strings.Compare(x, text(b))
	case float64, int, int64:
		bx, by := number(x), number(b)
		switch {
		case bx < by:
			return -1
		case bx > by:
			return 1
		}
		return 0
	}
	return strings.Compare(text(a), text(b))
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return 0
}
