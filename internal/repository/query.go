package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
)

// Entity names a record collection of the booking platform.
type Entity string

const (
	Patients     Entity = "patients"
	Doctors      Entity = "doctors"
	Appointments Entity = "appointments"
	Specialties  Entity = "specialties"
	Orders       Entity = "order_mappings"
)

// Field is a column of an entity.
type Field string

const (
	FieldID                 Field = "id"
	FieldCode               Field = "code"
	FieldName               Field = "name"
	FieldFullName           Field = "full_name"
	FieldCreatedAt          Field = "created_at"
	FieldStatus             Field = "status"
	FieldRegistrationStatus Field = "registration_status"
	FieldAvgScore           Field = "avg_score"
	FieldSpecialtyIDs       Field = "specialty_ids"
	FieldPatientID          Field = "patient_id"
	FieldDoctorID           Field = "doctor_id"
	FieldSpecialtyID        Field = "specialty_id"
	FieldHospitalID         Field = "hospital_id"
	FieldDate               Field = "date"
	FieldRating             Field = "rating"
	FieldPaymentTotal       Field = "payment_total"
	FieldAppointmentID      Field = "appointment_id"
	FieldAmount             Field = "amount"
)

var columns = map[Entity][]Field{
	Patients:     {FieldID, FieldFullName, FieldCreatedAt},
	Doctors:      {FieldID, FieldCode, FieldFullName, FieldCreatedAt, FieldRegistrationStatus, FieldAvgScore, FieldSpecialtyIDs},
	Appointments: {FieldID, FieldCreatedAt, FieldStatus, FieldPatientID, FieldDoctorID, FieldSpecialtyID, FieldHospitalID, FieldDate, FieldRating, FieldPaymentTotal},
	Specialties:  {FieldID, FieldCode, FieldName, FieldCreatedAt},
	Orders:       {FieldID, FieldCreatedAt, FieldStatus, FieldAppointmentID, FieldAmount},
}

func hasColumn(e Entity, f Field) bool {
	for _, c := range columns[e] {
		if c == f {
			return true
		}
	}
	return false
}

type Op string

const (
	OpEq       Op = "eq"
	OpIn       Op = "in"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpNotNull  Op = "not_null"
	OpContains Op = "contains" // JSON array column holds the value
	OpILike    Op = "ilike"    // case-insensitive substring
)

type Cond struct {
	Field Field
	Op    Op
	Value any
}

func Eq(f Field, v any) Cond          { return Cond{Field: f, Op: OpEq, Value: v} }
func In(f Field, vs []string) Cond    { return Cond{Field: f, Op: OpIn, Value: vs} }
func Gte(f Field, v any) Cond         { return Cond{Field: f, Op: OpGte, Value: v} }
func Lte(f Field, v any) Cond         { return Cond{Field: f, Op: OpLte, Value: v} }
func NotNull(f Field) Cond            { return Cond{Field: f, Op: OpNotNull} }
func Contains(f Field, v string) Cond { return Cond{Field: f, Op: OpContains, Value: v} }
func ILike(f Field, v string) Cond    { return Cond{Field: f, Op: OpILike, Value: v} }

// Between bounds f inclusively on both ends.
func Between(f Field, from, to any) []Cond {
	return []Cond{Gte(f, from), Lte(f, to)}
}

type Sort struct {
	Field Field
	Desc  bool
}

// Query selects the rows of one entity matching every condition.
type Query struct {
	Entity Entity
	Where  []Cond
	Order  []Sort
}

func From(e Entity, conds ...Cond) Query {
	return Query{Entity: e, Where: conds}
}

// And returns a copy of q with extra conditions.
func (q Query) And(conds ...Cond) Query {
	where := make([]Cond, 0, len(q.Where)+len(conds))
	where = append(where, q.Where...)
	where = append(where, conds...)
	return Query{Entity: q.Entity, Where: where, Order: q.Order}
}

func (q Query) OrderBy(f Field, desc bool) Query {
	order := append([]Sort(nil), q.Order...)
	return Query{Entity: q.Entity, Where: q.Where, Order: append(order, Sort{Field: f, Desc: desc})}
}

// InWindow bounds f between two instants, both inclusive.
func (q Query) InWindow(f Field, from, to time.Time) Query {
	return q.And(Between(f, from, to)...)
}

// Join correlates rows of a local entity with a foreign entity by key and
// groups the local rows by a column of the foreign one.
type Join struct {
	Foreign    Entity
	LocalKey   Field
	ForeignKey Field
	GroupBy    Field
}

func (q Query) validate() error {
	if _, ok := columns[q.Entity]; !ok {
		return fmt.Errorf("unknown entity %q", q.Entity)
	}
	for _, c := range q.Where {
		if !hasColumn(q.Entity, c.Field) {
			return fmt.Errorf("unknown field %q on %s", c.Field, q.Entity)
		}
	}
	for _, s := range q.Order {
		if !hasColumn(q.Entity, s.Field) {
			return fmt.Errorf("unknown field %q on %s", s.Field, q.Entity)
		}
	}
	return nil
}

func (q Query) validateFields(fields ...Field) error {
	if err := q.validate(); err != nil {
		return err
	}
	for _, f := range fields {
		if !hasColumn(q.Entity, f) {
			return fmt.Errorf("unknown field %q on %s", f, q.Entity)
		}
	}
	return nil
}

func (j Join) validate() error {
	if !hasColumn(j.Foreign, j.ForeignKey) {
		return fmt.Errorf("unknown field %q on %s", j.ForeignKey, j.Foreign)
	}
	if !hasColumn(j.Foreign, j.GroupBy) {
		return fmt.Errorf("unknown field %q on %s", j.GroupBy, j.Foreign)
	}
	return nil
}

// ReportRepository is the read side of the record store. Grouped results
// are keyed by the text form of the grouping column; sums over no rows are 0.
type ReportRepository interface {
	Count(ctx context.Context, q Query) (int64, error)
	Sum(ctx context.Context, q Query, field Field) (float64, error)
	GroupCount(ctx context.Context, q Query, by Field) (map[string]int64, error)
	GroupCountDistinct(ctx context.Context, q Query, by, distinct Field) (map[string]int64, error)
	GroupSum(ctx context.Context, q Query, by, field Field) (map[string]float64, error)
	JoinGroupSum(ctx context.Context, q Query, j Join, field Field) (map[string]float64, error)
	ListDoctors(ctx context.Context, q Query) ([]domain.Doctor, error)
	ListSpecialties(ctx context.Context, q Query) ([]domain.Specialty, error)
	ListAppointments(ctx context.Context, q Query) ([]domain.Appointment, error)
	Ping(ctx context.Context) error
}
