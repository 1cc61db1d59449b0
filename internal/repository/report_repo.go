package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{
		db: db,
	}
}

type countRow struct {
	Key   string
	Value int64
}

type sumRow struct {
	Key   string
	Value float64
}

func (r *reportRepository) Count(ctx context.Context, q Query) (int64, error) {
	tx, err := r.scoped(ctx, q, "", false)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.Entity, err)
	}
	return n, nil
}

func (r *reportRepository) Sum(ctx context.Context, q Query, field Field) (float64, error) {
	if err := q.validateFields(field); err != nil {
		return 0, err
	}
	tx, err := r.scoped(ctx, q, "", false)
	if err != nil {
		return 0, err
	}
	var total float64
	if err := tx.Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", field)).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum %s.%s: %w", q.Entity, field, err)
	}
	return total, nil
}

func (r *reportRepository) GroupCount(ctx context.Context, q Query, by Field) (map[string]int64, error) {
	return r.groupCount(ctx, q, by, "COUNT(*)")
}

func (r *reportRepository) GroupCountDistinct(ctx context.Context, q Query, by, distinct Field) (map[string]int64, error) {
	if err := q.validateFields(distinct); err != nil {
		return nil, err
	}
	return r.groupCount(ctx, q, by, fmt.Sprintf("COUNT(DISTINCT %s)", distinct))
}

func (r *reportRepository) groupCount(ctx context.Context, q Query, by Field, agg string) (map[string]int64, error) {
	if err := q.validateFields(by); err != nil {
		return nil, err
	}
	tx, err := r.scoped(ctx, q, "", false)
	if err != nil {
		return nil, err
	}
	var rows []countRow
	err = tx.Select(fmt.Sprintf("%s AS key, %s AS value", keyExpr(string(by)), agg)).
		Group(string(by)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group %s by %s: %w", q.Entity, by, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] += row.Value
	}
	return out, nil
}

func (r *reportRepository) GroupSum(ctx context.Context, q Query, by, field Field) (map[string]float64, error) {
	if err := q.validateFields(by, field); err != nil {
		return nil, err
	}
	tx, err := r.scoped(ctx, q, "", false)
	if err != nil {
		return nil, err
	}
	var rows []sumRow
	err = tx.Select(fmt.Sprintf("%s AS key, COALESCE(SUM(%s), 0) AS value", keyExpr(string(by)), field)).
		Group(string(by)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s.%s by %s: %w", q.Entity, field, by, err)
	}
	return sumRows(rows), nil
}

// JoinGroupSum sums field over the rows of q and credits each sum to the
// GroupBy value of the joined foreign row. Rows without a foreign match are
// dropped.
func (r *reportRepository) JoinGroupSum(ctx context.Context, q Query, j Join, field Field) (map[string]float64, error) {
	if err := q.validateFields(j.LocalKey, field); err != nil {
		return nil, err
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	tx, err := r.scoped(ctx, q, "l", false)
	if err != nil {
		return nil, err
	}
	group := "f." + string(j.GroupBy)
	var rows []sumRow
	err = tx.Joins(fmt.Sprintf("JOIN %s AS f ON f.%s = l.%s", j.Foreign, j.ForeignKey, j.LocalKey)).
		Select(fmt.Sprintf("%s AS key, COALESCE(SUM(l.%s), 0) AS value", keyExpr(group), field)).
		Group(group).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to join %s with %s: %w", q.Entity, j.Foreign, err)
	}
	return sumRows(rows), nil
}

func (r *reportRepository) ListDoctors(ctx context.Context, q Query) ([]domain.Doctor, error) {
	var doctors []domain.Doctor
	if err := r.list(ctx, q, Doctors, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *reportRepository) ListSpecialties(ctx context.Context, q Query) ([]domain.Specialty, error) {
	var specialties []domain.Specialty
	if err := r.list(ctx, q, Specialties, &specialties); err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *reportRepository) ListAppointments(ctx context.Context, q Query) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	if err := r.list(ctx, q, Appointments, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *reportRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *reportRepository) list(ctx context.Context, q Query, want Entity, dest any) error {
	if q.Entity != want {
		return fmt.Errorf("cannot list %s from a %s query", want, q.Entity)
	}
	tx, err := r.scoped(ctx, q, "", true)
	if err != nil {
		return err
	}
	if err := tx.Find(dest).Error; err != nil {
		return fmt.Errorf("failed to list %s: %w", q.Entity, err)
	}
	return nil
}

func (r *reportRepository) scoped(ctx context.Context, q Query, alias string, ordered bool) (*gorm.DB, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	table := string(q.Entity)
	if alias != "" {
		table += " AS " + alias
	}
	tx := r.db.WithContext(ctx).Table(table)
	for _, c := range q.Where {
		var err error
		if tx, err = applyCond(tx, qualify(alias, c.Field), c); err != nil {
			return nil, err
		}
	}
	if ordered {
		for _, s := range q.Order {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: qualify(alias, s.Field), Raw: true}, Desc: s.Desc})
		}
	}
	return tx, nil
}

func applyCond(tx *gorm.DB, col string, c Cond) (*gorm.DB, error) {
	switch c.Op {
	case OpEq:
		return tx.Where(col+" = ?", c.Value), nil
	case OpIn:
		return tx.Where(col+" IN ?", c.Value), nil
	case OpGte:
		return tx.Where(col+" >= ?", c.Value), nil
	case OpLte:
		return tx.Where(col+" <= ?", c.Value), nil
	case OpNotNull:
		return tx.Where(col + " IS NOT NULL"), nil
	case OpContains:
		doc, err := json.Marshal([]any{c.Value})
		if err != nil {
			return nil, err
		}
		return tx.Where(col+" @> ?::jsonb", string(doc)), nil
	case OpILike:
		return tx.Where(col+" ILIKE ?", "%"+escapeLike(fmt.Sprint(c.Value))+"%"), nil
	default:
		return nil, fmt.Errorf("unsupported operator %q on %s", c.Op, c.Field)
	}
}

func qualify(alias string, f Field) string {
	if alias == "" {
		return string(f)
	}
	return alias + "." + string(f)
}

func keyExpr(col string) string {
	return fmt.Sprintf("COALESCE(CAST(%s AS TEXT), '')", col)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func sumRows(rows []sumRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Key] += row.Value
	}
	return out
}
