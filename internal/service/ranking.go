package service

import (
	"cmp"
	"slices"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Rank returns a copy of items sorted by compare. Items that compare equal
// keep their input order.
func Rank[T any](items []T, compare func(a, b T) int) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, compare)
	return out
}

// Paginate returns the 1-indexed page of items and the number of items
// before slicing. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	if page < 1 || pageSize < 1 {
		return []T{}, total
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, total
	}
	end := min(start+pageSize, total)
	return items[start:end], total
}

func pageParams(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// compareTopDoctors orders by rating, distinct patients, revenue and
// appointment count, all descending.
func compareTopDoctors(a, b CompositeDoctorStat) int {
	return cmp.Or(
		cmp.Compare(b.Rating, a.Rating),
		cmp.Compare(b.Patients, a.Patients),
		cmp.Compare(b.Revenue, a.Revenue),
		cmp.Compare(b.Appointments, a.Appointments),
	)
}
