package service

import (
	"testing"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("last partial page", func(t *testing.T) {
		got, total := Paginate(items, 3, 10)
		if total != 25 {
			t.Fatalf("expected total 25, got %d", total)
		}
		if len(got) != 5 || got[0] != 20 || got[4] != 24 {
			t.Fatalf("expected items 20..24, got %v", got)
		}
	})

	t.Run("first page", func(t *testing.T) {
		got, _ := Paginate(items, 1, 10)
		if len(got) != 10 || got[0] != 0 || got[9] != 9 {
			t.Fatalf("expected items 0..9, got %v", got)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		got, total := Paginate(items, 100, 10)
		if total != 25 {
			t.Fatalf("expected total 25, got %d", total)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil page, got %v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, total := Paginate[int](nil, 1, 10)
		if total != 0 || len(got) != 0 {
			t.Fatalf("expected empty page, got %v (total %d)", got, total)
		}
	})
}

func TestPageParamsDefaults(t *testing.T) {
	page, size := pageParams(0, -3)
	if page != 1 || size != 20 {
		t.Fatalf("expected 1/20, got %d/%d", page, size)
	}
	page, size = pageParams(4, 5)
	if page != 4 || size != 5 {
		t.Fatalf("expected 4/5, got %d/%d", page, size)
	}
}

func TestRankTopDoctorsTieBreaks(t *testing.T) {
	stat := func(id string, rating float64, patients int64, revenue float64, appts int64) CompositeDoctorStat {
		return CompositeDoctorStat{Doctor: domain.Doctor{ID: id}, Rating: rating, Patients: patients, Revenue: revenue, Appointments: appts}
	}
	input := []CompositeDoctorStat{
		stat("tie-a", 4.0, 3, 100, 5),
		stat("low-rating", 3.9, 99, 999, 99),
		stat("more-appts", 4.0, 3, 100, 6),
		stat("tie-b", 4.0, 3, 100, 5),
		stat("more-revenue", 4.0, 3, 150, 1),
		stat("more-patients", 4.0, 4, 0, 0),
		stat("top", 5.0, 0, 0, 0),
	}
	want := []string{"top", "more-patients", "more-revenue", "more-appts", "tie-a", "tie-b", "low-rating"}

	got := Rank(input, compareTopDoctors)
	for i, id := range want {
		if got[i].Doctor.ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].Doctor.ID)
		}
	}
	if input[0].Doctor.ID != "tie-a" || input[6].Doctor.ID != "top" {
		t.Fatalf("Rank must not reorder its input")
	}
}
