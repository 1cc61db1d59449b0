package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

func TestAppointmentStatusSummaryEmptyStore(t *testing.T) {
	svc := newTestService(t, repository.Dataset{})

	got, err := svc.AppointmentStatusSummary(context.Background(), domain.AppointmentStatusSummaryRequest{StartDate: "2024-01-01", EndDate: "2024-12-31"})
	if err != nil {
		t.Fatalf("AppointmentStatusSummary: %v", err)
	}
	want := []string{domain.StatusConfirmed, domain.StatusPending, domain.StatusCancelled, domain.StatusCompleted}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, status := range want {
		if got[i].Status != status || got[i].Count != 0 || got[i].StatusVn == "" {
			t.Fatalf("entry %d: unexpected %+v", i, got[i])
		}
	}
}

func TestAppointmentStatusSummaryCounts(t *testing.T) {
	svc := newTestService(t, repository.Dataset{
		Appointments: []domain.Appointment{
			{ID: "a1", Status: domain.StatusConfirmed, CreatedAt: at("2024-05-01 08:00")},
			{ID: "a2", Status: domain.StatusConfirmed, CreatedAt: at("2024-05-31 23:00")},
			{ID: "a3", Status: domain.StatusCompleted, CreatedAt: at("2024-05-10 08:00")},
			{ID: "a4", Status: domain.StatusRejected, CreatedAt: at("2024-05-10 08:00")},
			{ID: "a5", Status: domain.StatusPending, CreatedAt: at("2024-06-01 00:00")},
		},
	})

	got, err := svc.AppointmentStatusSummary(context.Background(), domain.AppointmentStatusSummaryRequest{StartDate: "2024-05-01", EndDate: "2024-05-31"})
	if err != nil {
		t.Fatalf("AppointmentStatusSummary: %v", err)
	}
	counts := map[string]int64{}
	for _, c := range got {
		counts[c.Status] = c.Count
	}
	want := map[string]int64{domain.StatusConfirmed: 2, domain.StatusPending: 0, domain.StatusCancelled: 0, domain.StatusCompleted: 1}
	if len(got) != 4 {
		t.Fatalf("expected 4 entries, got %+v", got)
	}
	for status, n := range want {
		if counts[status] != n {
			t.Fatalf("%s: expected %d, got %d", status, n, counts[status])
		}
	}
	if got[0].StatusVn != "Đã Xác Nhận" || got[3].StatusVn != "Đã Hoàn Thành" {
		t.Fatalf("unexpected labels %+v", got)
	}
}

func TestAppointmentBySpecialtyRangeMode(t *testing.T) {
	svc := newTestService(t, repository.Dataset{
		Specialties: specialties(),
		Appointments: []domain.Appointment{
			{ID: "a1", SpecialtyID: "s1", Date: "2024-01-20"},
			{ID: "a2", SpecialtyID: "s2", Date: "2024-02-05"},
			{ID: "a3", SpecialtyID: "s2", Date: "2024-03-01"},
		},
	})

	got, err := svc.AppointmentBySpecialty(context.Background(), domain.AppointmentBySpecialtyRequest{StartDate: "2024-01-15", EndDate: "2024-02-10"})
	if err != nil {
		t.Fatalf("AppointmentBySpecialty: %v", err)
	}
	if got.Range == nil || got.Years != nil {
		t.Fatalf("expected range mode, got %+v", got)
	}
	if !slices.Equal(got.Range.Categories, []string{"Tháng 1", "Tháng 2"}) {
		t.Fatalf("unexpected categories %v", got.Range.Categories)
	}
	if len(got.Range.Series) != 1 || got.Range.Series[0].Year != "2024" {
		t.Fatalf("expected one year, got %+v", got.Range.Series)
	}
	lines := got.Range.Series[0].Series
	if len(lines) != 2 {
		t.Fatalf("expected one line per specialty, got %+v", lines)
	}
	if lines[0].Name != "Cardiology" || !slices.Equal(lines[0].Data, []int64{1, 0}) {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].Name != "Dermatology" || !slices.Equal(lines[1].Data, []int64{0, 1}) {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
}

func TestAppointmentBySpecialtyRangeAcrossYears(t *testing.T) {
	svc := newTestService(t, repository.Dataset{
		Specialties: specialties(),
		Appointments: []domain.Appointment{
			{ID: "a1", SpecialtyID: "s1", Date: "2023-12-20"},
			{ID: "a2", SpecialtyID: "gone", Date: "2024-01-05"},
			{ID: "a3", Date: "2024-01-06"},
		},
	})

	got, err := svc.AppointmentBySpecialty(context.Background(), domain.AppointmentBySpecialtyRequest{StartDate: "2023-12-01", EndDate: "2024-01-31"})
	if err != nil {
		t.Fatalf("AppointmentBySpecialty: %v", err)
	}
	if !slices.Equal(got.Range.Categories, []string{"Tháng 12", "Tháng 1"}) {
		t.Fatalf("unexpected categories %v", got.Range.Categories)
	}
	if len(got.Range.Series) != 2 {
		t.Fatalf("expected two years, got %+v", got.Range.Series)
	}
	y2023, y2024 := got.Range.Series[0], got.Range.Series[1]
	if y2023.Year != "2023" || len(y2023.Series) != 1 || !slices.Equal(y2023.Series[0].Data, []int64{1, 0}) {
		t.Fatalf("unexpected 2023 series %+v", y2023)
	}
	if y2024.Year != "2024" || len(y2024.Series) != 1 || y2024.Series[0].Name != OtherSpecialty || !slices.Equal(y2024.Series[0].Data, []int64{0, 2}) {
		t.Fatalf("unexpected 2024 series %+v", y2024)
	}
}

func TestAppointmentBySpecialtyYearMode(t *testing.T) {
	svc := newTestService(t, repository.Dataset{
		Specialties: specialties(),
		Appointments: []domain.Appointment{
			{ID: "a1", SpecialtyID: "s1", Date: "2024-01-02"},
			{ID: "a2", SpecialtyID: "s2", Date: "2024-03-03"},
			{ID: "a3", SpecialtyID: "s2", Date: "2024-03-04"},
			{ID: "a4", SpecialtyID: "s1", Date: "2024-05-01"},
			{ID: "a5", SpecialtyID: "s1", Date: "2023-03-01"},
		},
	})
	ctx := context.Background()

	got, err := svc.AppointmentBySpecialty(ctx, domain.AppointmentBySpecialtyRequest{Years: []int{2024}, Months: []int{3, 1}})
	if err != nil {
		t.Fatalf("AppointmentBySpecialty: %v", err)
	}
	if got.Range != nil || len(got.Years) != 1 || got.Years[0].Year != 2024 {
		t.Fatalf("expected one year report, got %+v", got)
	}
	specs := got.Years[0].Specialties
	if len(specs) != 2 {
		t.Fatalf("expected two specialties, got %+v", specs)
	}
	if specs[0].Name != "Dermatology" || !slices.Equal(specs[0].Monthly, []int64{2, 0}) {
		t.Fatalf("unexpected first specialty %+v", specs[0])
	}
	if specs[1].Name != "Cardiology" || !slices.Equal(specs[1].Monthly, []int64{0, 1}) {
		t.Fatalf("unexpected second specialty %+v", specs[1])
	}

	all, err := svc.AppointmentBySpecialty(ctx, domain.AppointmentBySpecialtyRequest{Years: []int{2023, 2024}})
	if err != nil {
		t.Fatalf("AppointmentBySpecialty: %v", err)
	}
	if len(all.Years) != 2 || len(all.Years[0].Specialties[0].Monthly) != 12 {
		t.Fatalf("expected two years of 12 months, got %+v", all.Years)
	}
	if all.Years[1].Specialties[0].Name != "Cardiology" || all.Years[1].Specialties[0].Monthly[4] != 1 {
		t.Fatalf("expected Cardiology first in 2024 with a May visit, got %+v", all.Years[1])
	}
}

func TestAppointmentBySpecialtyMissingParameters(t *testing.T) {
	svc := newTestService(t, repository.Dataset{})

	_, err := svc.AppointmentBySpecialty(context.Background(), domain.AppointmentBySpecialtyRequest{StartDate: "2024-01-01"})
	if !errors.Is(err, ErrMissingStatisticsParameters) {
		t.Fatalf("expected ErrMissingStatisticsParameters, got %v", err)
	}
}

func TestAppointmentBySpecialtyResponseJSON(t *testing.T) {
	b, err := json.Marshal(domain.AppointmentBySpecialtyResponse{})
	if err != nil || string(b) != "[]" {
		t.Fatalf("expected empty year list, got %s (%v)", b, err)
	}
	b, err = json.Marshal(domain.AppointmentBySpecialtyResponse{Range: &domain.SpecialtyRangeReport{Categories: []string{"Tháng 1"}}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["categories"]; !ok {
		t.Fatalf("expected range payload, got %s", b)
	}
}
