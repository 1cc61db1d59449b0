package domain

import (
	"encoding/json"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
)

// SummaryType selects the record class measured by the summary analyst.
type SummaryType string

const (
	SummaryPatient     SummaryType = "patient"
	SummaryDoctor      SummaryType = "doctor"
	SummaryAppointment SummaryType = "appointment"
	SummaryRevenue     SummaryType = "revenue"
)

// SummaryTypes lists every summary type in digest order.
var SummaryTypes = []SummaryType{SummaryPatient, SummaryDoctor, SummaryAppointment, SummaryRevenue}

type SummaryAnalystRequest struct {
	TypeSummary SummaryType
	Period      period.Kind
	DateRange   *period.DateRange
}

type SummaryAnalystResponse struct {
	Percent float64                      `json:"percent"`
	Total   float64                      `json:"total"`
	Series  [period.SegmentCount]float64 `json:"series"`
}

type TopDoctorsRequest struct {
	StartDate string
	EndDate   string
	Limit     int
}

type TopDoctorItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Avatar            *string `json:"avatar"`
	Specialty         string  `json:"specialty"`
	Experience        int     `json:"experience"`
	Rating            float64 `json:"rating"`
	TotalReviews      int64   `json:"totalReviews"`
	TotalPatients     int64   `json:"totalPatients"`
	TotalAppointments int64   `json:"totalAppointments"`
	Revenue           float64 `json:"revenue"`
	Status            string  `json:"status"`
}

type AppointmentStatusSummaryRequest struct {
	StartDate string
	EndDate   string
}

type AppointmentStatusCount struct {
	Status   string `json:"status"`
	StatusVn string `json:"statusVn"`
	Count    int64  `json:"count"`
}

type AppointmentBySpecialtyRequest struct {
	Years     []int
	Months    []int
	StartDate string
	EndDate   string
}

// NamedSeries is one chart line: a label and one value per category.
type NamedSeries struct {
	Name string  `json:"name"`
	Data []int64 `json:"data"`
}

type YearSeries struct {
	Year   string        `json:"year"`
	Series []NamedSeries `json:"series"`
}

// SpecialtyRangeReport is the range-mode result: one month label per
// category and one line set per calendar year.
type SpecialtyRangeReport struct {
	Categories []string     `json:"categories"`
	Series     []YearSeries `json:"series"`
}

type SpecialtyMonthly struct {
	Name    string  `json:"name"`
	Monthly []int64 `json:"monthly"`
}

type SpecialtyYearReport struct {
	Year        int                `json:"year"`
	Specialties []SpecialtyMonthly `json:"specialties"`
}

// AppointmentBySpecialtyResponse holds exactly one of the two report modes.
type AppointmentBySpecialtyResponse struct {
	Range *SpecialtyRangeReport
	Years []SpecialtyYearReport
}

func (r AppointmentBySpecialtyResponse) MarshalJSON() ([]byte, error) {
	if r.Range != nil {
		return json.Marshal(r.Range)
	}
	if r.Years == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Years)
}

type SpecialtyStatisticsRequest struct {
	TimeRange string
	StartDate string
	EndDate   string
	Specialty string
	Hospital  string
	Page      int
	PageSize  int
}

type SpecialtyStatisticsItem struct {
	Specialty     string  `json:"specialty"`
	SpecialtyCode string  `json:"specialtyCode"`
	SpecialtyIcon string  `json:"specialtyIcon"`
	Visits        int64   `json:"visits"`
	Revenue       float64 `json:"revenue"`
	DoctorCount   int64   `json:"doctorCount"`
	AvgRating     float64 `json:"avgRating"`
	PercentChange float64 `json:"percentChange"`
}

type DoctorAppointmentsStatisticsRequest struct {
	FromDate  string
	ToDate    string
	DoctorIDs []string
	Status    string
	Search    string
	Page      int
	PageSize  int
}

type DoctorAppointmentsItem struct {
	DoctorID              string `json:"doctor_id"`
	DoctorName            string `json:"doctor_name"`
	TotalAppointments     int64  `json:"total_appointments"`
	CompletedAppointments int64  `json:"completed_appointments"`
	CancelledAppointments int64  `json:"cancelled_appointments"`
	CompletionRate        int64  `json:"completion_rate"`
}

type DoctorReviewStatsRequest struct {
	Name     string
	DoctorID string
	Page     int
	PageSize int
}

type DoctorReviewItem struct {
	DoctorID      string         `json:"doctorId"`
	Name          string         `json:"name"`
	AvgRating     float64        `json:"avgRating"`
	ReviewCount   int            `json:"reviewCount"`
	AvatarURL     *string        `json:"avatarUrl"`
	ReviewDetails []RatingDetail `json:"reviewDetails"`
}

// Page is one slice of a paginated report. Total counts every item before
// slicing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// DigestEvent is the daily summary published to the report topic.
type DigestEvent struct {
	EventID     string                                 `json:"eventId"`
	GeneratedAt string                                 `json:"generatedAt"`
	Summaries   map[SummaryType]SummaryAnalystResponse `json:"summaries"`
}
