package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

var testNow = at("2024-08-15 10:00")

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, data repository.Dataset) ReportService {
	t.Helper()
	resolver := period.NewResolver(time.UTC).WithClock(func() time.Time { return testNow })
	return NewReportService(repository.NewMemoryRepository(data), resolver, quietLogger())
}

func rated(score float64) *datatypes.JSONType[domain.Rating] {
	r := datatypes.NewJSONType(domain.Rating{RatingScore: score, RatedAt: testNow})
	return &r
}

func doctor(id, code, name string, score float64, specialties ...string) domain.Doctor {
	return domain.Doctor{
		ID:                 id,
		Code:               code,
		FullName:           name,
		SpecialtyIDs:       datatypes.JSONSlice[string](specialties),
		RegistrationStatus: domain.RegistrationApproved,
		AvgScore:           score,
		CreatedAt:          at("2023-01-01 00:00"),
	}
}

func specialties() []domain.Specialty {
	return []domain.Specialty{
		{ID: "s2", Code: "DERM", Name: "Dermatology", AvatarURL: "derm.png"},
		{ID: "s1", Code: "CARD", Name: "Cardiology", AvatarURL: "card.png"},
	}
}
