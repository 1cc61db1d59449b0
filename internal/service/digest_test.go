package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/repository"
)

type recordingPublisher struct {
	events []domain.DigestEvent
	err    error
}

func (p *recordingPublisher) PublishDigest(_ context.Context, event domain.DigestEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestDigestJobPublishesEverySummary(t *testing.T) {
	svc := newTestService(t, repository.Dataset{
		Patients: []domain.Patient{{ID: "p1", CreatedAt: at("2024-08-02 00:00")}},
		Orders: []domain.OrderMapping{
			{ID: "o1", AppointmentID: "a1", Amount: 40, Status: domain.OrderCompleted, CreatedAt: at("2024-08-02 00:00")},
		},
	})
	pub := &recordingPublisher{}
	job := NewDigestJob(svc, pub, quietLogger())
	job.clock = func() time.Time { return testNow }

	job.Run()

	if len(pub.events) != 1 {
		t.Fatalf("expected one published digest, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.EventID == "" || ev.GeneratedAt != "2024-08-15T10:00:00Z" {
		t.Fatalf("unexpected envelope %+v", ev)
	}
	if len(ev.Summaries) != len(domain.SummaryTypes) {
		t.Fatalf("expected %d summaries, got %d", len(domain.SummaryTypes), len(ev.Summaries))
	}
	if ev.Summaries[domain.SummaryPatient].Total != 1 || ev.Summaries[domain.SummaryRevenue].Total != 40 {
		t.Fatalf("unexpected summaries %+v", ev.Summaries)
	}
}

func TestDigestJobSurvivesPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	job := NewDigestJob(newTestService(t, repository.Dataset{}), pub, quietLogger())

	job.Run()

	if len(pub.events) != 0 {
		t.Fatalf("expected nothing recorded, got %d", len(pub.events))
	}
}
