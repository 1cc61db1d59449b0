package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
)

const digestTimeout = 2 * time.Minute

type DigestPublisher interface {
	PublishDigest(ctx context.Context, event domain.DigestEvent) error
}

// DigestJob publishes the month-to-date summary of every summary type.
type DigestJob struct {
	reports   ReportService
	publisher DigestPublisher
	clock     func() time.Time
	Logger    *logrus.Logger
}

func NewDigestJob(reports ReportService, publisher DigestPublisher, logger *logrus.Logger) *DigestJob {
	return &DigestJob{
		reports:   reports,
		publisher: publisher,
		clock:     time.Now,
		Logger:    logger,
	}
}

// Run builds and publishes one digest. Failures are logged and left for the
// next tick.
func (j *DigestJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	event, err := j.Build(ctx)
	if err != nil {
		j.Logger.WithFields(logrus.Fields{
			"Function": "DigestJob.Run",
			"Error":    err,
		}).Error("Failed to build report digest")
		return
	}
	if err := j.publisher.PublishDigest(ctx, event); err != nil {
		j.Logger.WithFields(logrus.Fields{
			"Function": "DigestJob.Run",
			"EventId":  event.EventID,
			"Error":    err,
		}).Error("Failed to publish report digest")
		return
	}
	j.Logger.WithFields(logrus.Fields{
		"Function": "DigestJob.Run",
		"EventId":  event.EventID,
	}).Info("Report digest published")
}

func (j *DigestJob) Build(ctx context.Context) (domain.DigestEvent, error) {
	event := domain.DigestEvent{
		EventID:     uuid.NewString(),
		GeneratedAt: j.clock().UTC().Format(time.RFC3339),
		Summaries:   make(map[domain.SummaryType]domain.SummaryAnalystResponse, len(domain.SummaryTypes)),
	}
	for _, t := range domain.SummaryTypes {
		summary, err := j.reports.SummaryAnalyst(ctx, domain.SummaryAnalystRequest{TypeSummary: t, Period: period.Month})
		if err != nil {
			return domain.DigestEvent{}, fmt.Errorf("failed to summarize %s: %w", t, err)
		}
		event.Summaries[t] = summary
	}
	return event, nil
}
