package di

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublishDigest(t *testing.T) {
	w := &fakeWriter{}
	kp := &KafkaDigestPublisher{writer: w, topic: "report_topic", Logger: quietLogger()}
	event := domain.DigestEvent{
		EventID:     "evt-1",
		GeneratedAt: "2024-08-15T06:00:00Z",
		Summaries: map[domain.SummaryType]domain.SummaryAnalystResponse{
			domain.SummaryRevenue: {Percent: 0.5, Total: 150, Series: [4]float64{50, 0, 100, 0}},
		},
	}

	if err := kp.PublishDigest(context.Background(), event); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "evt-1" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	var decoded map[string]any
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	summaries, ok := decoded["summaries"].(map[string]any)
	if !ok || summaries["revenue"] == nil {
		t.Fatalf("expected revenue summary in payload, got %s", w.msgs[0].Value)
	}

	if err := kp.Close(); err != nil || !w.closed {
		t.Fatalf("expected writer to close, got %v", err)
	}
}

func TestPublishDigestWriteFailure(t *testing.T) {
	cause := errors.New("leader not available")
	kp := &KafkaDigestPublisher{writer: &fakeWriter{err: cause}, topic: "report_topic", Logger: quietLogger()}

	err := kp.PublishDigest(context.Background(), domain.DigestEvent{EventID: "evt-2"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
