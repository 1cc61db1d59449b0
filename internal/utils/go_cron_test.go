package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestStartDigestScheduler(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	scheduler, err := StartDigestScheduler("0 6 * * *", func() {}, logger)
	if err != nil {
		t.Fatalf("StartDigestScheduler: %v", err)
	}
	defer scheduler.Stop()
	if len(scheduler.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(scheduler.Entries()))
	}

	if _, err := StartDigestScheduler("every morning", func() {}, logger); err == nil {
		t.Fatalf("expected an invalid spec to fail")
	}
}

func TestCronLoggerWritesThroughLogrus(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	cl := CronLogger(logger)
	cl.Info("skip", "entry", 3)
	cl.Error(errors.New("boom"), "panic", "job", "digest")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}
	var skip, failure map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &skip); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if skip["msg"] != "skip" || skip["level"] != "debug" || skip["entry"] != float64(3) {
		t.Fatalf("unexpected skip entry %v", skip)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if failure["level"] != "error" || failure["Error"] != "boom" || failure["job"] != "digest" {
		t.Fatalf("unexpected error entry %v", failure)
	}
}

func TestCronLoggerHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	CronLogger(logger).Info("wake", "now", "06:00")
	if buf.Len() != 0 {
		t.Fatalf("expected routine scheduler events to stay below info, got %q", buf.String())
	}
}
