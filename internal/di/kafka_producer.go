package di

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDigestPublisher writes report digests to the report topic.
type KafkaDigestPublisher struct {
	writer messageWriter
	topic  string
	Logger *logrus.Logger
}

func NewKafkaDigestPublisher(broker, topic string, logger *logrus.Logger) *KafkaDigestPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaDigestPublisher{writer: writer, topic: topic, Logger: logger}
}

func (kp *KafkaDigestPublisher) PublishDigest(ctx context.Context, event domain.DigestEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	// keyed by event id so redeliveries of one digest share a partition
	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: message,
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	kp.Logger.WithFields(logrus.Fields{
		"Function": "PublishDigest",
		"Topic":    kp.topic,
		"EventId":  event.EventID,
	}).Info("Digest delivered")
	return nil
}

func (kp *KafkaDigestPublisher) Close() error {
	return kp.writer.Close()
}

// EnsureTopicExists creates topic on the cluster controller when it is
// missing.
func EnsureTopicExists(broker, topic string) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find kafka controller: %w", err)
	}
	ctrl, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer ctrl.Close()

	return ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
