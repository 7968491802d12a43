//go:build integration

package kafka_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"warden/internal/platform/kafka"
	"warden/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	broker   string
	producer *kafka.Producer
	cfg      kafka.Config
}

func TestProducerIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	s.cfg = kafka.Config{Brokers: []string{s.broker}, ClientID: "warden-test", Partitions: 1}
	p, err := kafka.NewProducer(s.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.producer = p
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) TestEnsureTopicsIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.producer.EnsureTopics(ctx, s.cfg, "warden.test.idempotent"))
	s.Require().NoError(s.producer.EnsureTopics(ctx, s.cfg, "warden.test.idempotent"))
}

func (s *ProducerIntegrationSuite) TestPublishDeliversRecordWithHeaders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "warden.test.publish"
	s.Require().NoError(s.producer.EnsureTopics(ctx, s.cfg, topic))

	err := s.producer.Publish(ctx, topic, []byte("user-1"), []byte(`{"action":"kyc_initiated"}`),
		map[string]string{"event_type": "kyc_initiated"})
	s.Require().NoError(err)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)
	rec := records[0]
	s.Equal("user-1", string(rec.Key))
	s.JSONEq(`{"action":"kyc_initiated"}`, string(rec.Value))
	s.Require().Len(rec.Headers, 1)
	s.Equal("event_type", rec.Headers[0].Key)
	s.Equal("kyc_initiated", string(rec.Headers[0].Value))
}
