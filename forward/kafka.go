package forward

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
)

type KafkaConfig struct {
	Brokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	TopicPrefix string   `envconfig:"KAFKA_TOPIC_PREFIX" default:""`
	EventSource string   `envconfig:"CDC_EVENT_SOURCE" default:"cdc-worker"`
}

func NewKafkaConfig() (KafkaConfig, error) {
	cfg := KafkaConfig{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// NewSaramaConfig returns producer settings for synchronous publishing.
func NewSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	// A sync producer requires both return flags.
	config.Producer.Return.Errors = true
	config.Producer.Return.Successes = true
	return config
}

// KafkaForwarder publishes change events as CloudEvents. The topic follows
// the mongo CDC convention of <prefix><database>.<collection>, the message
// key is the document id so changes to one document stay in one partition.
type KafkaForwarder[Document any] struct {
	producer sarama.SyncProducer
	config   KafkaConfig
	logger   *zap.SugaredLogger
}

func NewKafkaForwarder[Document any](producer sarama.SyncProducer, config KafkaConfig, logger *zap.SugaredLogger) *KafkaForwarder[Document] {
	return &KafkaForwarder[Document]{
		producer: producer,
		config:   config,
		logger:   logger,
	}
}

func (k *KafkaForwarder[Document]) OnEvent(ctx context.Context, event cdc.Event[Document]) error {
	ce, err := NewCloudEvent(k.config.EventSource, event)
	if err != nil {
		return err
	}
	value, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("encoding cloud event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: k.topic(event.Namespace),
		Value: sarama.ByteEncoder(value),
	}
	if id, ok := event.DocumentID(); ok {
		message.Key = sarama.StringEncoder(id.Hex())
	}

	partition, offset, err := k.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("publishing change event: %w", err)
	}

	k.logger.Debugw("published change event",
		"topic", message.Topic,
		"partition", partition,
		"offset", offset,
		"operationType", event.OperationType)
	return nil
}

func (k *KafkaForwarder[Document]) topic(namespace cdc.Namespace) string {
	return k.config.TopicPrefix + namespace.Database + "." + namespace.Collection
}
