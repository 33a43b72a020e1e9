package worker

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
	"github.com/docstream/cdc-worker/forward"
	"github.com/docstream/cdc-worker/store"
)

// Document is the shape the worker tails. Changes are decoded generically so
// one deployment can follow any collection.
type Document = bson.M

type WorkerConfig struct {
	MongoUri   string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"CDC_DATABASE" default:"docs"`
	Collection string `envconfig:"CDC_COLLECTION" default:""`

	// OperationTypes restricts the feed server-side; empty means all.
	OperationTypes []string `envconfig:"CDC_OPERATION_TYPES" default:""`

	KafkaEnabled   bool `envconfig:"CDC_KAFKA_ENABLED" default:"false"`
	WebhookEnabled bool `envconfig:"CDC_WEBHOOK_ENABLED" default:"false"`

	StatusServerAddress string        `envconfig:"STATUS_SERVER_ADDRESS" default:":8080"`
	ConnectTimeout      time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

func configProvider() (WorkerConfig, error) {
	cfg := WorkerConfig{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func mongoClientProvider(config WorkerConfig, lifecycle fx.Lifecycle) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(config.MongoUri))
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
			defer cancel()
			return client.Ping(pingCtx, nil)
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}

// watcherProvider follows a single collection when one is configured and the
// whole database otherwise.
func watcherProvider(config WorkerConfig, client *mongo.Client) cdc.StreamWatcher {
	database := client.Database(config.Database)
	if config.Collection != "" {
		return cdc.NewCollectionWatcher(database.Collection(config.Collection))
	}
	return cdc.NewDatabaseWatcher(database)
}

func cdcConfigProvider(config WorkerConfig) (cdc.Config, error) {
	cfg, err := cdc.NewConfig()
	if err != nil {
		return cdc.Config{}, err
	}

	if len(config.OperationTypes) > 0 && config.OperationTypes[0] != "" {
		types := make([]cdc.OperationType, 0, len(config.OperationTypes))
		for _, t := range config.OperationTypes {
			types = append(types, cdc.OperationType(t))
		}
		cfg.Pipeline = store.OperationTypeFilter(types...)
	}
	return cfg, nil
}

type EngineParams struct {
	fx.In

	Config    WorkerConfig
	CdcConfig cdc.Config
	Watcher   cdc.StreamWatcher
	Logger    *zap.SugaredLogger
}

func engineProvider(p EngineParams) (*cdc.Engine[Document], error) {
	engine, err := cdc.NewEngine[Document](cdc.Params[Document]{
		Watcher: p.Watcher,
		Config:  p.CdcConfig,
		Logger:  p.Logger,
	})
	if err != nil {
		return nil, err
	}

	if err := registerForwarders(engine, p.Config, p.Logger); err != nil {
		return nil, err
	}
	return engine, nil
}

// registerForwarders attaches the configured sinks, each wrapped in a
// retrying handler so a transient sink outage does not drop events.
func registerForwarders(engine *cdc.Engine[Document], config WorkerConfig, logger *zap.SugaredLogger) error {
	if config.KafkaEnabled {
		kafkaConfig, err := forward.NewKafkaConfig()
		if err != nil {
			return err
		}
		producer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, forward.NewSaramaConfig())
		if err != nil {
			return err
		}
		forwarder := forward.NewKafkaForwarder[Document](producer, kafkaConfig, logger)
		engine.AddHandler(forward.NewRetryingHandler[Document](forwarder))
	}

	if config.WebhookEnabled {
		webhookConfig, err := forward.NewWebhookConfig()
		if err != nil {
			return err
		}
		forwarder := forward.NewWebhookForwarder[Document](webhookConfig, logger)
		engine.AddHandler(forward.NewRetryingHandler[Document](forwarder))
	}

	return nil
}
