package cdc

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config controls how the engine opens and maintains its change stream
// subscription. It is treated as immutable once the engine is constructed.
//
// Pipeline, ResumeAfter and StartAtOperationTime have no environment
// representation and are set programmatically.
type Config struct {
	FullDocumentMode     string        `envconfig:"CDC_FULL_DOCUMENT_MODE" default:"default"`
	BatchSize            int32         `envconfig:"CDC_BATCH_SIZE" default:"0"`
	MaxAwaitTime         time.Duration `envconfig:"CDC_MAX_AWAIT_TIME" default:"0"`
	AutoReconnect        bool          `envconfig:"CDC_AUTO_RECONNECT" default:"true"`
	ReconnectDelay       time.Duration `envconfig:"CDC_RECONNECT_DELAY" default:"5s"`
	MaxReconnectAttempts int           `envconfig:"CDC_MAX_RECONNECT_ATTEMPTS" default:"0"`

	Pipeline             mongo.Pipeline       `ignored:"true"`
	ResumeAfter          bson.Raw             `ignored:"true"`
	StartAtOperationTime *primitive.Timestamp `ignored:"true"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.FullDocumentMode {
	case "", "default", "updateLookup", "whenAvailable", "required":
	default:
		return fmt.Errorf("invalid full document mode %q", c.FullDocumentMode)
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect delay must not be negative")
	}
	if c.MaxReconnectAttempts < 0 {
		return fmt.Errorf("max reconnect attempts must not be negative")
	}
	return nil
}

// streamOptions builds the driver options for opening a stream. A known resume
// token always wins over any configured starting point so a reopened stream
// continues exactly where the previous one left off.
func (c Config) streamOptions(resumeToken bson.Raw) *options.ChangeStreamOptions {
	opts := options.ChangeStream()
	if c.FullDocumentMode != "" {
		opts.SetFullDocument(options.FullDocument(c.FullDocumentMode))
	}
	if c.BatchSize > 0 {
		opts.SetBatchSize(c.BatchSize)
	}
	if c.MaxAwaitTime > 0 {
		opts.SetMaxAwaitTime(c.MaxAwaitTime)
	}

	switch {
	case len(resumeToken) > 0:
		opts.SetResumeAfter(resumeToken)
	case len(c.ResumeAfter) > 0:
		opts.SetResumeAfter(c.ResumeAfter)
	case c.StartAtOperationTime != nil:
		opts.SetStartAtOperationTime(c.StartAtOperationTime)
	}
	return opts
}

func (c Config) pipeline() mongo.Pipeline {
	if c.Pipeline == nil {
		return mongo.Pipeline{}
	}
	return c.Pipeline
}
