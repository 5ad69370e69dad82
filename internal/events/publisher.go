package events

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendNone     = "none"
	BackendKafka    = "kafka"
	BackendRabbitMQ = "rabbitmq"
)

// Options selects and configures the broker behind NewPublisher.
type Options struct {
	Backend        string
	KafkaBrokers   []string
	KafkaTopic     string
	RabbitURL      string
	RabbitExchange string
}

// NewPublisher builds the publisher named by opts.Backend. An empty backend means none.
func NewPublisher(opts Options, logger *zap.Logger) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return NoopPublisher{}, nil
	case BackendKafka:
		if len(opts.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka backend requires at least one broker")
		}
		if opts.KafkaTopic == "" {
			return nil, fmt.Errorf("kafka backend requires a topic")
		}
		return NewKafkaPublisher(opts.KafkaBrokers, opts.KafkaTopic, logger), nil
	case BackendRabbitMQ:
		if opts.RabbitURL == "" {
			return nil, fmt.Errorf("rabbitmq backend requires a url")
		}
		return NewRabbitPublisher(opts.RabbitURL, opts.RabbitExchange, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", opts.Backend)
	}
}
