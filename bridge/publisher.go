package bridge

import (
	sterrors "errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
)

// Backend names accepted by Config.System.
const (
	SystemChannel = "channel"
	SystemNATS    = "nats"
	SystemKafka   = "kafka"
)

// Config selects and parameterises the bridge's publisher backend.
type Config struct {
	// System selects the backend: "channel" (default), "nats", or "kafka".
	System string

	// Topic receives the bridged transactions.
	Topic string

	// NATS configuration.
	NATSURL string

	// Kafka configuration.
	KafkaBrokers []string
}

// Validate checks that the configuration is complete for the selected
// backend.
func (c *Config) Validate() error {
	if c == nil {
		return errspkg.ErrConfigRequired
	}

	var errs []error
	if c.Topic == "" {
		errs = append(errs, sterrors.New("bridge: topic is required"))
	}
	switch c.System {
	case "", SystemChannel:
	case SystemNATS:
		if c.NATSURL == "" {
			errs = append(errs, sterrors.New("nats: URL is required"))
		}
	case SystemKafka:
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, sterrors.New("kafka: brokers are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("bridge: unknown system %q", c.System))
	}
	return errspkg.NewConfigValidationError(sterrors.Join(errs...))
}

// Publisher factories are variables so tests can substitute fakes.
var (
	GoChannelFactory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) message.Publisher {
		return gochannel.NewGoChannel(cfg, logger)
	}

	NATSPublisherFactory = func(cfg wmnats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return wmnats.NewPublisher(cfg, logger)
	}

	KafkaPublisherFactory = func(cfg wmkafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return wmkafka.NewPublisher(cfg, logger)
	}
)

func newPublisher(conf *Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	switch conf.System {
	case "", SystemChannel:
		return GoChannelFactory(gochannel.Config{}, logger), nil
	case SystemNATS:
		return NATSPublisherFactory(
			wmnats.PublisherConfig{
				URL:         conf.NATSURL,
				NatsOptions: []nc.Option{nc.RetryOnFailedConnect(true)},
				Marshaler:   &wmnats.NATSMarshaler{},
			},
			logger,
		)
	case SystemKafka:
		return KafkaPublisherFactory(
			wmkafka.PublisherConfig{
				Brokers:   conf.KafkaBrokers,
				Marshaler: wmkafka.DefaultMarshaler{},
			},
			logger,
		)
	default:
		return nil, fmt.Errorf("bridge: unknown system %q", conf.System)
	}
}
