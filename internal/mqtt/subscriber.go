// Package mqtt subscribes to the network server's MQTT integration and feeds
// every uplink through the same pipeline as the webhook. The broker is
// trusted, so no shared secret is checked.
package mqtt

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/logging"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultSubscribeTimeout  = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	maxReconnectInterval     = 2 * time.Minute

	// processTimeout bounds one uplink, database writes included.
	processTimeout = 30 * time.Second
)

// Processor runs the ingestion pipeline on an already trusted body.
type Processor interface {
	Process(ctx context.Context, body []byte) (*ingest.Result, error)
}

// Subscriber owns the broker connection and the uplink subscription.
type Subscriber struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	proc   Processor
	logger *logrus.Logger
}

// NewSubscriber prepares a subscriber; nothing is dialed until Connect.
func NewSubscriber(cfg config.MQTTConfig, proc Processor, logger *logrus.Logger) *Subscriber {
	s := &Subscriber{cfg: cfg, proc: proc, logger: logger}
	s.client = pahomqtt.NewClient(s.clientOptions())
	return s
}

func (s *Subscriber) clientOptions() *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// Clean sessions drop subscriptions, so subscribe on every (re)connect.
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
		if !token.WaitTimeout(defaultSubscribeTimeout) || token.Error() != nil {
			s.logger.WithFields(logrus.Fields{
				"topic": s.cfg.Topic,
				"error": token.Error(),
			}).Error("MQTT subscribe failed")
			return
		}
		s.logger.WithField("topic", s.cfg.Topic).Info("MQTT subscribed")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		s.logger.WithError(err).Warn("MQTT connection lost")
	})
	return opts
}

// Connect dials the broker. The subscription is made by the on-connect
// handler.
func (s *Subscriber) Connect() error {
	token := s.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	s.logger.WithField("broker", s.cfg.Broker).Info("MQTT connected")
	return nil
}

// Close unsubscribes and disconnects.
func (s *Subscriber) Close() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(defaultSubscribeTimeout)
	}
	s.client.Disconnect(defaultDisconnectQuiesce)
}

func (s *Subscriber) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	_ = s.HandleMessage(msg.Topic(), msg.Payload())
}

// HandleMessage processes one uplink payload. Errors are logged and
// returned; the message is acknowledged either way.
func (s *Subscriber) HandleMessage(topic string, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{"topic": topic, "panic": r}).Error("MQTT handler panic recovered")
			err = fmt.Errorf("mqtt handler panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	result, err := s.proc.Process(ingest.WithTransport(ctx, ingest.TransportMQTT), payload)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"topic":   topic,
			"payload": logging.Truncate(payload),
		}).WithError(err).Error("MQTT uplink rejected")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"rid":      result.RID,
		"eui":      result.EUI,
		"inserted": result.Inserted,
	}).Debug("MQTT uplink processed")
	return nil
}
