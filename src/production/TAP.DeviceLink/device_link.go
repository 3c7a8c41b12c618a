package devicelink

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Config"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
	monitoring "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Monitoring"
)

// EventHandler consumes decoded telemetry. The coordinator implements
// it; handlers must not block, everything downstream is in-memory.
type EventHandler interface {
	HandleAmount(tapID string, amount float64)
	HandleStatus(tapID string, status string)
}

// Link maintains the one persistent connection to the MQTT broker and
// translates between tap ids and wire topics. Outbound publishes are
// fire-and-forget: a publish while disconnected is logged and dropped,
// never surfaced as an error.
type Link struct {
	cfg     config.MQTTConfig
	table   *TopicTable
	handler EventHandler
	logger  *logger.Logger
	client  mqtt.Client
}

func New(cfg config.MQTTConfig, table *TopicTable, handler EventHandler, log *logger.Logger) *Link {
	return &Link{
		cfg:     cfg,
		table:   table,
		handler: handler,
		logger:  log.WithComponent("devicelink"),
	}
}

// Start connects to the broker and subscribes to the amount and status
// streams. A failed initial connect is returned to the caller: the
// service must not come up without a working device link.
func (l *Link) Start() error {
	opts := mqtt.NewClientOptions().
		AddBroker(l.brokerURL()).
		SetClientID(l.cfg.ClientID).
		SetKeepAlive(l.cfg.KeepAlive).
		SetPingTimeout(l.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true)

	if l.cfg.BrokerUser != "" {
		opts.SetUsername(l.cfg.BrokerUser)
		opts.SetPassword(l.cfg.BrokerPass)
	}

	if l.cfg.UseTLS {
		tlsCfg, err := l.tlsConfig(l.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		l.logger.ErrorWithError(err, "mqtt connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		for _, kind := range []string{KindAmount, KindStatus} {
			topic := fmt.Sprintf("%s/+/%s", l.cfg.TopicPrefix, kind)
			if token := c.Subscribe(topic, 1, l.onMessage); token.Wait() && token.Error() != nil {
				l.logger.WithField("topic", topic).ErrorWithError(token.Error(), "subscribe failed")
			} else {
				l.logger.WithField("topic", topic).Info("subscribed")
			}
		}
	}

	l.client = mqtt.NewClient(opts)
	if tk := l.client.Connect(); tk.Wait() && tk.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", tk.Error())
	}

	return nil
}

// Stop performs one clean disconnect; in-flight publishes are not
// awaited past shutdown.
func (l *Link) Stop() {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
	}
	l.logger.Info("mqtt disconnected")
}

func (l *Link) IsConnected() bool {
	return l.client != nil && l.client.IsConnected()
}

func (l *Link) onMessage(_ mqtt.Client, m mqtt.Message) {
	payload := string(m.Payload())
	l.logger.WithField("topic", m.Topic()).WithField("payload", payload).Debug("telemetry received")

	msg, err := parseTopic(l.cfg.TopicPrefix, m.Topic(), l.table)
	if err != nil {
		monitoring.TelemetryDropped("bad_topic")
		l.logger.WithField("topic", m.Topic()).WithError(err).Warn("dropping telemetry")
		return
	}

	switch msg.Kind {
	case KindAmount:
		amount, err := strconv.ParseFloat(payload, 64)
		if err != nil || amount < 0 {
			monitoring.TelemetryDropped("bad_amount")
			l.logger.WithTap(msg.TapID).WithField("payload", payload).Warn("dropping unparsable amount")
			return
		}
		l.handler.HandleAmount(msg.TapID, amount)
	case KindStatus:
		l.handler.HandleStatus(msg.TapID, payload)
	default:
		// our own cmd/currentUser echoes are not subscribed; anything
		// else on the prefix is not ours to interpret
		monitoring.TelemetryDropped("unknown_kind")
		l.logger.WithField("topic", m.Topic()).Warn("dropping message of unknown kind")
	}
}

// PublishCommand sends a command string on the tap's cmd topic.
// Best-effort: not connected means logged and skipped.
func (l *Link) PublishCommand(tapID, command string) {
	topic, ok := l.table.TopicFor(tapID)
	if !ok {
		l.logger.WithTap(tapID).Warn("no topic registered for tap, skipping command")
		return
	}
	l.publish(fmt.Sprintf("%s/%s/%s", l.cfg.TopicPrefix, topic, KindCommand), command)
}

// AnnounceCurrentUser publishes the user now authorized to pour. An
// empty user id means the queue emptied; the tap is additionally told
// to reset to its idle state.
func (l *Link) AnnounceCurrentUser(tapID, userID string) {
	topic, ok := l.table.TopicFor(tapID)
	if !ok {
		l.logger.WithTap(tapID).Warn("no topic registered for tap, skipping announcement")
		return
	}
	l.publish(fmt.Sprintf("%s/%s/%s", l.cfg.TopicPrefix, topic, KindCurrentUser), userID)

	if userID == "" {
		l.PublishCommand(tapID, tapmodels.CommandReset)
	}
}

func (l *Link) publish(topic, payload string) {
	if l.client == nil || !l.client.IsConnected() {
		l.logger.WithField("topic", topic).Warn("mqtt client not ready, skipping publish")
		return
	}

	token := l.client.Publish(topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		l.logger.WithField("topic", topic).ErrorWithError(token.Error(), "publish failed")
		return
	}
	l.logger.WithField("topic", topic).WithField("payload", payload).Debug("published")
}

func (l *Link) brokerURL() string {
	scheme := "tcp"
	if l.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, l.cfg.BrokerHost, l.cfg.BrokerPort)
}

func (l *Link) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
