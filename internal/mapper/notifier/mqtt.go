package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/pkg/log"
	pkgmqtt "github.com/autopeer-io/livemapper/pkg/mqtt"
	"github.com/autopeer-io/livemapper/pkg/mqtt/topic"
	"github.com/autopeer-io/livemapper/pkg/options"
)

const (
	presenceOnline  = "online"
	presenceOffline = "offline"

	statusQoS       = 1
	shutdownTimeout = 5 * time.Second
)

// ErrNotConnected is returned when a status is published while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt broker not connected")

var _ core.StatusNotifier = (*MQTTNotifier)(nil)

// MQTTNotifier publishes every fresh vehicle status as a retained message.
// It also maintains a retained presence topic for the running instance.
type MQTTNotifier struct {
	client   pkgmqtt.Client
	topics   *topic.TopicBuilder
	clientID string
}

func NewMQTTNotifier(opts *options.MqttOptions) (*MQTTNotifier, error) {
	cfg := opts.ToClientConfig()
	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("livemapper-%s", hostname)
	}

	n := &MQTTNotifier{
		topics:   topic.NewTopicBuilder(opts.TopicRoot),
		clientID: cfg.ClientID,
	}

	// The broker flips presence to offline if the connection drops without a clean shutdown.
	cfg.WillTopic = n.topics.Presence(cfg.ClientID)
	cfg.WillPayload = []byte(presenceOffline)
	cfg.WillQoS = statusQoS
	cfg.WillRetain = true
	cfg.OnConnectionUp = n.onConnectionUp

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mqtt client: %w", err)
	}
	n.client = client

	return n, nil
}

func newMQTTNotifier(client pkgmqtt.Client, topics *topic.TopicBuilder, clientID string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topics: topics, clientID: clientID}
}

// Start connects to the broker and blocks until ctx is done, then announces
// the instance offline and disconnects.
func (n *MQTTNotifier) Start(ctx context.Context) error {
	// The connection outlives ctx so the offline presence can still be sent.
	if err := n.client.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if n.client.IsConnected() {
		if err := n.publishPresence(shutdownCtx, presenceOffline); err != nil {
			log.Error(err, "Failed to publish offline presence", "clientID", n.clientID)
		}
	}
	n.client.Disconnect(shutdownCtx)

	return nil
}

// NotifyStatus publishes payload retained on {root}/status/{vehicleID}.
func (n *MQTTNotifier) NotifyStatus(ctx context.Context, vehicleID string, payload json.RawMessage) error {
	if !n.client.IsConnected() {
		return ErrNotConnected
	}

	t := n.topics.Status(vehicleID)
	if err := n.client.Publish(ctx, t, statusQoS, true, payload); err != nil {
		return fmt.Errorf("failed to publish status to %s: %w", t, err)
	}

	log.Debug("Published vehicle status", "topic", t, "bytes", len(payload))
	return nil
}

func (n *MQTTNotifier) onConnectionUp(ctx context.Context, c pkgmqtt.Client) {
	t := n.topics.Presence(n.clientID)
	if err := c.Publish(ctx, t, statusQoS, true, []byte(presenceOnline)); err != nil {
		log.Error(err, "Failed to publish online presence", "topic", t)
	}
}

func (n *MQTTNotifier) publishPresence(ctx context.Context, state string) error {
	return n.client.Publish(ctx, n.topics.Presence(n.clientID), statusQoS, true, []byte(state))
}
