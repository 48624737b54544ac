package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Capstone-E1/soilsense_backend/config"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// Client wraps the MQTT client and republishes every reading served by the
// cycling feed to a single topic.
type Client struct {
	client      mqtt.Client
	topic       string
	qos         byte
	isConnected atomic.Bool
}

// FeedPayload is the JSON document published for each served reading
type FeedPayload struct {
	Type        string         `json:"type"`
	PublishedAt time.Time      `json:"published_at"`
	Reading     models.Reading `json:"reading"`
}

// NewClient creates a new MQTT feed publisher. It does not connect.
func NewClient(cfg config.MQTTConfig) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(cfg.PingTimeout)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	c := &Client{
		topic: cfg.TopicFeed,
		qos:   1,
	}

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect establishes connection to MQTT broker. It gives up after a short
// timeout so an unreachable broker does not hold up startup.
func (c *Client) Connect() error {
	slog.Info("connecting to MQTT broker", "topic", c.topic)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("failed to connect to MQTT broker: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	c.isConnected.Store(true)
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected.Swap(false) {
		c.client.Disconnect(250)
		slog.Info("disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected.Load() && c.client.IsConnected()
}

// Topic returns the topic readings are published to
func (c *Client) Topic() string {
	return c.topic
}

// PublishReading publishes a served reading. The caller is the feed, so the
// broker round trip is awaited off the request path.
func (c *Client) PublishReading(reading models.Reading) {
	if !c.IsConnected() {
		return
	}

	payload, err := buildPayload(reading, time.Now())
	if err != nil {
		slog.Error("marshal MQTT feed payload", "error", err)
		return
	}

	token := c.client.Publish(c.topic, c.qos, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			slog.Warn("MQTT publish timed out", "topic", c.topic)
			return
		}
		if err := token.Error(); err != nil {
			slog.Warn("MQTT publish failed", "topic", c.topic, "error", err)
		}
	}()
}

func buildPayload(reading models.Reading, now time.Time) ([]byte, error) {
	return json.Marshal(FeedPayload{
		Type:        "feed_reading",
		PublishedAt: now.UTC(),
		Reading:     reading,
	})
}

// onConnect callback when connection is established
func (c *Client) onConnect(mqtt.Client) {
	slog.Info("MQTT client connected")
	c.isConnected.Store(true)
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	slog.Warn("MQTT connection lost", "error", err)
	c.isConnected.Store(false)
}
