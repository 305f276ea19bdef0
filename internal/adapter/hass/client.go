package hass

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"tariffpilot/internal/config"
	"tariffpilot/internal/core/port"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	payloadMissingUnknown     = "unknown"
	payloadMissingUnavailable = "unavailable"

	stateField = "state"

	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("tariffpilot_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(true)
	return opts
}

// StatestreamClient mirrors the host's MQTT statestream into an in-memory
// entity cache. Topics have the shape <base>/<domain>/<object_id>/<field>
// where field is "state" or an attribute name; the cache is keyed by
// "<domain>.<object_id>" plus the field.
type StatestreamClient struct {
	client    mqtt.Client
	baseTopic string

	mu    sync.RWMutex
	cache map[string]string

	// OnEntityChange, when set, is invoked for every state-field update
	// with the entity ID and the new payload.
	OnEntityChange func(entityId, value string)

	// OnConnectionLost, when set, is invoked when the broker link drops.
	OnConnectionLost func(err error)
}

func NewStatestreamClient(cfg *config.Config, opts *mqtt.ClientOptions) *StatestreamClient {
	c := &StatestreamClient{
		baseTopic: cfg.MQTT.StatestreamTopic,
		cache:     make(map[string]string),
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if c.OnConnectionLost != nil {
			c.OnConnectionLost(err)
		}
	})
	c.client = mqtt.NewClient(opts)
	return c
}

// Connect connects to the broker and subscribes to the whole statestream.
func (c *StatestreamClient) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if token.Error() != nil {
		return token.Error()
	}
	sub := c.client.Subscribe(fmt.Sprintf("%s/#", c.baseTopic), 0, c.onMessage)
	if !sub.WaitTimeout(connectTimeout) {
		return fmt.Errorf("statestream subscribe timeout")
	}
	return sub.Error()
}

func (c *StatestreamClient) Disconnect() {
	c.client.Disconnect(250)
}

func (c *StatestreamClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

func (c *StatestreamClient) onMessage(_ mqtt.Client, msg mqtt.Message) {
	rel := strings.TrimPrefix(msg.Topic(), c.baseTopic+"/")
	parts := strings.Split(rel, "/")
	if len(parts) != 3 {
		return
	}
	entityId := fmt.Sprintf("%s.%s", parts[0], parts[1])
	field := parts[2]
	value := strings.Trim(string(msg.Payload()), "\"")

	c.mu.Lock()
	c.cache[cacheKey(entityId, field)] = value
	c.mu.Unlock()

	if field == stateField && c.OnEntityChange != nil {
		c.OnEntityChange(entityId, value)
	}
}

func cacheKey(entityId, field string) string {
	return entityId + "#" + field
}

func isMissing(value string) bool {
	return value == "" || value == payloadMissingUnknown || value == payloadMissingUnavailable
}

func (c *StatestreamClient) GetState(entityId string) (string, bool) {
	return c.lookup(cacheKey(entityId, stateField))
}

func (c *StatestreamClient) GetAttribute(entityId string, attribute string) (string, bool) {
	return c.lookup(cacheKey(entityId, attribute))
}

func (c *StatestreamClient) lookup(key string) (string, bool) {
	c.mu.RLock()
	value, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok || isMissing(value) {
		return "", false
	}
	return value, true
}

// publish sends a payload and waits for broker confirmation.
func (c *StatestreamClient) publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish timeout on %s", topic)
	}
	return token.Error()
}

// ensure interface compliance
var _ port.StateReader = (*StatestreamClient)(nil)
