package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealClient talks to an actual MQTT broker. Inbound messages are parsed
// and handed to a single deliver callback; paho's default ordered delivery
// serializes the callback, so the core sees at most one inbound payload at
// a time.
type RealClient struct {
	client  paho.Client
	deliver func(Inbound)
}

// NewRealClient connects to the broker and subscribes to the guardian's
// inbound topics. deliver must be fast and non-blocking (it hands the
// payload to a bounded queue).
func NewRealClient(broker, clientID string, deliver func(Inbound)) (*RealClient, error) {
	c := &RealClient{deliver: deliver}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(client paho.Client) {
			// Resubscribe on every (re)connect; subscriptions are not
			// retained across a session-less reconnect.
			c.subscribe(client)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	c.client = client
	return c, nil
}

func (c *RealClient) subscribe(client paho.Client) {
	topics := map[string]byte{
		TopicPattern: 1,
		TopicAlert:   1,
		TopicWindow:  1,
		TopicSample:  0,
	}
	token := client.SubscribeMultiple(topics, c.onMessage)
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: subscribe timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe error: %v", err)
	}
}

func (c *RealClient) onMessage(_ paho.Client, msg paho.Message) {
	in, err := ParseInbound(msg.Topic(), msg.Payload())
	if err != nil {
		log.Printf("mqtt: drop malformed message on %s: %v", msg.Topic(), err)
		return
	}
	c.deliver(in)
}

// PublishAck sends an alert acknowledgement. QoS 1: the controller is
// waiting on it.
func (c *RealClient) PublishAck(event AckEvent) error {
	payload, err := FormatAck(event)
	if err != nil {
		return fmt.Errorf("format ack: %w", err)
	}
	return c.publish(TopicAck, 1, false, payload)
}

// PublishSync sends a sync confirmation.
func (c *RealClient) PublishSync(event SyncEvent) error {
	payload, err := FormatSync(event)
	if err != nil {
		return fmt.Errorf("format sync: %w", err)
	}
	return c.publish(TopicSync, 1, false, payload)
}

// PublishTrend sends a trend report. QoS 0: the next report supersedes it.
func (c *RealClient) PublishTrend(event TrendEvent) error {
	payload, err := FormatTrend(event)
	if err != nil {
		return fmt.Errorf("format trend: %w", err)
	}
	return c.publish(TopicTrend, 0, false, payload)
}

// PublishSystem sends a system lifecycle event.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(TopicSystem, 1, event.Retained, payload)
}

func (c *RealClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
