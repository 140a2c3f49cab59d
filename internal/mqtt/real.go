package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/gesture-sensor/internal/logic"
)

// bufferCapacity is how many messages are held while the broker is unreachable.
const bufferCapacity = 100

// errNotConnected is returned by send while the client is disconnected.
var errNotConnected = errors.New("not connected")

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered. After reconnection they are replayed oldest
// first, and new messages queue behind them until the replay completes.
type RealPublisher struct {
	client paho.Client

	mu        sync.Mutex
	buf       *backlog
	replaying bool
	lostOnce  bool
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// not reachable within the connect timeout, the publisher is still returned and
// keeps retrying in the background.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{buf: newBacklog(bufferCapacity)}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a gesture event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - lifecycle events should be delivered
	return p.publish(bufferedMsg{
		topic:    TopicSystem,
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	})
}

// publish sends msg, or queues it while the connection is down or older
// messages are still waiting.
func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	if p.replaying || p.buf.len() > 0 {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	err := p.send(msg)
	if errors.Is(err, errNotConnected) {
		p.mu.Lock()
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	return err
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		return errNotConnected
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// onConnect starts replaying buffered messages and, after a connection loss,
// queues a RECONNECTED event behind them.
func (p *RealPublisher) onConnect(c paho.Client) {
	var reconnect []byte
	p.mu.Lock()
	reconnected := p.lostOnce
	p.mu.Unlock()
	if reconnected {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err != nil {
			log.Printf("mqtt: format reconnected payload: %v", err)
		} else {
			reconnect = payload
		}
	}

	p.mu.Lock()
	pending, dropped := p.buf.len(), p.buf.takeDropped()
	if reconnect != nil {
		p.buf.push(bufferedMsg{topic: TopicSystem, payload: reconnect, qos: 1})
	}
	start := !p.replaying && p.buf.len() > 0
	if start {
		p.replaying = true
	}
	p.mu.Unlock()

	if reconnected {
		log.Printf("mqtt: reconnected, replaying %d buffered messages (%d dropped)", pending, dropped)
	} else {
		log.Printf("mqtt: connected")
	}

	// Publish from a goroutine: paho does not allow waiting on tokens inside
	// the connect handler.
	if start {
		go p.replay()
	}
}

// replay sends the backlog oldest first. It stops early if the connection
// drops, leaving the unsent messages for the next onConnect.
func (p *RealPublisher) replay() {
	for {
		p.mu.Lock()
		msg, ok := p.buf.front()
		if !ok {
			p.replaying = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		err := p.send(msg)
		if errors.Is(err, errNotConnected) {
			p.mu.Lock()
			p.replaying = false
			p.mu.Unlock()
			return
		}
		if err != nil {
			log.Printf("mqtt: replay error: %v", err)
		}

		p.mu.Lock()
		p.buf.pop(msg.id)
		p.mu.Unlock()
	}
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	p.mu.Lock()
	p.lostOnce = true
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for reconnection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
