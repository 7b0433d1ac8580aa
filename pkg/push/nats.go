package push

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/visionradar/pkg/logger"
)

const natsClientName = "visionradar-dashboard"

// NatsChannel sources push events from NATS instead of the backend
// socket. Event names map directly to subjects; message payloads are
// the event data with no envelope.
type NatsChannel struct {
	*dispatcher

	config Config

	connMu     sync.Mutex
	conn       *nats.Conn
	subs       []*nats.Subscription
	subscribed map[string]bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newNatsChannel(config Config, log logger.Logger) *NatsChannel {
	return &NatsChannel{
		dispatcher: newDispatcher(log),
		config:     config,
		subscribed: make(map[string]bool),
	}
}

// Start connects and subscribes every registered topic. The client
// keeps retrying in the background when the server is unreachable, so
// Start only fails on malformed options.
func (c *NatsChannel) Start(_ context.Context) error {
	opts := []nats.Option{
		nats.Name(natsClientName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			c.logger.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			c.logger.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
			c.fireConnect(SourceNats)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.logger.Warn().Err(err).Msg("NATS disconnected")
			c.setState(ChannelState{})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			c.fireConnect(SourceNats)
		}),
	}

	nc, err := nats.Connect(c.config.NatsURL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	c.connMu.Lock()
	c.conn = nc
	c.connMu.Unlock()

	for _, topic := range c.topics() {
		if err := c.ensureSubscription(topic); err != nil {
			nc.Close()

			return err
		}
	}

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		c.dispatchLoop()
	}()

	return nil
}

// Stop drops all subscriptions, closes the connection, and waits for
// dispatch to drain out.
func (c *NatsChannel) Stop() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.connMu.Lock()

	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}

	c.subs = nil

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	c.connMu.Unlock()

	c.wg.Wait()

	return nil
}

// Subscribe registers the handler and, once connected, opens the NATS
// subscription for the topic.
func (c *NatsChannel) Subscribe(topic string, fn func(data []byte)) {
	c.dispatcher.Subscribe(topic, fn)

	if err := c.ensureSubscription(topic); err != nil {
		c.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to NATS subject")
	}
}

func (c *NatsChannel) ensureSubscription(topic string) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil || c.subscribed[topic] {
		return nil
	}

	sub, err := c.conn.Subscribe(topic, func(msg *nats.Msg) {
		c.enqueue(Envelope{Event: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	c.subscribed[topic] = true
	c.subs = append(c.subs, sub)

	return nil
}
