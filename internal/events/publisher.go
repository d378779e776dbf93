package events

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers domain events. Implementations must not block a request
// for long; callers log and otherwise ignore the returned error.
type Publisher interface {
    Publish(ctx context.Context, ev Event) error
}

// Nop discards every event. It is used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// DefaultPublishTimeout bounds one Publish, handshake included.
const DefaultPublishTimeout = 2 * time.Second

// AMQPPublisher publishes each event as a persistent JSON message to a
// durable queue on the default exchange.
type AMQPPublisher struct {
    URL     string
    Queue   string
    Timeout time.Duration
    Logger  *slog.Logger
}

// NewAMQPPublisher returns a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Queue: queue, Timeout: DefaultPublishTimeout, Logger: logger}
}

// Publish dials the broker, declares the queue (idempotent) and publishes ev,
// giving up after Timeout.  Every failure is logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
    err := p.publish(ctx, ev)
    if err != nil {
        p.Logger.WarnContext(ctx, "event publish failed",
            slog.String("type", ev.Type), slog.Any("error", err))
    }
    return err
}

func (p *AMQPPublisher) publish(ctx context.Context, ev Event) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    timeout := p.Timeout
    if timeout <= 0 {
        timeout = DefaultPublishTimeout
    }
    ctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    conn, err := dial(p.URL, timeout)
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := declare(ch, p.Queue); err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    // default exchange, routing key = queue name
    if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// dial bounds both the TCP connect and the AMQP handshake by timeout.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Dial:      amqp.DefaultDial(timeout),
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
    })
}

// declare makes sure the durable queue exists.
func declare(ch *amqp.Channel, queue string) error {
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
