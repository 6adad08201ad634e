package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventMessage is the body published to the broker for each update.
type EventMessage struct {
	Event      string `json:"event"`
	OccurredAt string `json:"occurred_at"`
}

// AMQPPublisher pushes update events onto a durable queue for downstream
// consumers (audit trails, chat bots). Broadcast only enqueues; Run does the
// publishing. A failed publish drops the connection and the next event dials
// again.
type AMQPPublisher struct {
	url    string
	queue  string
	events chan EventMessage

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{
		url:    url,
		queue:  queue,
		events: make(chan EventMessage, 64),
	}
}

// Broadcast enqueues the event; it is dropped when the queue is full.
func (p *AMQPPublisher) Broadcast(event string) {
	msg := EventMessage{
		Event:      event,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case p.events <- msg:
	default:
		log.Printf("notify_error op=amqp_enqueue queue=%s event=%s error=%q", p.queue, event, "buffer full")
	}
}

// Run publishes queued events until ctx is cancelled.
func (p *AMQPPublisher) Run(ctx context.Context) {
	defer p.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.events:
			p.publish(ctx, msg)
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, msg EventMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		log.Printf("notify_error op=amqp_dial queue=%s error=%q", p.queue, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("notify_error op=amqp_publish queue=%s event=%s error=%q", p.queue, msg.Event, err.Error())
		p.closeLocked()
	}
}

func (p *AMQPPublisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
