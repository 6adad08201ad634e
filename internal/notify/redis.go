package notify

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRelay shares update events between service instances. Broadcast
// publishes to a Redis channel; Run subscribes to the same channel and hands
// every message to the local broadcaster, so each instance's viewers see
// mutations made on any instance. Broadcast only enqueues; Run publishes.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Broadcaster
	timeout time.Duration
	events  chan string
}

func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisRelay(client *redis.Client, channel string, local Broadcaster) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		timeout: 2 * time.Second,
		events:  make(chan string, 64),
	}
}

// Broadcast enqueues the event for Run. When the queue is full the event
// goes to local viewers directly.
func (r *RedisRelay) Broadcast(event string) {
	select {
	case r.events <- event:
	default:
		log.Printf("notify_error op=redis_enqueue channel=%s event=%s error=%q", r.channel, event, "buffer full")
		r.local.Broadcast(event)
	}
}

// publish sends one event. When Redis is unreachable the event is
// delivered to local viewers directly.
func (r *RedisRelay) publish(ctx context.Context, event string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, event).Err(); err != nil {
		log.Printf("notify_error op=redis_publish channel=%s event=%s error=%q", r.channel, event, err.Error())
		r.local.Broadcast(event)
	}
}

// Run publishes queued events and relays subscribed messages until ctx is
// cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	log.Printf("notify: relaying redis channel %s", r.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			r.publish(ctx, event)
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.local.Broadcast(msg.Payload)
		}
	}
}
