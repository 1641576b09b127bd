package viewmodel

import (
	"context"
	"sync"
)

// Topic names a cached collection.
type Topic string

const (
	TopicGames  Topic = "games"
	TopicOrders Topic = "orders"
)

// Bus carries cache-invalidation signals. A mutation publishes the topics it
// made stale and every cache holding them reloads from the service.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic]map[int]func(context.Context)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]func(context.Context))}
}

// Subscribe calls fn whenever topic is invalidated.
func (b *Bus) Subscribe(topic Topic, fn func(ctx context.Context)) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func(context.Context))
	}
	b.subs[topic][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[topic], id)
		b.mu.Unlock()
	}
}

// Publish invalidates topics. Subscribers run synchronously on the caller's
// goroutine.
func (b *Bus) Publish(ctx context.Context, topics ...Topic) {
	var fns []func(context.Context)
	b.mu.Lock()
	for _, topic := range topics {
		for _, fn := range b.subs[topic] {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
