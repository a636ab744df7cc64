package services

import "sync"

type StreamNoticeKind uint8

const (
	// NoticeSubscriptionFault means the underlying watch connection was lost.
	// The view built from this stream is stale until NoticeResubscribed
	// arrives; it does not mean anything in the room itself changed.
	NoticeSubscriptionFault = StreamNoticeKind(iota)
	NoticeResubscribed
)

type StreamNotice struct {
	Kind   StreamNoticeKind `json:"kind"`
	Detail string           `json:"detail"`
}

// Subscription is one standing watch on a topic. The consumer reads
// snapshots from C and advisory signals from Notices, and must call Close
// when done; an unreleased subscription leaks for the process lifetime.
type Subscription[T any] struct {
	C       chan T
	Notices chan StreamNotice

	topic  string
	broker *Broker[T]
	once   sync.Once
}

// Close releases the subscription. It is idempotent, and a snapshot racing
// the release is dropped rather than delivered.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.broker.release(s)
	})
}

// Broker fans out live snapshots to the subscriptions of a topic. Delivery
// keeps the latest snapshot: when a subscriber lags, older undelivered
// snapshots are discarded in its favor.
type Broker[T any] struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription[T]]struct{}
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[string]map[*Subscription[T]]struct{}),
	}
}

func (b *Broker[T]) Subscribe(topic string) *Subscription[T] {
	sub := &Subscription[T]{
		C:       make(chan T, 8),
		Notices: make(chan StreamNotice, 4),
		topic:   topic,
		broker:  b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[topic]; !ok {
		b.subs[topic] = make(map[*Subscription[T]]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub
}

func (b *Broker[T]) Publish(topic string, snapshot T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[topic] {
		deliver(sub.C, snapshot)
	}
}

// Notify pushes an advisory signal to every subscription of every topic.
func (b *Broker[T]) Notify(notice StreamNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, subs := range b.subs {
		for sub := range subs {
			deliver(sub.Notices, notice)
		}
	}
}

func (b *Broker[T]) release(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subs, sub.topic)
		}
	}
	close(sub.C)
	close(sub.Notices)
}

func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
