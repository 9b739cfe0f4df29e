package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionBus fans session changes out to whoever is watching a user's
// session. Subscribe's channel closes when ctx ends or cancel is called.
type SessionBus interface {
	Publish(ctx context.Context, ev SessionEvent) error
	Subscribe(ctx context.Context, userID string) (<-chan SessionEvent, func(), error)
}

func sessionChannel(userID string) string {
	return "session:" + userID
}

type RedisSessionBus struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewRedisSessionBus(rdb *redis.Client, log *zap.SugaredLogger) *RedisSessionBus {
	return &RedisSessionBus{rdb: rdb, log: log.With("service", "RedisSessionBus")}
}

func (b *RedisSessionBus) Publish(ctx context.Context, ev SessionEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, sessionChannel(ev.UserID), raw).Err()
}

func (b *RedisSessionBus) Subscribe(ctx context.Context, userID string) (<-chan SessionEvent, func(), error) {
	sub := b.rdb.Subscribe(ctx, sessionChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan SessionEvent, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev SessionEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warnw("bad session event payload", "err", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}

// LocalSessionBus delivers events within one process.
type LocalSessionBus struct {
	mu   sync.Mutex
	subs map[string]map[chan SessionEvent]struct{}
}

func NewLocalSessionBus() *LocalSessionBus {
	return &LocalSessionBus{subs: map[string]map[chan SessionEvent]struct{}{}}
}

func (b *LocalSessionBus) Publish(_ context.Context, ev SessionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
			// slow watcher, drop
		}
	}
	return nil
}

func (b *LocalSessionBus) Subscribe(ctx context.Context, userID string) (<-chan SessionEvent, func(), error) {
	ch := make(chan SessionEvent, 8)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = map[chan SessionEvent]struct{}{}
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], ch)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			close(ch)
			b.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}
