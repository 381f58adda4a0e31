package ticketstore

import (
	"context"
	"sync"
)

// Feed fans out a change signal to all ticket-feed subscribers. Handlers
// publish after every ticket mutation; each subscriber re-queries and pushes
// a fresh snapshot to its client. The signal carries no payload so a slow
// subscriber can coalesce missed signals into one re-query.
type Feed struct {
	mu   sync.RWMutex
	subs map[int]chan struct{}
	next int
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan struct{})}
}

// Subscribe registers a subscriber and returns a channel that signals when
// the ticket set changed. The channel is closed when ctx ends.
func (f *Feed) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// Publish signals every subscriber that the ticket set changed. Subscribers
// with a signal already pending are skipped; one re-query covers both.
func (f *Feed) Publish() {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports the number of active subscribers.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
