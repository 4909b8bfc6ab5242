package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: testNow} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingFeed struct {
	mu     sync.Mutex
	events []FeedEvent
}

func (f *recordingFeed) PublishFeedEvent(_ context.Context, event FeedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
	return nil
}

func (f *recordingFeed) Events() []FeedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedEvent(nil), f.events...)
}

// signingLinker mimics a blob store that hands out short-lived links: every
// call produces a new URL for the same reference.
type signingLinker struct {
	mu    sync.Mutex
	calls int
}

func (l *signingLinker) LinkRefs(_ context.Context, refs []string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = fmt.Sprintf("https://signed.example.com/%s?sig=%d", ref, l.calls)
	}
	return urls, nil
}
