package thingy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/pkg/transport"
)

// writeOp records one characteristic write observed by a fake link.
type writeOp struct {
	char  string
	data  []byte
	acked bool
}

// fakeLink is an in-memory transport.Link. Reads serve canned frames,
// writes are recorded, and Subscribe can auto-deliver a canned notification
// to exercise the full notification-read path.
type fakeLink struct {
	addr string

	mu           sync.Mutex
	reads        map[string][]byte
	readErr      map[string]error
	subErr       map[string]error
	notifyOn     map[string][]byte // payload delivered right after Subscribe
	writes       []writeOp
	handlers     map[string]transport.NotificationHandler
	subscribes   []string
	unsubscribes []string
	activeSubs   map[string]bool
	overlapped   bool // double-subscribe on the same characteristic observed

	closed       bool
	disconnected chan struct{}
	closeOnce    sync.Once
}

func newFakeLink(addr string) *fakeLink {
	return &fakeLink{
		addr:         addr,
		reads:        make(map[string][]byte),
		readErr:      make(map[string]error),
		subErr:       make(map[string]error),
		notifyOn:     make(map[string][]byte),
		handlers:     make(map[string]transport.NotificationHandler),
		activeSubs:   make(map[string]bool),
		disconnected: make(chan struct{}),
	}
}

func (l *fakeLink) key(char string) string { return profile.Normalize(char) }

func (l *fakeLink) setRead(char string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads[l.key(char)] = data
}

func (l *fakeLink) setNotify(char string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifyOn[l.key(char)] = data
}

func (l *fakeLink) Addr() string { return l.addr }

func (l *fakeLink) Read(char string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, transport.ErrNotConnected
	}
	if err := l.readErr[l.key(char)]; err != nil {
		return nil, err
	}
	data, ok := l.reads[l.key(char)]
	if !ok {
		return nil, fmt.Errorf("no canned read for %q", char)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (l *fakeLink) Write(char string, data []byte, withResponse bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return transport.ErrNotConnected
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	l.writes = append(l.writes, writeOp{char: l.key(char), data: buf, acked: withResponse})
	return nil
}

func (l *fakeLink) Subscribe(char string, h transport.NotificationHandler) error {
	l.mu.Lock()
	key := l.key(char)
	if l.closed {
		l.mu.Unlock()
		return transport.ErrNotConnected
	}
	if err := l.subErr[key]; err != nil {
		l.mu.Unlock()
		return err
	}
	if l.activeSubs[key] {
		l.overlapped = true
	}
	l.activeSubs[key] = true
	l.handlers[key] = h
	l.subscribes = append(l.subscribes, key)
	payload, auto := l.notifyOn[key]
	l.mu.Unlock()

	if auto {
		go h(payload)
	}
	return nil
}

func (l *fakeLink) Unsubscribe(char string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := l.key(char)
	l.unsubscribes = append(l.unsubscribes, key)
	if l.closed {
		return transport.ErrNotConnected
	}
	l.activeSubs[key] = false
	delete(l.handlers, key)
	return nil
}

// notify delivers a payload to the currently subscribed handler, if any.
func (l *fakeLink) notify(char string, data []byte) {
	l.mu.Lock()
	h := l.handlers[l.key(char)]
	l.mu.Unlock()
	if h != nil {
		h(data)
	}
}

func (l *fakeLink) Disconnected() <-chan struct{} { return l.disconnected }

// drop simulates the peripheral dropping the link.
func (l *fakeLink) drop() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.closeOnce.Do(func() { close(l.disconnected) })
}

func (l *fakeLink) Close() error {
	l.drop()
	return nil
}

func (l *fakeLink) writesSnapshot() []writeOp {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]writeOp, len(l.writes))
	copy(out, l.writes)
	return out
}

func (l *fakeLink) subscribeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subscribes)
}

func (l *fakeLink) unsubscribeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.unsubscribes)
}

func (l *fakeLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// fakeDialer scripts Dial results. With a dialFn set, every call is routed
// there; otherwise results are consumed from the queue in order, and the
// last entry repeats once the queue is exhausted.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	dialFn  func(ctx context.Context, addr string, timeout time.Duration) (transport.Link, error)
	calls   int
}

type dialResult struct {
	link *fakeLink
	err  error
}

func (d *fakeDialer) Dial(ctx context.Context, addr string, timeout time.Duration) (transport.Link, error) {
	d.mu.Lock()
	d.calls++
	fn := d.dialFn
	var res dialResult
	if fn == nil {
		if len(d.results) == 0 {
			d.mu.Unlock()
			return nil, fmt.Errorf("fake dialer: no scripted result")
		}
		res = d.results[0]
		if len(d.results) > 1 {
			d.results = d.results[1:]
		}
	}
	d.mu.Unlock()

	if fn != nil {
		return fn(ctx, addr, timeout)
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.link, nil
}

func (d *fakeDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// testLogger returns a quiet logger so test output stays readable.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newTestClient builds a client over the dialer with instant settle pauses.
// The returned delay slice records every backoff delay the reconnect
// supervisor requested.
func newTestClient(d transport.Dialer, opts *Options) (*Client, *delayRecorder) {
	c := NewClient(d, opts, testLogger())
	rec := &delayRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

// delayRecorder is a sleep seam that records requested delays and returns
// immediately (or honors context cancellation when blocking is enabled).
type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	block  bool
}

func (r *delayRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	block := r.block
	r.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (r *delayRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

func (r *delayRecorder) setBlocking(block bool) {
	r.mu.Lock()
	r.block = block
	r.mu.Unlock()
}
