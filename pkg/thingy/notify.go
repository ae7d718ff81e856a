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

// lockChar serializes one-shot notification reads per characteristic.
// Overlapping waits on the same characteristic would steal each other's
// notifications; different characteristics may proceed concurrently.
func (c *Client) lockChar(char string) func() {
	key := profile.Normalize(char)
	c.charMu.Lock()
	mu, ok := c.charLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		c.charLocks[key] = mu
	}
	c.charMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// readViaNotification turns a notify-only characteristic into a synchronous
// read: subscribe, wait for exactly one payload or a timeout, unsubscribe.
// The unsubscribe always runs, whichever branch resolves the wait.
func (c *Client) readViaNotification(ctx context.Context, s *session, char string, timeout time.Duration) ([]byte, error) {
	unlock := c.lockChar(char)
	defer unlock()

	payload := make(chan []byte, 1)
	err := s.link.Subscribe(char, func(data []byte) {
		// The transport may reuse the notification buffer; copy before
		// handing off.
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case payload <- buf:
		default:
		}
	})
	if err != nil {
		// A failed subscribe can still leave device-side state behind;
		// release it best-effort before reporting.
		_ = s.link.Unsubscribe(char)
		return nil, fmt.Errorf("subscribe to %q: %w", char, err)
	}
	defer func() {
		if err := s.link.Unsubscribe(char); err != nil {
			c.logger.WithFields(logrus.Fields{
				"char":  char,
				"error": err,
			}).Warn("Failed to unsubscribe after notification read")
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-payload:
		c.logger.WithFields(logrus.Fields{
			"char":  char,
			"bytes": len(data),
		}).Debug("Received notification")
		return data, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: waiting for notification from %q", transport.ErrTimeout, char)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.link.Disconnected():
		return nil, fmt.Errorf("%w: link dropped while waiting for %q", transport.ErrNotConnected, char)
	}
}
