package thingy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/pkg/transport"
)

// connectedClient builds a client already attached to the given fake link.
func connectedClient(t *testing.T, link *fakeLink, opts *Options) *Client {
	t.Helper()
	dialer := &fakeDialer{results: []dialResult{{link: link}}}
	c, _ := newTestClient(dialer, opts)
	require.NoError(t, c.Connect(context.Background(), testAddr))
	return c
}

func TestReadViaNotification(t *testing.T) {
	t.Run("returns the first payload and unsubscribes", func(t *testing.T) {
		link := newFakeLink(testAddr)
		link.setNotify(profile.TemperatureUUID, []byte{21, 50})
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		data, err := c.readViaNotification(context.Background(), s, profile.TemperatureUUID, time.Second)
		require.NoError(t, err)
		assert.Equal(t, []byte{21, 50}, data)
		assert.Equal(t, 1, link.subscribeCount())
		assert.Equal(t, 1, link.unsubscribeCount())
	})

	t.Run("timeout unsubscribes and reports ErrTimeout", func(t *testing.T) {
		link := newFakeLink(testAddr)
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		_, err = c.readViaNotification(context.Background(), s, profile.TemperatureUUID, 20*time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, transport.ErrTimeout)
		assert.Equal(t, 1, link.unsubscribeCount())
	})

	t.Run("subscribe failure releases the characteristic", func(t *testing.T) {
		link := newFakeLink(testAddr)
		link.subErr[link.key(profile.TemperatureUUID)] = errors.New("CCCD write rejected")
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		_, err = c.readViaNotification(context.Background(), s, profile.TemperatureUUID, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CCCD write rejected")
		assert.Equal(t, 1, link.unsubscribeCount())
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		link := newFakeLink(testAddr)
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = c.readViaNotification(ctx, s, profile.TemperatureUUID, time.Second)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, link.unsubscribeCount())
	})

	t.Run("link drop aborts the wait with ErrNotConnected", func(t *testing.T) {
		link := newFakeLink(testAddr)
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		go func() {
			time.Sleep(10 * time.Millisecond)
			link.drop()
		}()

		_, err = c.readViaNotification(context.Background(), s, profile.TemperatureUUID, time.Second)
		require.Error(t, err)
		assert.ErrorIs(t, err, transport.ErrNotConnected)
	})

	t.Run("same characteristic reads are serialized", func(t *testing.T) {
		link := newFakeLink(testAddr)
		c := connectedClient(t, link, nil)
		s, err := c.session()
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.readViaNotification(context.Background(), s, profile.TemperatureUUID, 10*time.Millisecond)
			}()
		}
		wg.Wait()

		link.mu.Lock()
		overlapped := link.overlapped
		link.mu.Unlock()
		assert.False(t, overlapped, "overlapping subscriptions on one characteristic")
		assert.Equal(t, 4, link.subscribeCount())
	})
}
