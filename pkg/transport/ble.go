package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/internal/profile"
)

// DeviceFactory creates ble.Device instances (can be overridden in tests).
var DeviceFactory = func() (ble.Device, error) {
	dev, err := darwin.NewDevice()
	if err != nil {
		// Wrap Bluetooth state errors with clearer messages
		if strings.Contains(err.Error(), "central manager has invalid state") {
			if strings.Contains(err.Error(), "have=4") { // StatePoweredOff
				return nil, fmt.Errorf("Bluetooth is turned off - please enable Bluetooth and retry")
			}
			return nil, fmt.Errorf("Bluetooth is not ready - %w", err)
		}
		return nil, err
	}
	return dev, nil
}

// BLE is the go-ble backed Dialer.
type BLE struct {
	logger *logrus.Logger
}

// NewBLE creates a BLE dialer. A nil logger falls back to a default one.
func NewBLE(logger *logrus.Logger) *BLE {
	if logger == nil {
		logger = logrus.New()
	}
	return &BLE{logger: logger}
}

// Dial connects to the peripheral at addr, discovers its GATT profile and
// returns a live Link. The connect attempt is bounded by timeout and by ctx.
func (t *BLE) Dial(ctx context.Context, addr string, timeout time.Duration) (Link, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("device address is not set")
	}

	dev, err := DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", err)
	}
	ble.SetDefaultDevice(dev)

	t.logger.WithField("address", addr).Info("Connecting to BLE device...")

	dialCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := ble.Dial(dialCtx, ble.NewAddr(addr))
	if err != nil {
		if dialCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: connect to %q", ErrTimeout, addr)
		}
		return nil, fmt.Errorf("failed to connect to device %q: %w", addr, err)
	}

	bleProfile, err := client.DiscoverProfile(true)
	if err != nil {
		_ = client.CancelConnection()
		return nil, fmt.Errorf("failed to discover profile: %w", err)
	}

	chars := make(map[string]*ble.Characteristic)
	for _, svc := range bleProfile.Services {
		for _, c := range svc.Characteristics {
			chars[profile.Normalize(c.UUID.String())] = c
		}
	}

	t.logger.WithFields(logrus.Fields{
		"address":         addr,
		"services":        len(bleProfile.Services),
		"characteristics": len(chars),
	}).Info("BLE device connected")

	return &bleLink{
		addr:   addr,
		client: client,
		chars:  chars,
		logger: t.logger,
	}, nil
}

// bleLink wraps one ble.Client plus the characteristic handles discovered at
// dial time.
type bleLink struct {
	addr   string
	client ble.Client
	chars  map[string]*ble.Characteristic
	logger *logrus.Logger

	writeMutex sync.Mutex
	closed     atomic.Bool
}

func (l *bleLink) Addr() string {
	return l.addr
}

func (l *bleLink) characteristic(char string) (*ble.Characteristic, error) {
	if !l.alive() {
		return nil, fmt.Errorf("%w: link to %q is down", ErrNotConnected, l.addr)
	}
	c, ok := l.chars[profile.Normalize(char)]
	if !ok {
		return nil, &NotFoundError{Resource: "characteristic", UUID: char}
	}
	return c, nil
}

// alive reports whether the underlying client is still connected. go-ble
// closes the Disconnected channel on any link loss, including CancelConnection.
func (l *bleLink) alive() bool {
	if l.closed.Load() {
		return false
	}
	select {
	case <-l.client.Disconnected():
		return false
	default:
		return true
	}
}

func (l *bleLink) Read(char string) ([]byte, error) {
	c, err := l.characteristic(char)
	if err != nil {
		return nil, err
	}
	data, err := l.client.ReadCharacteristic(c)
	if err != nil {
		return nil, fmt.Errorf("failed to read characteristic %q: %w", char, err)
	}
	l.logger.WithFields(logrus.Fields{
		"char":  char,
		"bytes": len(data),
	}).Debug("Read characteristic")
	return data, nil
}

func (l *bleLink) Write(char string, data []byte, withResponse bool) error {
	c, err := l.characteristic(char)
	if err != nil {
		return err
	}

	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()

	if err := l.client.WriteCharacteristic(c, data, !withResponse); err != nil {
		return fmt.Errorf("failed to write characteristic %q: %w", char, err)
	}
	l.logger.WithFields(logrus.Fields{
		"char":  char,
		"bytes": len(data),
		"acked": withResponse,
	}).Debug("Wrote characteristic")
	return nil
}

func (l *bleLink) Subscribe(char string, h NotificationHandler) error {
	c, err := l.characteristic(char)
	if err != nil {
		return err
	}
	if err := l.client.Subscribe(c, false, func(data []byte) { h(data) }); err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", char, err)
	}
	l.logger.WithField("char", char).Debug("Subscribed to notifications")
	return nil
}

func (l *bleLink) Unsubscribe(char string) error {
	c, err := l.characteristic(char)
	if err != nil {
		return err
	}
	if err := l.client.Unsubscribe(c, false); err != nil {
		return fmt.Errorf("failed to unsubscribe from %q: %w", char, err)
	}
	l.logger.WithField("char", char).Debug("Unsubscribed from notifications")
	return nil
}

func (l *bleLink) Disconnected() <-chan struct{} {
	return l.client.Disconnected()
}

func (l *bleLink) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.client.CancelConnection()
	if err != nil {
		l.logger.WithError(err).Warn("BLE link closed with errors")
		return err
	}
	l.logger.WithField("address", l.addr).Info("BLE link closed")
	return nil
}
