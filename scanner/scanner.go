// Package scanner implements BLE discovery of Thingy:52 peripherals.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	blelib "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/internal/ringchan"
	"github.com/srg/thingy52/pkg/transport"
)

// ProgressCallback is called when the scan phase changes
type ProgressCallback func(phase string)

// EventType marks if the device was newly discovered or updated
type EventType int

const (
	EventNew EventType = iota
	EventUpdated
)

// Event is one discovery event streamed while a scan runs.
type Event struct {
	Type   EventType
	Device Discovery
}

// Discovery is the accumulated view of one advertising peripheral.
type Discovery struct {
	Address     string
	Name        string
	RSSI        int
	TxPower     int
	Connectable bool
	Services    []string
	Thingy      bool
	FirstSeen   time.Time
	LastSeen    time.Time
	AdvCount    int
}

// entry guards one Discovery; advertisements for the same address may arrive
// from concurrent HCI callbacks.
type entry struct {
	mu sync.Mutex
	d  Discovery
}

func (e *entry) snapshot() Discovery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.d
}

func (e *entry) update(adv blelib.Advertisement) Discovery {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name := adv.LocalName(); name != "" {
		e.d.Name = name
	}
	e.d.RSSI = adv.RSSI()
	e.d.LastSeen = time.Now()
	e.d.AdvCount++
	if !e.d.Thingy {
		e.d.Thingy = isThingy(adv)
	}
	return e.d
}

// Scanner handles BLE discovery of nearby peripherals.
type Scanner struct {
	devices *hashmap.Map[string, *entry]
	events  *ringchan.Ring[Event]
	logger  *logrus.Logger

	mu   sync.Mutex
	opts *Options
}

// Options configures scanning behavior
type Options struct {
	Duration        time.Duration // 0 = scan until ctx is done
	DuplicateFilter bool
	ThingyOnly      bool
	AllowList       []string
	BlockList       []string
}

// DefaultOptions returns default scanning options: a bounded scan reporting
// only Thingy peripherals.
func DefaultOptions() *Options {
	return &Options{
		Duration:        10 * time.Second,
		DuplicateFilter: true,
		ThingyOnly:      true,
	}
}

// New creates a scanner. A nil logger falls back to a default one.
func New(logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scanner{
		events: ringchan.New[Event](100),
		logger: logger,
	}
}

// Scan performs BLE discovery with the provided options and returns the
// devices seen, keyed by address.
func (s *Scanner) Scan(ctx context.Context, opts *Options, progressCallback ProgressCallback) (map[string]Discovery, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if progressCallback == nil {
		progressCallback = func(string) {} // No-op callback
	}

	s.mu.Lock()
	s.devices = hashmap.New[string, *entry]()
	s.opts = opts
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"duration":    opts.Duration,
		"thingy_only": opts.ThingyOnly,
	}).Info("Starting BLE scan...")

	progressCallback("Scanning")

	dev, err := transport.DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", err)
	}

	scanCtx := ctx
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	err = dev.Scan(scanCtx, opts.DuplicateFilter, s.HandleAdvertisement)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	progressCallback("Processing results")

	devices := s.Devices()
	s.logger.WithField("device_count", len(devices)).Info("BLE scan completed")

	out := make(map[string]Discovery, len(devices))
	for _, d := range devices {
		out[d.Address] = d
	}
	return out, nil
}

// FindThingy scans until the first Thingy peripheral shows up and returns
// it. The wait is bounded by ctx.
func (s *Scanner) FindThingy(ctx context.Context) (Discovery, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan Discovery, 1)
	go func() {
		for {
			select {
			case ev := <-s.Events():
				if ev.Device.Thingy {
					select {
					case found <- ev.Device:
					default:
					}
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	opts := DefaultOptions()
	opts.Duration = 0 // bounded by ctx
	if _, err := s.Scan(ctx, opts, nil); err != nil {
		return Discovery{}, err
	}

	select {
	case d := <-found:
		s.logger.WithFields(logrus.Fields{
			"device":  d.Name,
			"address": d.Address,
		}).Info("Found Thingy device")
		return d, nil
	default:
		return Discovery{}, fmt.Errorf("no Thingy device found")
	}
}

// HandleAdvertisement updates an existing device or registers a new one and
// streams the corresponding event. It is the callback handed to the BLE
// stack during Scan.
func (s *Scanner) HandleAdvertisement(adv blelib.Advertisement) {
	s.mu.Lock()
	devices := s.devices
	opts := s.opts
	s.mu.Unlock()
	if devices == nil {
		return
	}

	addr := adv.Addr().String()
	e, existing := devices.Get(addr)
	if !existing {
		if !shouldInclude(adv, opts) {
			return
		}
		e, existing = devices.GetOrInsert(addr, newEntry(adv))
	}

	event := Event{Device: e.snapshot()}
	if existing {
		event.Device = e.update(adv)
		event.Type = EventUpdated
	} else {
		s.logger.WithFields(logrus.Fields{
			"device":  event.Device.Name,
			"address": event.Device.Address,
			"rssi":    event.Device.RSSI,
			"thingy":  event.Device.Thingy,
		}).Info("Discovered new device")
		event.Type = EventNew
	}

	s.events.Send(event)
}

// Devices returns a snapshot of discovered devices sorted by address.
func (s *Scanner) Devices() []Discovery {
	s.mu.Lock()
	devices := s.devices
	s.mu.Unlock()
	if devices == nil {
		return nil
	}

	out := make([]Discovery, 0, devices.Len())
	devices.Range(func(_ string, e *entry) bool {
		out = append(out, e.snapshot())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Events returns a read-only channel of device events. Slow consumers lose
// the oldest events, never the newest.
func (s *Scanner) Events() <-chan Event {
	return s.events.C()
}

// Dropped reports how many discovery events were discarded because the
// consumer fell behind.
func (s *Scanner) Dropped() int64 {
	return s.events.Dropped()
}

func newEntry(adv blelib.Advertisement) *entry {
	now := time.Now()
	services := make([]string, 0, len(adv.Services()))
	for _, u := range adv.Services() {
		services = append(services, u.String())
	}
	return &entry{d: Discovery{
		Address:     adv.Addr().String(),
		Name:        adv.LocalName(),
		RSSI:        adv.RSSI(),
		TxPower:     adv.TxPowerLevel(),
		Connectable: adv.Connectable(),
		Services:    services,
		Thingy:      isThingy(adv),
		FirstSeen:   now,
		LastSeen:    now,
		AdvCount:    1,
	}}
}

// isThingy reports whether the advertisement identifies a Thingy:52, either
// by its advertised name or by one of the Thingy vendor service UUIDs.
func isThingy(adv blelib.Advertisement) bool {
	if profile.MatchesName(adv.LocalName()) {
		return true
	}
	for _, u := range adv.Services() {
		switch profile.Normalize(u.String()) {
		case profile.Normalize(profile.EnvironmentServiceUUID),
			profile.Normalize(profile.UIServiceUUID),
			profile.Normalize(profile.MotionServiceUUID),
			profile.Normalize(profile.SoundServiceUUID):
			return true
		}
	}
	return false
}

// shouldInclude applies the block/allow/Thingy filters.
func shouldInclude(adv blelib.Advertisement, opts *Options) bool {
	if opts == nil {
		return true
	}
	// go-ble normalizes addresses to lowercase; user-supplied lists may not.
	addr := adv.Addr().String()

	for _, blocked := range opts.BlockList {
		if strings.EqualFold(addr, blocked) {
			return false
		}
	}

	if len(opts.AllowList) > 0 {
		allowed := false
		for _, a := range opts.AllowList {
			if strings.EqualFold(addr, a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if opts.ThingyOnly && !isThingy(adv) {
		return false
	}

	return true
}
