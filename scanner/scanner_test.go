package scanner

import (
	"testing"
	"time"

	"github.com/cornelk/hashmap"
	blelib "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/thingy52/internal/profile"
)

// fakeAdv is a canned ble.Advertisement.
type fakeAdv struct {
	addr        string
	name        string
	rssi        int
	txPower     int
	connectable bool
	services    []blelib.UUID
}

func (a *fakeAdv) LocalName() string                 { return a.name }
func (a *fakeAdv) ManufacturerData() []byte          { return nil }
func (a *fakeAdv) ServiceData() []blelib.ServiceData { return nil }
func (a *fakeAdv) Services() []blelib.UUID           { return a.services }
func (a *fakeAdv) OverflowService() []blelib.UUID    { return nil }
func (a *fakeAdv) TxPowerLevel() int                 { return a.txPower }
func (a *fakeAdv) Connectable() bool                 { return a.connectable }
func (a *fakeAdv) SolicitedService() []blelib.UUID   { return nil }
func (a *fakeAdv) RSSI() int                         { return a.rssi }
func (a *fakeAdv) Addr() blelib.Addr                 { return blelib.NewAddr(a.addr) }

func thingyAdv(addr string, rssi int) *fakeAdv {
	return &fakeAdv{addr: addr, name: "Thingy", rssi: rssi, connectable: true}
}

// testScanner returns a scanner primed as if a scan had just started.
func testScanner(opts *Options) *Scanner {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	s := New(logger)
	s.devices = hashmap.New[string, *entry]()
	if opts == nil {
		opts = DefaultOptions()
	}
	s.opts = opts
	return s
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 10*time.Second, opts.Duration)
	assert.True(t, opts.DuplicateFilter)
	assert.True(t, opts.ThingyOnly)
	assert.Nil(t, opts.AllowList)
	assert.Nil(t, opts.BlockList)
}

func TestIsThingy(t *testing.T) {
	tests := []struct {
		name string
		adv  *fakeAdv
		want bool
	}{
		{
			name: "matches by advertised name",
			adv:  &fakeAdv{addr: "aa:bb:cc:dd:ee:ff", name: "Thingy"},
			want: true,
		},
		{
			name: "matches lowercase name",
			adv:  &fakeAdv{addr: "aa:bb:cc:dd:ee:ff", name: "my thingy 52"},
			want: true,
		},
		{
			name: "matches by vendor service uuid",
			adv: &fakeAdv{
				addr:     "aa:bb:cc:dd:ee:ff",
				name:     "nameless",
				services: []blelib.UUID{blelib.MustParse(profile.EnvironmentServiceUUID)},
			},
			want: true,
		},
		{
			name: "other peripheral",
			adv: &fakeAdv{
				addr:     "aa:bb:cc:dd:ee:ff",
				name:     "Fitness Tracker",
				services: []blelib.UUID{blelib.MustParse("180F")},
			},
			want: false,
		},
		{
			name: "anonymous advertisement",
			adv:  &fakeAdv{addr: "aa:bb:cc:dd:ee:ff"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isThingy(tt.adv))
		})
	}
}

func TestShouldInclude(t *testing.T) {
	thingy := thingyAdv("aa:bb:cc:dd:ee:ff", -45)
	other := &fakeAdv{addr: "11:22:33:44:55:66", name: "Headphones"}

	t.Run("thingy-only filter", func(t *testing.T) {
		opts := DefaultOptions()
		assert.True(t, shouldInclude(thingy, opts))
		assert.False(t, shouldInclude(other, opts))
	})

	t.Run("thingy-only disabled admits everything", func(t *testing.T) {
		opts := &Options{}
		assert.True(t, shouldInclude(other, opts))
	})

	t.Run("block list wins over everything", func(t *testing.T) {
		opts := DefaultOptions()
		opts.BlockList = []string{thingy.addr}
		assert.False(t, shouldInclude(thingy, opts))
	})

	t.Run("allow list excludes unlisted devices", func(t *testing.T) {
		opts := &Options{AllowList: []string{"11:22:33:44:55:66"}}
		assert.False(t, shouldInclude(thingy, opts))
		assert.True(t, shouldInclude(other, opts))
	})
}

func TestHandleAdvertisement(t *testing.T) {
	t.Run("new device emits EventNew", func(t *testing.T) {
		s := testScanner(nil)

		s.HandleAdvertisement(thingyAdv("aa:bb:cc:dd:ee:ff", -45))

		devices := s.Devices()
		require.Len(t, devices, 1)
		assert.Equal(t, "Thingy", devices[0].Name)
		assert.Equal(t, -45, devices[0].RSSI)
		assert.True(t, devices[0].Thingy)
		assert.Equal(t, 1, devices[0].AdvCount)

		ev := <-s.Events()
		assert.Equal(t, EventNew, ev.Type)
		assert.Equal(t, "aa:bb:cc:dd:ee:ff", ev.Device.Address)
	})

	t.Run("repeat advertisement updates in place", func(t *testing.T) {
		s := testScanner(nil)

		s.HandleAdvertisement(thingyAdv("aa:bb:cc:dd:ee:ff", -45))
		s.HandleAdvertisement(thingyAdv("aa:bb:cc:dd:ee:ff", -60))

		devices := s.Devices()
		require.Len(t, devices, 1)
		assert.Equal(t, -60, devices[0].RSSI)
		assert.Equal(t, 2, devices[0].AdvCount)

		<-s.Events()
		ev := <-s.Events()
		assert.Equal(t, EventUpdated, ev.Type)
		assert.Equal(t, -60, ev.Device.RSSI)
	})

	t.Run("filtered devices are never registered", func(t *testing.T) {
		s := testScanner(nil)

		s.HandleAdvertisement(&fakeAdv{addr: "11:22:33:44:55:66", name: "Headphones"})

		assert.Empty(t, s.Devices())
		select {
		case ev := <-s.Events():
			t.Fatalf("unexpected event: %+v", ev)
		default:
		}
	})

	t.Run("devices sorted by address", func(t *testing.T) {
		s := testScanner(&Options{})

		s.HandleAdvertisement(&fakeAdv{addr: "cc:00:00:00:00:00", name: "c"})
		s.HandleAdvertisement(&fakeAdv{addr: "aa:00:00:00:00:00", name: "a"})
		s.HandleAdvertisement(&fakeAdv{addr: "bb:00:00:00:00:00", name: "b"})

		devices := s.Devices()
		require.Len(t, devices, 3)
		assert.Equal(t, "aa:00:00:00:00:00", devices[0].Address)
		assert.Equal(t, "bb:00:00:00:00:00", devices[1].Address)
		assert.Equal(t, "cc:00:00:00:00:00", devices[2].Address)
	})

	t.Run("late name resolution marks a thingy", func(t *testing.T) {
		// ThingyOnly off: the first advertisement is anonymous, a later one
		// carries the name.
		s := testScanner(&Options{})

		s.HandleAdvertisement(&fakeAdv{addr: "aa:bb:cc:dd:ee:ff"})
		s.HandleAdvertisement(thingyAdv("aa:bb:cc:dd:ee:ff", -50))

		devices := s.Devices()
		require.Len(t, devices, 1)
		assert.True(t, devices[0].Thingy)
		assert.Equal(t, "Thingy", devices[0].Name)
	})
}
