package systems

import (
	"testing"

	"github.com/automoto/rollback-arena/config"
)

type memStore map[string][]byte

func (m memStore) LoadItem(key string) ([]byte, error) { return m[key], nil }

func (m memStore) SaveItem(key string, data []byte) error {
	m[key] = data
	return nil
}

func TestSettingsRoundTrip(t *testing.T) {
	old := settingsStore
	t.Cleanup(func() { settingsStore = old })
	settingsStore = memStore{}

	if saved, err := LoadSettings(); saved != nil || err != nil {
		t.Fatalf("LoadSettings on empty store = %v, %v; want nil, nil", saved, err)
	}

	net := config.DefaultNet()
	net.SignalURL = "ws://example.test:9000"
	net.Room = "duel"
	SaveCurrentSettings(net)

	saved, err := LoadSettings()
	if err != nil || saved == nil {
		t.Fatalf("LoadSettings = %v, %v", saved, err)
	}

	fresh := config.DefaultNet()
	ApplySavedSettings(&fresh, saved)
	if fresh.SignalURL != net.SignalURL || fresh.Room != net.Room {
		t.Fatalf("applied = %q %q, want %q %q", fresh.SignalURL, fresh.Room, net.SignalURL, net.Room)
	}
}

func TestApplySavedSettingsKeepsDefaultsForEmptyFields(t *testing.T) {
	net := config.DefaultNet()
	ApplySavedSettings(&net, &SavedSettings{Room: "duel"})
	if net.SignalURL != config.DefaultNet().SignalURL || net.Room != "duel" {
		t.Fatalf("got %q %q", net.SignalURL, net.Room)
	}
}
