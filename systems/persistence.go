package systems

import (
	"encoding/json"
	"log"

	"github.com/automoto/rollback-arena/config"
	"github.com/quasilyte/gdata"
)

const settingsKey = "settings"

// SavedSettings is the client configuration remembered between runs. Match
// state is never saved.
type SavedSettings struct {
	SignalURL string `json:"signalURL"`
	Room      string `json:"room"`
}

// itemStore is the part of *gdata.Manager the settings need.
type itemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

var settingsStore itemStore

// InitPersistence opens the per-user data directory for settings storage.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: "rollback_arena",
	})
	if err != nil {
		return err
	}
	settingsStore = m
	return nil
}

// LoadSettings returns the saved settings, or nil if there are none or
// persistence is unavailable.
func LoadSettings() (*SavedSettings, error) {
	if settingsStore == nil {
		return nil, nil
	}

	data, err := settingsStore.LoadItem(settingsKey)
	if err != nil {
		log.Printf("Warning: Could not load settings: %v", err)
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var settings SavedSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("Warning: Could not parse saved settings: %v", err)
		return nil, err
	}
	return &settings, nil
}

func SaveSettings(s *SavedSettings) error {
	if settingsStore == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := settingsStore.SaveItem(settingsKey, data); err != nil {
		log.Printf("Warning: Could not save settings: %v", err)
		return err
	}
	return nil
}

// SaveCurrentSettings remembers the signaling address and room in use.
func SaveCurrentSettings(net config.NetConfig) {
	_ = SaveSettings(&SavedSettings{SignalURL: net.SignalURL, Room: net.Room})
}

// ApplySavedSettings copies non-empty saved fields over net.
func ApplySavedSettings(net *config.NetConfig, saved *SavedSettings) {
	if saved == nil {
		return
	}
	if saved.SignalURL != "" {
		net.SignalURL = saved.SignalURL
	}
	if saved.Room != "" {
		net.Room = saved.Room
	}
}
