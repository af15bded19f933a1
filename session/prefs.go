package session

import (
	"encoding/json"
	"fmt"

	"campusbite/models"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Local store keys for device preferences.
const (
	ThemeKey         = "theme"
	LanguageKey      = "language"
	NotificationsKey = "notifications"
	PublicProfileKey = "isPublicProfile"
)

type NotificationSettings struct {
	OrderUpdates bool `json:"orderUpdates"`
	Promotions   bool `json:"promotions"`
	Reminders    bool `json:"reminders"`
}

// Preferences are device-local settings; they never reach the backend.
type Preferences struct {
	Theme           Theme                `json:"theme"`
	Language        string               `json:"language"`
	Notifications   NotificationSettings `json:"notifications"`
	IsPublicProfile bool                 `json:"isPublicProfile"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           ThemeLight,
		Language:        models.LanguageEnglish,
		Notifications:   NotificationSettings{OrderUpdates: true, Promotions: true, Reminders: true},
		IsPublicProfile: true,
	}
}

func (p Preferences) Validate() error {
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		return fmt.Errorf("invalid theme %q, must be light or dark", p.Theme)
	}
	if p.Language != models.LanguageEnglish && p.Language != models.LanguageAmharic {
		return fmt.Errorf("invalid language %q, must be en or am", p.Language)
	}
	return nil
}

// LoadPreferences reads preferences, falling back to the default for any
// key that is missing or unreadable.
func LoadPreferences(kv KV) (Preferences, error) {
	p := DefaultPreferences()

	if v, ok, err := kv.Get(ThemeKey); err != nil {
		return p, err
	} else if ok && (Theme(v) == ThemeLight || Theme(v) == ThemeDark) {
		p.Theme = Theme(v)
	}
	if v, ok, err := kv.Get(LanguageKey); err != nil {
		return p, err
	} else if ok && (v == models.LanguageEnglish || v == models.LanguageAmharic) {
		p.Language = v
	}
	if v, ok, err := kv.Get(NotificationsKey); err != nil {
		return p, err
	} else if ok {
		var n NotificationSettings
		if json.Unmarshal([]byte(v), &n) == nil {
			p.Notifications = n
		}
	}
	if v, ok, err := kv.Get(PublicProfileKey); err != nil {
		return p, err
	} else if ok {
		var b bool
		if json.Unmarshal([]byte(v), &b) == nil {
			p.IsPublicProfile = b
		}
	}
	return p, nil
}

func SavePreferences(kv KV, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	notifs, err := json.Marshal(p.Notifications)
	if err != nil {
		return err
	}
	public, err := json.Marshal(p.IsPublicProfile)
	if err != nil {
		return err
	}
	for key, value := range map[string]string{
		ThemeKey:         string(p.Theme),
		LanguageKey:      p.Language,
		NotificationsKey: string(notifs),
		PublicProfileKey: string(public),
	} {
		if err := kv.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
