package gesture

import (
	"fmt"
	"time"
)

const (
	// FooterHoldThreshold is how long the footer trigger must be held
	// before an upward drag is accepted.
	FooterHoldThreshold = 5 * time.Second
	// FooterDragThreshold is the upward drag, in device-independent
	// pixels, that must be exceeded once the footer trigger is armed.
	FooterDragThreshold = 80.0
	// LoginDragThreshold is the upward drag that reveals the login form.
	LoginDragThreshold = 100.0
	// DefaultProgressInterval targets roughly 60 progress updates a second.
	DefaultProgressInterval = 16 * time.Millisecond

	AdminLoginPath = "/admin-login"
)

// Config parameterises a Machine. The footer trigger and the login page
// share one implementation and differ only in configuration.
type Config struct {
	Name                  string
	HoldThreshold         time.Duration
	DragThreshold         float64
	RequireHoldBeforeDrag bool
	ProgressInterval      time.Duration
	UnlockPath            string
	DecoyMessage          string
	// UnlockMessage, when set, is announced as an info notice on unlock.
	UnlockMessage string
	UnlockDetail  string
}

// Footer is the hold-then-drag trigger hidden in the site footer.
func Footer(institute string) Config {
	return Config{
		Name:                  "footer",
		HoldThreshold:         FooterHoldThreshold,
		DragThreshold:         FooterDragThreshold,
		RequireHoldBeforeDrag: true,
		ProgressInterval:      DefaultProgressInterval,
		UnlockPath:            AdminLoginPath,
		DecoyMessage:          decoyMessage(institute),
	}
}

// Login is the drag-only surface on the admin login page.
func Login(institute string) Config {
	return Config{
		Name:                  "login",
		DragThreshold:         LoginDragThreshold,
		RequireHoldBeforeDrag: false,
		ProgressInterval:      DefaultProgressInterval,
		UnlockPath:            AdminLoginPath,
		DecoyMessage:          decoyMessage(institute),
		UnlockMessage:         "Secret Portal Unlocked",
		UnlockDetail:          "Authorized personnel only.",
	}
}

// Preset looks up a named configuration.
func Preset(name, institute string) (Config, bool) {
	switch name {
	case "footer":
		return Footer(institute), true
	case "login":
		return Login(institute), true
	default:
		return Config{}, false
	}
}

func (c Config) Validate() error {
	if c.DragThreshold <= 0 {
		return fmt.Errorf("gesture %q: drag threshold must be positive", c.Name)
	}
	if c.RequireHoldBeforeDrag {
		if c.HoldThreshold <= 0 {
			return fmt.Errorf("gesture %q: hold threshold must be positive when a hold is required", c.Name)
		}
		if c.ProgressInterval <= 0 {
			return fmt.Errorf("gesture %q: progress interval must be positive", c.Name)
		}
	}
	if c.UnlockPath == "" {
		return fmt.Errorf("gesture %q: unlock path is required", c.Name)
	}
	return nil
}

func decoyMessage(institute string) string {
	if institute == "" {
		return "Thank you for visiting"
	}
	return "Thank you for visiting " + institute
}
