package style

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Gold   = lipgloss.Color("#F5B400") // Primary highlight
	Ember  = lipgloss.Color("#FF6B1B") // Accent
	Yellow = lipgloss.Color("#FFD166") // Warnings, pending
	Green  = lipgloss.Color("#2AFFAA") // Success, profit
	Red    = lipgloss.Color("#FF5555") // Errors, loss
	Blue   = lipgloss.Color("#3B82F6") // User purchases
	Orange = lipgloss.Color("#FB923C") // User sells
	Purple = lipgloss.Color("#8B5CF6") // Fees

	Base03 = lipgloss.Color("#14110F") // Background
	Base02 = lipgloss.Color("#241E1A") // Darker background
	Base01 = lipgloss.Color("#7A6F66") // Muted text
	Base2  = lipgloss.Color("#F2ECE6") // Primary text
	Base1  = lipgloss.Color("#C8BDB2") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	MirrorBuy lipgloss.Color
	UserBuy   lipgloss.Color
	UserSell  lipgloss.Color
	Fee       lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Gold,
		Secondary: Ember,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		MirrorBuy: Green,
		UserBuy:   Blue,
		UserSell:  Orange,
		Fee:       Purple,
	}
}

// EventColor picks the color used for a copy-trading event type
func EventColor(eventType string) lipgloss.Color {
	p := DefaultPalette()
	switch eventType {
	case "tracked_wallet_purchase":
		return p.MirrorBuy
	case "user_purchase":
		return p.UserBuy
	case "user_sell":
		return p.UserSell
	case "admin_fee":
		return p.Fee
	default:
		return p.TextMuted
	}
}

// StatusColor picks the color for a log status
func StatusColor(status string) lipgloss.Color {
	p := DefaultPalette()
	switch status {
	case "success":
		return p.Success
	case "failed":
		return p.Error
	default:
		return p.Warning
	}
}
