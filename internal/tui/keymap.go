package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the board bindings shown in the help bubble.
type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	nextField   key.Binding
	prevField   key.Binding
	submit      key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	grab        key.Binding
	cancel      key.Binding
	activityLog key.Binding
	itemInfo    key.Binding
	copyID      key.Binding
}

// KeyConfig carries user overrides for the remappable bindings. Blank fields
// keep the defaults.
type KeyConfig struct {
	ActivityLog string
	ItemInfo    string
	CopyID      string
	Grab        string
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prevField:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add project")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "project up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "project down")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		grab:        key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab / drop")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		activityLog: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "activity log")),
		itemInfo:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "project info")),
		copyID:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
	}
}

// applyConfig rebinds the remappable keys.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.activityLog, cfg.ActivityLog, "g", "activity log")
	configureBinding(&k.itemInfo, cfg.ItemInfo, "i", "project info")
	configureBinding(&k.copyID, cfg.CopyID, "y", "copy id")
	configureBinding(&k.grab, cfg.Grab, "space", "grab / drop")
}

// configureBinding replaces the keys and help of b.
func configureBinding(b *key.Binding, value, fallback, desc string) {
	keys, help := parseBindingKeys(value, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher strings and a help label.
func parseBindingKeys(value, fallback string) ([]string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	runes := []rune(value)
	if len(runes) == 1 {
		r := runes[0]
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp returns the bindings for the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextField, k.submit, k.grab, k.activityLog, k.itemInfo, k.toggleHelp, k.quit}
}

// FullHelp returns the grouped bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextField, k.prevField, k.submit, k.toggleHelp, k.quit},
		{k.moveUp, k.moveDown, k.moveLeft, k.moveRight},
		{k.grab, k.cancel, k.activityLog, k.itemInfo, k.copyID},
	}
}
