// Package tray implements the system tray icon and menu for the shell.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

// Actions are invoked from the tray's click loop. They must not block.
type Actions struct {
	ShowApp func()
	Quit    func()
}

// Tray is the installed tray icon and its menu.
type Tray struct {
	log        *zap.SugaredLogger
	statusItem *systray.MenuItem
	showItem   *systray.MenuItem
	quitItem   *systray.MenuItem
}

var quitOnce sync.Once

// Run starts the tray host. This blocks the calling goroutine (must be main).
// onReady is called once the host can accept menu items; onExit after Quit.
func Run(onReady, onExit func()) {
	systray.Run(onReady, onExit)
}

// Quit signals the tray host to exit. Safe to call more than once.
func Quit() {
	quitOnce.Do(systray.Quit)
}

// Install adds the icon and menu. Call it once, after Run's onReady.
func Install(status string, actions Actions, log *zap.SugaredLogger) (*Tray, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	icon, err := iconBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render tray icon: %w", err)
	}

	systray.SetTemplateIcon(icon, icon)
	systray.SetTitle("")
	systray.SetTooltip(formatTooltip(status))

	header := systray.AddMenuItem("CFD Shell", "")
	header.Disable()

	t := &Tray{log: log}
	t.statusItem = systray.AddMenuItem(status, "")
	t.statusItem.Disable()

	systray.AddSeparator()

	t.showItem = systray.AddMenuItem("Show App", "Open the trading window")
	t.quitItem = systray.AddMenuItem("Quit", "Stop the service and quit")

	go t.handleClicks(actions)
	return t, nil
}

// SetStatus updates the status line and tooltip.
func (t *Tray) SetStatus(status string) {
	t.statusItem.SetTitle(status)
	systray.SetTooltip(formatTooltip(status))
}

func (t *Tray) handleClicks(actions Actions) {
	for {
		select {
		case <-t.showItem.ClickedCh:
			t.log.Debug("Tray: show app")
			if actions.ShowApp != nil {
				actions.ShowApp()
			}
		case <-t.quitItem.ClickedCh:
			t.log.Debug("Tray: quit")
			if actions.Quit != nil {
				actions.Quit()
			}
		}
	}
}

func formatTooltip(status string) string {
	return "CFD Shell: " + status
}
