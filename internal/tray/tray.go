// Package tray gives the demo host a system tray icon with "Open
// inspector" / "Exit" menu items: a systray.Run/onReady/onExit/menu-click
// loop pointed at whatever address the debug server is actually
// listening on, logging through hclog since this is library code.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"github.com/hashicorp/go-hclog"
)

// ShutdownFunc is called exactly once, when "Exit" is clicked.
type ShutdownFunc func()

// Tray manages the system tray icon and menu.
type Tray struct {
	log          hclog.Logger
	url          string
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New builds a Tray that opens url from its "Open inspector" item and
// calls shutdownFn when "Exit" is clicked.
func New(log hclog.Logger, url string, shutdownFn ShutdownFunc) *Tray {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Tray{log: log.Named("tray"), url: url, shutdownFunc: shutdownFn}
}

// Run initialises and runs the system tray; it blocks until Quit().
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() { t.onReady(iconData) }, t.onExit)
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("xidishim")
	systray.SetTooltip("xidishim inspector - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open inspector", "Open the debug inspector")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()
	t.log.Info("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info("system tray exiting")
}

func (t *Tray) openBrowser() {
	if t.shuttingDown.Load() {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		t.log.Warn("failed to open browser", "error", err)
	}
}
