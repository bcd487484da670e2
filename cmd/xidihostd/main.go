// Command xidihostd is the demo host: it opens an SDL3 joystick, wires it
// through engine.Controller using a configured mapping profile, and serves
// a WebSocket/HTML inspector plus a system tray icon, with cancellable-
// context/signal/tray/console-handler wiring around engine.Controller.
//
// This package calls the global log package directly; the library
// packages underneath it log through hashicorp/go-hclog, except the
// Windows build of internal/console, which also writes warnings to the
// global log and points its output at the attached console.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/soar/xidishim/engine"
	"github.com/soar/xidishim/internal/assets"
	"github.com/soar/xidishim/internal/config"
	"github.com/soar/xidishim/internal/console"
	"github.com/soar/xidishim/internal/debugserver"
	"github.com/soar/xidishim/internal/hub"
	"github.com/soar/xidishim/internal/sdlsource"
	"github.com/soar/xidishim/internal/tray"
)

func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

func main() {
	fs := pflag.NewFlagSet("xidihostd", pflag.ExitOnError)
	config.Flags(fs)
	_ = fs.Parse(os.Args[1:])

	v := config.NewViper()
	profileName := config.Resolve(v, fs)
	listenAddr, _ := fs.GetString("listen")
	logLevel, _ := fs.GetString("log-level")

	appLog := hclog.New(&hclog.LoggerOptions{
		Name:  "xidishim",
		Level: hclog.LevelFromString(logLevel),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sourceDone := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals()...)

	windowsCtrlCh := make(chan struct{}, 1)
	registerWindowsHandler := console.SetupConsoleHandler(windowsCtrlCh)

	src := sdlsource.New(appLog)

	if runtime.GOOS == "windows" {
		registerWindowsHandler()
	}

	ctrl := engine.New(0, profileName, src, engine.WithLogger(appLog))
	log.Printf("mapping profile: %s", profileName)

	h := hub.New(appLog)
	go h.Run()

	broadcaster := hub.NewBroadcaster(appLog, ctrl)
	go broadcaster.Run(h, ctx.Done())

	assetFS, err := assets.FS()
	if err != nil {
		log.Fatalf("failed to build asset filesystem: %v", err)
	}

	srv := debugserver.New(appLog, h, broadcaster, assetFS, listenAddr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	log.Printf("xidishim inspector started: http://localhost%s", listenAddr)

	shutdownRequested := make(chan struct{})
	consoleMode := console.IsRunningFromConsole()

	if runtime.GOOS == "windows" && !consoleMode {
		go func() {
			t := tray.New(appLog, "http://localhost"+listenAddr, func() {
				close(shutdownRequested)
			})
			t.Run(tray.GetIcon())
		}()
	} else {
		if runtime.GOOS == "windows" {
			log.Println("running in console mode. Press Ctrl+C or Ctrl+Break to exit.")
		} else {
			log.Println("press Ctrl+C to exit")
		}
	}

	go func() {
		src.Run(ctx)
		close(sourceDone)
	}()

	select {
	case <-sigCh:
		log.Println("shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	case <-windowsCtrlCh:
		log.Println("Ctrl+C detected via Windows console handler")
		cancel()
	}

	<-sourceDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("xidishim stopped")
}
