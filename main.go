// Package main provides the entry point for the CellBrush application.
package main

import (
	"log"
	"os"
	"time"

	appinfra "cellbrush/internal/app"
	"cellbrush/internal/config"
	cbimage "cellbrush/internal/image"
	"cellbrush/internal/session"
	"cellbrush/internal/version"
	"cellbrush/ui/mainwindow"
	"cellbrush/ui/prefs"

	"fyne.io/fyne/v2/app"
)

const appTitle = "CellBrush"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg := config.Load()
	appPrefs := prefs.Load()
	sess := session.New()

	fyneApp := app.NewWithID("cellbrush")
	win := mainwindow.New(fyneApp, sess, cfg, appPrefs)
	win.SetTitle(appTitle)

	// Handle command line arguments
	for _, path := range os.Args[1:] {
		if !cbimage.IsSupportedFormat(path) {
			log.Printf("Skipping unsupported file %s", path)
			continue
		}
		dec, err := cbimage.Load(path)
		if err != nil {
			log.Printf("Failed to load image %s: %v", path, err)
			continue
		}
		sess.AddImage(session.NewProjectImage(dec))
	}

	setupHotReload(win)

	win.SetOnClosed(win.SavePreferences)
	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled, plus periodic preference autosave.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := appinfra.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		win.SavePreferencesIfChanged()
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		win.PromptRestart(func(restart bool) {
			if restart {
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			} else {
				reloader.ResetBaseline()
				reloader.Start()
			}
		})
	})

	reloader.Start()
}
