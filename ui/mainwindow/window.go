// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"cellbrush/internal/annotation"
	"cellbrush/internal/config"
	"cellbrush/internal/detect"
	cbimage "cellbrush/internal/image"
	"cellbrush/internal/paint"
	"cellbrush/internal/session"
	"cellbrush/internal/transform"
	"cellbrush/ui/canvas"
	"cellbrush/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	demoWidth  = 800
	demoHeight = 600
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	sess   *session.Session
	engine *paint.Engine
	cfg    *config.Config
	prefs  *prefs.Prefs

	canvas    *canvas.AnnotationCanvas
	gallery   *widget.List
	statusBar *widget.Label
	targetBox *widget.Entry
	detectBtn *widget.Button

	detector *detect.Client
	slot     *detect.RequestSlot
}

// New creates the main window.
func New(fyneApp fyne.App, sess *session.Session, cfg *config.Config, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("CellBrush")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		sess:   sess,
		engine: paint.NewEngine(),
		cfg:    cfg,
		prefs:  appPrefs,
		slot:   detect.NewRequestSlot(),
	}

	mw.engine.SetBrushSize(appPrefs.FloatWithFallback(prefs.KeyBrushSize, paint.DefaultBrushSize))

	client, err := detect.NewClient(cfg.OllamaHost, appPrefs.StringWithFallback(prefs.KeyModel, cfg.Model))
	if err != nil {
		log.Printf("Detection client unavailable: %v", err)
	} else {
		mw.detector = client
	}

	mw.setupUI()
	mw.setupEventHandlers()
	win.Resize(fyne.NewSize(1100, 720))
	return mw
}

// setupUI creates the main layout: gallery | toolbar-over-canvas.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.sess, mw.engine)
	mw.statusBar = widget.NewLabel("Ready")

	mw.gallery = widget.NewList(
		func() int { return len(mw.sess.Images()) },
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(48, 48))
			return container.NewBorder(nil, nil, thumb, nil, widget.NewLabel(""))
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			images := mw.sess.Images()
			if i >= len(images) {
				return
			}
			box := obj.(*fyne.Container)
			label := box.Objects[0].(*widget.Label)
			label.SetText(images[i].Name)
			thumb := box.Objects[1].(*fynecanvas.Image)
			thumb.Image = images[i].Thumb
			thumb.Refresh()
		},
	)
	mw.gallery.OnSelected = func(i widget.ListItemID) {
		images := mw.sess.Images()
		if i < len(images) {
			mw.sess.Activate(images[i].ID)
		}
	}

	galleryPane := container.NewBorder(
		widget.NewLabel("Images"),
		container.NewVBox(
			widget.NewButton("Add Image...", mw.onOpenImage),
			widget.NewButton("Demo Image", mw.onAddDemo),
			widget.NewButton("Delete", mw.onDeleteActive),
		),
		nil, nil,
		mw.gallery,
	)

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil, nil, nil,
		mw.canvas,
	)

	split := container.NewHSplit(galleryPane, canvasArea)
	split.SetOffset(0.22)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar builds the tool, brush, zoom, detection, and export rows.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	tools := widget.NewRadioGroup([]string{"Pan", "Brush", "Eraser"}, func(sel string) {
		switch sel {
		case "Brush":
			mw.engine.SetTool(paint.ToolBrush)
		case "Eraser":
			mw.engine.SetTool(paint.ToolEraser)
		default:
			mw.engine.SetTool(paint.ToolPan)
		}
		mw.prefs.SetString(prefs.KeyTool, mw.engine.Tool().String())
		mw.setStatus(fmt.Sprintf("Tool: %s", mw.engine.Tool()))
	})
	tools.Horizontal = true
	tools.SetSelected(mw.prefs.StringWithFallback(prefs.KeyTool, "Pan"))

	brushSlider := widget.NewSlider(1, 200)
	brushSlider.SetValue(mw.engine.BrushSize())
	brushSlider.OnChanged = func(v float64) {
		mw.engine.SetBrushSize(v)
		mw.prefs.SetFloat(prefs.KeyBrushSize, v)
	}

	zoomOut := widget.NewButton("-", func() { mw.sess.ZoomBy(1 / transform.ZoomStep) })
	zoomIn := widget.NewButton("+", func() { mw.sess.ZoomBy(transform.ZoomStep) })

	mw.targetBox = widget.NewEntry()
	mw.targetBox.SetText(mw.prefs.StringWithFallback(prefs.KeyTarget, mw.cfg.DefaultTarget))
	mw.targetBox.SetPlaceHolder("what to detect")

	mw.detectBtn = widget.NewButton("Detect", mw.onDetect)

	exportBtn := widget.NewButton("Export", mw.onExport)

	return container.NewVBox(
		container.NewHBox(
			tools,
			widget.NewSeparator(),
			widget.NewLabel("Brush:"),
			brushSlider,
			widget.NewSeparator(),
			widget.NewLabel("Zoom:"),
			zoomOut, zoomIn,
		),
		container.NewBorder(nil, nil,
			widget.NewLabel("Target:"),
			container.NewHBox(mw.detectBtn, exportBtn),
			mw.targetBox,
		),
	)
}

// setupEventHandlers wires session events to UI updates.
func (mw *MainWindow) setupEventHandlers() {
	mw.sess.On(session.EventImagesChanged, func(interface{}) {
		mw.gallery.Refresh()
	})
	mw.sess.On(session.EventImageActivated, func(data interface{}) {
		if img, ok := data.(*session.ProjectImage); ok && img != nil {
			mw.setStatus(fmt.Sprintf("%s (%dx%d)", img.Name, img.Width, img.Height))
		} else {
			mw.setStatus("No image")
		}
	})
	mw.sess.On(session.EventAnnotationsChanged, func(interface{}) {
		mw.setStatus(fmt.Sprintf("%d annotations", len(mw.sess.Annotations())))
	})
}

func (mw *MainWindow) setStatus(text string) {
	mw.statusBar.SetText(text)
}

// onOpenImage prompts for an image file and adds it to the session.
func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		dec, err := cbimage.Decode(reader.URI().Name(), reader)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.sess.AddImage(session.NewProjectImage(dec))
		mw.setStatus(fmt.Sprintf("Loaded %s (%dx%d)", dec.Name, dec.Width, dec.Height))
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(cbimage.SupportedFormats()))
	fd.Show()
}

// onAddDemo seeds a synthetic specimen image.
func (mw *MainWindow) onAddDemo() {
	img := cbimage.DemoSpecimen(demoWidth, demoHeight)
	rec := session.NewProjectImage(&cbimage.Decoded{
		Name:   fmt.Sprintf("demo-%d.png", len(mw.sess.Images())+1),
		Img:    img,
		Width:  demoWidth,
		Height: demoHeight,
	})
	mw.sess.AddImage(rec)
}

// onDeleteActive removes the active image after confirmation.
func (mw *MainWindow) onDeleteActive() {
	active := mw.sess.Active()
	if active == nil {
		mw.setStatus("No image to delete")
		return
	}
	dialog.ShowConfirm("Delete Image",
		fmt.Sprintf("Remove %q and its annotations?", active.Name),
		func(ok bool) {
			if ok {
				mw.sess.DeleteImage(active.ID)
			}
		}, mw.Window)
}

// onDetect runs the remote detection for the active image. Only one
// request may be in flight; further triggers are rejected until it
// completes.
func (mw *MainWindow) onDetect() {
	active := mw.sess.Active()
	if active == nil {
		dialog.ShowInformation("Detect", "Load an image first.", mw.Window)
		return
	}
	if mw.detector == nil {
		dialog.ShowError(fmt.Errorf("detection client is not configured"), mw.Window)
		return
	}
	if !mw.slot.Begin() {
		mw.setStatus("Detection already running")
		return
	}

	target := mw.targetBox.Text
	if target == "" {
		target = mw.cfg.DefaultTarget
	}
	mw.prefs.SetString(prefs.KeyTarget, target)

	mw.detectBtn.Disable()
	mw.setStatus(fmt.Sprintf("Detecting %q...", target))

	imgBytes, err := cbimage.EncodePNG(active.Source)
	if err != nil {
		mw.slot.Finish(err)
		mw.slot.Reset()
		mw.detectBtn.Enable()
		dialog.ShowError(err, mw.Window)
		return
	}

	imageID := active.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(mw.cfg.TimeoutSeconds)*time.Second)
		defer cancel()

		regions, err := mw.detector.Detect(ctx, imgBytes, target)
		mw.slot.Finish(err)

		if err != nil {
			// State is left exactly as before the request.
			log.Printf("Detection failed: %v", err)
			dialog.ShowError(fmt.Errorf("detection failed: %w", err), mw.Window)
			mw.setStatus("Detection failed")
		} else {
			// Results land on the image the request was made for, even if
			// the user switched away meanwhile.
			mw.sess.MergeDetections(imageID, regions)
			mw.setStatus(fmt.Sprintf("Detected %d regions", len(regions)))
		}

		mw.slot.Reset()
		mw.detectBtn.Enable()
	}()
}

// onExport snapshots the active image and offers the export formats.
func (mw *MainWindow) onExport() {
	active := mw.sess.Active()
	if active == nil {
		dialog.ShowError(fmt.Errorf("no image to export"), mw.Window)
		return
	}
	// Export reflects in-progress edits without forcing a switch.
	mw.sess.SnapshotActive()

	items := []*fyne.MenuItem{
		fyne.NewMenuItem("Annotations (JSON)", func() { mw.exportJSON(active) }),
		fyne.NewMenuItem("Annotations (CSV)", func() { mw.exportCSV(active) }),
		fyne.NewMenuItem("Mask (PNG)", func() { mw.exportMask(active) }),
	}
	menu := fyne.NewMenu("Export", items...)
	pop := widget.NewPopUpMenu(menu, mw.Canvas())
	pop.ShowAtPosition(fyne.NewPos(200, 100))
}

func (mw *MainWindow) exportJSON(img *session.ProjectImage) {
	data, err := annotation.MarshalJSONExport(img.Name, img.Width, img.Height, img.Annotations, img.MaskData)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.saveToFile(img.Name+".json", data)
}

func (mw *MainWindow) exportCSV(img *session.ProjectImage) {
	var buf bytes.Buffer
	if err := annotation.WriteCSV(&buf, img.Annotations); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.saveToFile(img.Name+".csv", buf.Bytes())
}

func (mw *MainWindow) exportMask(img *session.ProjectImage) {
	data, err := annotation.DecodeMaskPNG(img.MaskData)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.saveToFile(img.Name+"_mask.png", data)
}

// saveToFile prompts for a destination and writes the data.
func (mw *MainWindow) saveToFile(suggested string, data []byte) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.setStatus(fmt.Sprintf("Exported %s", writer.URI().Name()))
	}, mw.Window)
	fd.SetFileName(suggested)
	fd.Show()
}

// SavePreferences flushes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// SavePreferencesIfChanged flushes preferences only when something changed
// since the last save. Safe to call from a background goroutine.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if mw.prefs.Dirty() {
		mw.SavePreferences()
	}
}

// PromptRestart asks whether to restart into a newly built binary and
// reports the choice to the callback.
func (mw *MainWindow) PromptRestart(decided func(restart bool)) {
	dialog.ShowConfirm("New Version Available",
		"The application binary has been updated.\nRestart now?",
		decided, mw.Window)
}
