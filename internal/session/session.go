// Package session holds the project state: the loaded images, the active
// image's live canvas state, and the viewport transform.
//
// All canvas-affecting mutations go through named methods on Session so the
// snapshot-before-switch invariant is enforced in one place, instead of
// scattered flags.
package session

import (
	goimage "image"
	"sync"

	"github.com/google/uuid"

	"cellbrush/internal/annotation"
	cbimage "cellbrush/internal/image"
	"cellbrush/internal/mask"
	"cellbrush/internal/paint"
	"cellbrush/internal/transform"
	"cellbrush/pkg/geometry"
)

// FitMargin is the fixed margin, in screen pixels, left around the image
// when the viewport is refit.
const FitMargin = 16

const (
	thumbWidth  = 96
	thumbHeight = 96
)

// ProjectImage is one loaded image with its persisted annotation state.
// Its mask/annotation fields are updated only via an explicit snapshot,
// never mutated in place while another image is active.
type ProjectImage struct {
	ID          string
	Name        string
	Source      goimage.Image
	Thumb       goimage.Image
	Width       int
	Height      int
	Annotations []annotation.Region
	MaskData    string // encoded mask blob, "" = none
}

// NewProjectImage creates a project image record from a decoded image,
// with empty annotations and no mask.
func NewProjectImage(dec *cbimage.Decoded) *ProjectImage {
	return &ProjectImage{
		ID:     uuid.NewString(),
		Name:   dec.Name,
		Source: dec.Img,
		Thumb:  cbimage.Thumbnail(dec.Img, thumbWidth, thumbHeight),
		Width:  dec.Width,
		Height: dec.Height,
	}
}

// EventType identifies session events.
type EventType int

const (
	EventImagesChanged EventType = iota
	EventImageActivated
	EventAnnotationsChanged
	EventMaskChanged
	EventTransformChanged
)

// Listener is called when an event occurs.
type Listener func(data interface{})

// Session is the ordered collection of project images plus the live state
// of the currently active one.
type Session struct {
	mu sync.RWMutex

	images   []*ProjectImage
	activeID string

	// Live canvas state for the active image. The mask layer handle is
	// owned here and handed to collaborators directly.
	maskLayer   *mask.Layer
	annotations []annotation.Region
	viewport    transform.Transform

	containerW float64
	containerH float64

	listeners map[EventType][]Listener
}

// New creates an empty session with no active image.
func New() *Session {
	return &Session{
		maskLayer: mask.NewLayer(),
		viewport:  transform.Identity(),
		listeners: make(map[EventType][]Listener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// MaskLayer returns the live mask layer handle. While the session is
// shared across goroutines, mutations must go through PaintDown/PaintMove
// or MergeDetections so they serialize under the session lock.
func (s *Session) MaskLayer() *mask.Layer {
	return s.maskLayer
}

// Viewport returns the current viewport transform.
func (s *Session) Viewport() transform.Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Images returns the ordered project image collection.
func (s *Session) Images() []*ProjectImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ProjectImage, len(s.images))
	copy(out, s.images)
	return out
}

// Active returns the active project image, or nil if none is active.
func (s *Session) Active() *ProjectImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(s.activeID)
}

// ActiveID returns the id of the active image, or "".
func (s *Session) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Annotations returns a copy of the live annotation list for the active
// image.
func (s *Session) Annotations() []annotation.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]annotation.Region, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// AddImage appends a project image to the collection. It does not
// auto-activate unless the session currently has no active image.
func (s *Session) AddImage(rec *ProjectImage) {
	if rec == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.images = append(s.images, rec)
	needsActivate := s.activeID == ""
	s.mu.Unlock()

	s.Emit(EventImagesChanged, rec)
	if needsActivate {
		s.Activate(rec.ID)
	}
}

// Activate makes the image with the given id the active one. The outgoing
// image's live mask and annotations are snapshotted into its record first;
// skipping that step would lose edits irrecoverably. Unknown ids are
// ignored.
func (s *Session) Activate(id string) {
	s.mu.Lock()
	next := s.findLocked(id)
	if next == nil {
		s.mu.Unlock()
		return
	}
	if s.activeID == id {
		s.mu.Unlock()
		return
	}

	// Snapshot the outgoing image before anything else touches the layer.
	s.snapshotLocked()

	s.activeID = id
	s.mountLocked(next)
	s.mu.Unlock()

	s.Emit(EventImageActivated, next)
	s.Emit(EventTransformChanged, nil)
	s.Emit(EventMaskChanged, nil)
}

// DeleteImage removes an image from the collection. If it was active, the
// session goes to the empty state; no neighbor is auto-selected.
func (s *Session) DeleteImage(id string) {
	s.mu.Lock()
	idx := -1
	for i, img := range s.images {
		if img.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.images = append(s.images[:idx], s.images[idx+1:]...)

	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
		s.annotations = nil
		s.maskLayer.Resize(0, 0)
		s.viewport = transform.Identity()
	}
	s.mu.Unlock()

	s.Emit(EventImagesChanged, nil)
	if wasActive {
		s.Emit(EventImageActivated, nil)
		s.Emit(EventMaskChanged, nil)
	}
}

// SnapshotActive persists the live mask and annotation list into the
// active image's record without switching, so exports reflect in-progress
// edits. A silent no-op when nothing is active.
func (s *Session) SnapshotActive() {
	s.mu.Lock()
	s.snapshotLocked()
	s.mu.Unlock()
}

// SetContainerSize records the visible container dimensions and refits the
// viewport for the active image.
func (s *Session) SetContainerSize(w, h float64) {
	s.mu.Lock()
	if w == s.containerW && h == s.containerH {
		s.mu.Unlock()
		return
	}
	s.containerW = w
	s.containerH = h
	active := s.findLocked(s.activeID)
	if active != nil {
		s.viewport = transform.FitToContainer(
			float64(active.Width), float64(active.Height), w, h, FitMargin)
	}
	s.mu.Unlock()

	if active != nil {
		s.Emit(EventTransformChanged, nil)
	}
}

// Pan translates the viewport offset by a screen-space delta.
func (s *Session) Pan(delta geometry.Point2D) {
	s.mu.Lock()
	if s.activeID == "" {
		s.mu.Unlock()
		return
	}
	s.viewport.Offset = transform.Pan(s.viewport.Offset, delta)
	s.mu.Unlock()

	s.Emit(EventTransformChanged, nil)
}

// ZoomBy multiplies the viewport scale by factor. Zoom does not recenter
// around the cursor.
func (s *Session) ZoomBy(factor float64) {
	s.mu.Lock()
	if s.activeID == "" {
		s.mu.Unlock()
		return
	}
	s.viewport.Scale = transform.Zoom(s.viewport.Scale, factor)
	s.mu.Unlock()

	s.Emit(EventTransformChanged, nil)
}

// NotifyMaskChanged emits a mask-change event after a collaborator (the
// paint engine) mutated the layer through its handle.
func (s *Session) NotifyMaskChanged() {
	s.Emit(EventMaskChanged, nil)
}

// PaintDown begins a stroke through the paint engine, under the session
// lock so a stroke never interleaves with a detection merge painting the
// same surface.
func (s *Session) PaintDown(e *paint.Engine, screen geometry.Point2D) bool {
	s.mu.Lock()
	mutated := e.PointerDown(s.maskLayer, screen, s.viewport)
	s.mu.Unlock()

	if mutated {
		s.Emit(EventMaskChanged, nil)
	}
	return mutated
}

// PaintMove extends a live stroke under the session lock.
func (s *Session) PaintMove(e *paint.Engine, screen geometry.Point2D) bool {
	s.mu.Lock()
	mutated := e.PointerMove(s.maskLayer, screen, s.viewport)
	s.mu.Unlock()

	if mutated {
		s.Emit(EventMaskChanged, nil)
	}
	return mutated
}

// Render composites the active image and mask layer into dst. It holds
// the session lock, so a repaint never reads pixels mid-stroke or
// mid-merge. dst is left as-is when nothing is active.
func (s *Session) Render(dst *goimage.RGBA) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := s.findLocked(s.activeID)
	if active == nil {
		return
	}
	s.maskLayer.CompositeOnto(dst, active.Source, s.viewport)
}

// MergeDetections appends detection results to the image they were
// requested for and paints their overlay shapes. If that image is still
// active, the live annotation list and mask are updated atomically under
// the session lock; if the user switched away while the request was in
// flight, the results land on the originating image's stored record
// instead. Unknown ids are ignored.
func (s *Session) MergeDetections(imageID string, regions []annotation.Region) {
	if len(regions) == 0 {
		return
	}

	s.mu.Lock()
	target := s.findLocked(imageID)
	if target == nil {
		s.mu.Unlock()
		return
	}

	if imageID != s.activeID {
		mergeStored(target, regions)
		s.mu.Unlock()
		s.Emit(EventImagesChanged, target)
		return
	}

	s.annotations = append(s.annotations, regions...)
	annotation.RenderRegions(s.maskLayer, regions, target.Width, target.Height)
	s.mu.Unlock()

	s.Emit(EventAnnotationsChanged, nil)
	s.Emit(EventMaskChanged, nil)
}

// mergeStored merges late detection results into a non-active image's
// snapshot: annotations appended, overlays painted into the stored mask
// blob through a scratch layer.
func mergeStored(img *ProjectImage, regions []annotation.Region) {
	img.Annotations = append(img.Annotations, regions...)

	scratch := mask.NewLayer()
	scratch.Resize(img.Width, img.Height)
	scratch.LoadFromEncoded(img.MaskData)
	annotation.RenderRegions(scratch, regions, img.Width, img.Height)
	img.MaskData = scratch.ToEncoded()
}

// snapshotLocked writes the live mask and annotations into the active
// image's record. Caller holds the lock.
func (s *Session) snapshotLocked() {
	active := s.findLocked(s.activeID)
	if active == nil {
		return
	}
	active.Annotations = make([]annotation.Region, len(s.annotations))
	copy(active.Annotations, s.annotations)
	active.MaskData = s.maskLayer.ToEncoded()
}

// mountLocked loads an image's stored state into the live canvas state:
// mask resized and cleared, stored mask restored if present, viewport
// refit. Caller holds the lock.
func (s *Session) mountLocked(img *ProjectImage) {
	s.maskLayer.Resize(img.Width, img.Height)
	s.maskLayer.Clear()
	s.maskLayer.LoadFromEncoded(img.MaskData)

	s.annotations = make([]annotation.Region, len(img.Annotations))
	copy(s.annotations, img.Annotations)

	s.viewport = transform.FitToContainer(
		float64(img.Width), float64(img.Height),
		s.containerW, s.containerH, FitMargin)
}

func (s *Session) findLocked(id string) *ProjectImage {
	if id == "" {
		return nil
	}
	for _, img := range s.images {
		if img.ID == id {
			return img
		}
	}
	return nil
}
