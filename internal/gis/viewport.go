package gis

import "github.com/inheir-ai/inheir-console/internal/api"

// Default viewport before any analysis has succeeded.
const (
	defaultLatitude  = 39.8283
	defaultLongitude = -98.5795
	defaultZoom      = 4
	focusZoom        = 13
)

// Viewport models the map pane's camera. It only moves on successful
// analyses; failures leave it where it was. A viewport is created lazily
// the first time the map tab is shown and disposed when its view closes.
type Viewport struct {
	center   api.Coordinates
	zoom     int
	marker   *api.Coordinates
	disposed bool
}

func NewViewport() *Viewport {
	return &Viewport{
		center: api.Coordinates{Latitude: defaultLatitude, Longitude: defaultLongitude},
		zoom:   defaultZoom,
	}
}

func (v *Viewport) Center() api.Coordinates { return v.center }
func (v *Viewport) Zoom() int               { return v.zoom }
func (v *Viewport) Disposed() bool          { return v.disposed }

// Marker returns the pinned coordinates, or nil when nothing is pinned.
func (v *Viewport) Marker() *api.Coordinates {
	if v.marker == nil {
		return nil
	}
	c := *v.marker
	return &c
}

// Recenter pins a marker at coords and moves the camera there. No-op after
// Dispose.
func (v *Viewport) Recenter(coords api.Coordinates) {
	if v.disposed {
		return
	}
	v.center = coords
	v.zoom = focusZoom
	c := coords
	v.marker = &c
}

// Dispose releases the viewport; subsequent Recenter calls are ignored.
func (v *Viewport) Dispose() {
	v.disposed = true
	v.marker = nil
}
