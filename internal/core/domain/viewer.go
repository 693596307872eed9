package domain

import (
	"errors"
	"math"
)

const (
	MinZoom          = 0.5
	MaxZoom          = 2.0
	ZoomStep         = 0.1
	DragDegreesPerPx = 0.5
)

var ErrUnknownViewerAction = errors.New("unknown viewer action")

type ViewerAction string

const (
	ViewerDrag      ViewerAction = "drag"
	ViewerZoomIn    ViewerAction = "zoom_in"
	ViewerZoomOut   ViewerAction = "zoom_out"
	ViewerSetZoom   ViewerAction = "set_zoom"
	ViewerNextImage ViewerAction = "next_image"
	ViewerPrevImage ViewerAction = "prev_image"
	ViewerReset     ViewerAction = "reset"
)

// Viewer is the interaction state of the showroom's image-cycling product view.
type Viewer struct {
	Rotation   float64 `json:"rotation"`
	Zoom       float64 `json:"zoom"`
	ImageIndex int     `json:"image_index"`
	ImageCount int     `json:"image_count"`
}

func NewViewer(imageCount int) Viewer {
	return Viewer{Zoom: 1, ImageCount: imageCount}
}

// Apply returns the viewer after action. delta is the horizontal drag distance
// in pixels for ViewerDrag and the target zoom for ViewerSetZoom.
func (v Viewer) Apply(action ViewerAction, delta float64) (Viewer, error) {
	v = v.normalized()

	switch action {
	case ViewerDrag:
		v.Rotation += delta * DragDegreesPerPx
	case ViewerZoomIn:
		v.Zoom = clampZoom(v.Zoom + ZoomStep)
	case ViewerZoomOut:
		v.Zoom = clampZoom(v.Zoom - ZoomStep)
	case ViewerSetZoom:
		v.Zoom = clampZoom(delta)
	case ViewerNextImage:
		if v.ImageCount > 0 {
			v.ImageIndex = (v.ImageIndex + 1) % v.ImageCount
		}
	case ViewerPrevImage:
		if v.ImageCount > 0 {
			if v.ImageIndex == 0 {
				v.ImageIndex = v.ImageCount - 1
			} else {
				v.ImageIndex--
			}
		}
	case ViewerReset:
		v.Rotation = 0
		v.Zoom = 1
		v.ImageIndex = 0
	default:
		return v, ErrUnknownViewerAction
	}

	return v, nil
}

// normalized repairs client supplied state: zero zoom means unset and the
// image index is kept inside the image range.
func (v Viewer) normalized() Viewer {
	if v.Zoom == 0 {
		v.Zoom = 1
	}
	v.Zoom = clampZoom(v.Zoom)
	if v.ImageCount <= 0 || v.ImageIndex < 0 || v.ImageIndex >= v.ImageCount {
		v.ImageIndex = 0
	}
	return v
}

// clampZoom also rounds to one decimal so repeated steps do not drift.
func clampZoom(z float64) float64 {
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
