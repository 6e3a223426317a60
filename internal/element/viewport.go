package element

import (
	"fmt"

	"github.com/Gaurav-Gosain/boardkit/internal/geom"
)

// Zoom limits for the board camera.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// ViewPort is the camera. Width and Height are the visible extent in
// content units, container pixels divided by Zoom.
type ViewPort struct {
	Zoom   float64 `json:"zoom" yaml:"zoom"`
	MinX   float64 `json:"minX" yaml:"minX"`
	MinY   float64 `json:"minY" yaml:"minY"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DefaultViewPort returns an identity camera over a container.
func DefaultViewPort(containerW, containerH float64) ViewPort {
	return ViewPort{Zoom: 1, Width: containerW, Height: containerH}
}

// Rect returns the visible content-space region.
func (v ViewPort) Rect() geom.Rect {
	return geom.R(v.MinX, v.MinY, v.Width, v.Height)
}

// Lerp interpolates every camera field independently.
func (v ViewPort) Lerp(to ViewPort, t float64) ViewPort {
	return ViewPort{
		Zoom:   geom.Lerp(v.Zoom, to.Zoom, t),
		MinX:   geom.Lerp(v.MinX, to.MinX, t),
		MinY:   geom.Lerp(v.MinY, to.MinY, t),
		Width:  geom.Lerp(v.Width, to.Width, t),
		Height: geom.Lerp(v.Height, to.Height, t),
	}
}

// Properties returns all camera fields as a property map.
func (v ViewPort) Properties() Properties {
	return Properties{
		"zoom":   v.Zoom,
		"minX":   v.MinX,
		"minY":   v.MinY,
		"width":  v.Width,
		"height": v.Height,
	}
}

// Get captures the named camera fields.
func (v ViewPort) Get(keys ...string) Properties {
	all := v.Properties()
	out := make(Properties, len(keys))
	for _, k := range keys {
		out[k] = all[k]
	}
	return out
}

// Set merges camera fields. A nil value resets the field to zero.
func (v *ViewPort) Set(props Properties) error {
	for _, k := range props.Keys() {
		f, err := asFloat(props[k])
		if err != nil {
			return fmt.Errorf("set viewport %s: %w", k, err)
		}
		switch k {
		case "zoom":
			v.Zoom = f
		case "minX":
			v.MinX = f
		case "minY":
			v.MinY = f
		case "width":
			v.Width = f
		case "height":
			v.Height = f
		default:
			return fmt.Errorf("set viewport: unknown field %q", k)
		}
	}
	return nil
}

// SelectArea is a rubber-band selection rectangle.
type SelectArea struct {
	Anchor geom.Point `json:"anchor"`
	Focus  geom.Point `json:"focus"`
}

// Rect normalises the area into a rectangle.
func (a SelectArea) Rect() geom.Rect {
	r, _ := geom.BoundsOfPoints([]geom.Point{a.Anchor, a.Focus})
	return r
}

// Selection is ephemeral UI state: the selected element ids and the
// in-progress selection area.
type Selection struct {
	SelectedElements []string    `json:"selectedElements"`
	SelectArea       *SelectArea `json:"selectArea"`
}

// Clone copies the selection.
func (s Selection) Clone() Selection {
	out := Selection{SelectedElements: append([]string(nil), s.SelectedElements...)}
	if s.SelectArea != nil {
		a := *s.SelectArea
		out.SelectArea = &a
	}
	return out
}

// Get captures the named selection fields.
func (s Selection) Get(keys ...string) Properties {
	out := make(Properties, len(keys))
	for _, k := range keys {
		switch k {
		case "selectedElements":
			out[k] = append([]string(nil), s.SelectedElements...)
		case "selectArea":
			if s.SelectArea == nil {
				out[k] = nil
			} else {
				out[k] = *s.SelectArea
			}
		}
	}
	return out
}

// Set merges selection fields. A nil value clears the field.
func (s *Selection) Set(props Properties) error {
	for _, k := range props.Keys() {
		v := props[k]
		switch k {
		case "selectedElements":
			switch ids := v.(type) {
			case nil:
				s.SelectedElements = nil
			case []string:
				s.SelectedElements = append([]string(nil), ids...)
			default:
				return fmt.Errorf("set selection: expected []string, got %T", v)
			}
		case "selectArea":
			switch a := v.(type) {
			case nil:
				s.SelectArea = nil
			case SelectArea:
				s.SelectArea = &a
			case *SelectArea:
				if a == nil {
					s.SelectArea = nil
				} else {
					c := *a
					s.SelectArea = &c
				}
			default:
				return fmt.Errorf("set selection: expected SelectArea, got %T", v)
			}
		default:
			return fmt.Errorf("set selection: unknown field %q", k)
		}
	}
	return nil
}
