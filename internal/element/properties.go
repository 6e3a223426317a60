package element

import (
	"fmt"
	"sort"

	"github.com/Gaurav-Gosain/boardkit/internal/geom"
)

// Properties is a partial element, viewport or selection record keyed by
// the JSON field names. A nil value deletes a free-form data key.
type Properties map[string]any

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone copies the map. Point slices are copied too.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		if pts, ok := v.([]geom.Point); ok {
			v = append([]geom.Point(nil), pts...)
		}
		if ids, ok := v.([]string); ok {
			v = append([]string(nil), ids...)
		}
		out[k] = v
	}
	return out
}

// Get captures the current values of the named keys, for recording the
// previous side of a set_node operation.
func (e *Element) Get(keys ...string) Properties {
	out := make(Properties, len(keys))
	for _, k := range keys {
		switch k {
		case "name":
			out[k] = e.Name
		case "x":
			out[k] = e.X
		case "y":
			out[k] = e.Y
		case "width":
			out[k] = e.Width
		case "height":
			out[k] = e.Height
		case "points":
			out[k] = append([]geom.Point(nil), e.Points...)
		case "padding":
			out[k] = e.Padding
		case "background":
			out[k] = e.Background
		case "border":
			out[k] = e.Border
		case "containmentPolicy":
			out[k] = string(e.ContainmentPolicy)
		case "removalPolicy":
			out[k] = string(e.RemovalPolicy)
		case "autoResize":
			out[k] = e.AutoResize
		case "minWidth":
			out[k] = e.MinWidth
		case "minHeight":
			out[k] = e.MinHeight
		case "text":
			out[k] = e.Text
		case "level":
			out[k] = e.Level
		case "direction":
			out[k] = string(e.Direction)
		case "isLeftFold":
			out[k] = e.LeftFold
		case "isRightFold":
			out[k] = e.RightFold
		case "actualHeight":
			out[k] = e.ActualHeight
		case "childrenHeight":
			out[k] = e.ChildrenHeight
		case "leftChildrenHeight":
			out[k] = e.LeftChildrenHeight
		case "rightChildrenHeight":
			out[k] = e.RightChildrenHeight
		default:
			if v, ok := e.Data[k]; ok {
				out[k] = v
			} else {
				out[k] = nil
			}
		}
	}
	return out
}

// Set merges props onto the element. Unknown keys land in Data.
func (e *Element) Set(props Properties) error {
	for _, k := range props.Keys() {
		v := props[k]
		var err error
		switch k {
		case "id", "type", "children":
			err = fmt.Errorf("property %q is not settable", k)
		case "name":
			e.Name, err = asString(v)
		case "x":
			e.X, err = asFloat(v)
		case "y":
			e.Y, err = asFloat(v)
		case "width":
			e.Width, err = asFloat(v)
		case "height":
			e.Height, err = asFloat(v)
		case "points":
			pts, ok := v.([]geom.Point)
			if !ok && v != nil {
				err = fmt.Errorf("expected []geom.Point, got %T", v)
			}
			e.Points = append([]geom.Point(nil), pts...)
			e.syncArrowRect()
		case "padding":
			e.Padding, err = asFloat(v)
		case "background":
			e.Background, err = asString(v)
		case "border":
			e.Border, err = asString(v)
		case "containmentPolicy":
			var s string
			s, err = asString(v)
			e.ContainmentPolicy = Policy(s)
		case "removalPolicy":
			var s string
			s, err = asString(v)
			e.RemovalPolicy = Policy(s)
		case "autoResize":
			e.AutoResize, err = asBool(v)
		case "minWidth":
			e.MinWidth, err = asFloat(v)
		case "minHeight":
			e.MinHeight, err = asFloat(v)
		case "text":
			e.Text, err = asString(v)
		case "level":
			var f float64
			f, err = asFloat(v)
			e.Level = int(f)
		case "direction":
			var s string
			s, err = asString(v)
			e.Direction = Direction(s)
		case "isLeftFold":
			e.LeftFold, err = asBool(v)
		case "isRightFold":
			e.RightFold, err = asBool(v)
		case "actualHeight":
			e.ActualHeight, err = asFloat(v)
		case "childrenHeight":
			e.ChildrenHeight, err = asFloat(v)
		case "leftChildrenHeight":
			e.LeftChildrenHeight, err = asFloat(v)
		case "rightChildrenHeight":
			e.RightChildrenHeight, err = asFloat(v)
		default:
			if v == nil {
				delete(e.Data, k)
				continue
			}
			if e.Data == nil {
				e.Data = map[string]any{}
			}
			e.Data[k] = v
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// RectProperties returns the position and size keys for r.
func RectProperties(r geom.Rect) Properties {
	return Properties{"x": r.X, "y": r.Y, "width": r.Width, "height": r.Height}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}
