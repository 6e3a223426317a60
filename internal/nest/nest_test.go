package nest_test

import (
	"testing"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
)

// =============================================================================
// CanNest Tests
// =============================================================================

func TestCanNest(t *testing.T) {
	frame := element.NewFrame("F", geom.R(0, 0, 100, 100))
	otherFrame := element.NewFrame("G", geom.R(0, 0, 100, 100))
	arrow := element.NewArrow(geom.Point{}, geom.Point{X: 10, Y: 10})
	mindA := element.NewMindNode("a", 0, 0, 50, 30)
	mindB := element.NewMindNode("b", 0, 0, 50, 30)
	shape := element.New(element.TypeGeometry, 0, 0, 10, 10)
	text := element.New(element.TypeRichText, 0, 0, 10, 10)

	tests := []struct {
		name     string
		parent   *element.Element
		child    *element.Element
		expected bool
	}{
		{"shape in frame", frame, shape, true},
		{"text in frame", frame, text, true},
		{"frame in frame", frame, otherFrame, false},
		{"arrow in frame", frame, arrow, false},
		{"mind in frame", frame, mindA, false},
		{"mind in mind", mindA, mindB, true},
		{"shape in mind", mindA, shape, false},
		{"frame in mind", mindA, frame, false},
		{"anything at root", nil, frame, true},
		{"mind at root", nil, mindA, true},
		{"nil child", frame, nil, false},
		{"self", frame, frame, false},
		{"leaf parent", shape, text, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nest.CanNest(tt.parent, tt.child); got != tt.expected {
				t.Errorf("CanNest = %v, want %v", got, tt.expected)
			}
		})
	}
}

// =============================================================================
// IsElementInFrame Tests
// =============================================================================

func TestIsElementInFrameFull(t *testing.T) {
	frame := element.NewFrame("F", geom.R(0, 0, 100, 100))

	inside := element.New(element.TypeGeometry, -20, -20, 140, 140)
	if !nest.IsElementInFrame(inside, frame, element.PolicyFull) {
		t.Error("Expected element matching padded bounds to be inside")
	}

	overflow := element.New(element.TypeGeometry, -21, 0, 10, 10)
	if nest.IsElementInFrame(overflow, frame, element.PolicyFull) {
		t.Error("Expected element crossing padded edge to be outside under full policy")
	}
}

func TestIsElementInFramePartialThreshold(t *testing.T) {
	// padded bounds are (-20,-20,140,140), right edge at x=120
	frame := element.NewFrame("F", geom.R(0, 0, 100, 100))

	tests := []struct {
		name     string
		x        float64
		expected bool
	}{
		{"fully inside", 0, true},
		{"exactly half", 110, false},
		{"just over half", 109, true},
		{"less than half", 115, false},
		{"outside", 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := element.New(element.TypeGeometry, tt.x, 0, 20, 20)
			if got := nest.IsElementInFrame(el, frame, element.PolicyPartial); got != tt.expected {
				t.Errorf("IsElementInFrame(x=%v) = %v, want %v", tt.x, got, tt.expected)
			}
		})
	}
}

func TestIsElementInFrameZeroArea(t *testing.T) {
	frame := element.NewFrame("F", geom.R(0, 0, 100, 100))
	line := element.New(element.TypeGeometry, 10, 10, 0, 50)
	if nest.IsElementInFrame(line, frame, element.PolicyPartial) {
		t.Error("Expected zero-area element to never count as contained")
	}
}

func TestIsElementInFrameUsesArrowPoints(t *testing.T) {
	frame := element.NewFrame("F", geom.R(0, 0, 100, 100))
	arrow := element.NewArrow(geom.Point{X: 10, Y: 10}, geom.Point{X: 60, Y: 60})
	if !nest.IsElementInFrame(arrow, frame, element.PolicyFull) {
		t.Error("Expected arrow inside by its points")
	}
}
