package store_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/geom"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
)

func shape(id string, x, y, w, h float64) *element.Element {
	el := element.New(element.TypeGeometry, x, y, w, h)
	el.ID = id
	el.Name = id
	return el
}

func mindNode(id string, level int, children ...*element.Element) *element.Element {
	n := element.NewMindNode(id, 0, 0, 40, 48)
	n.ID = id
	n.Level = level
	n.Children = children
	return n
}

func sampleDocument() *store.Document {
	f := element.NewFrame("F", geom.R(0, 0, 400, 300))
	f.ID = "f"
	f.Children = []*element.Element{shape("a", 50, 50, 40, 40)}

	arrow := element.NewArrow(geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 50})
	arrow.ID = "arrow"

	b := board.New(board.Options{
		Children:        []*element.Element{f, shape("b", 600, 0, 40, 40), arrow, mindNode("root", 1, mindNode("idea", 2))},
		ContainerWidth:  800,
		ContainerHeight: 600,
	})
	pm := presentation.New(b, presentation.Options{},
		presentation.Sequence{
			ID:   "s1",
			Name: "talk",
			Frames: []presentation.Frame{
				{ID: "fr1", ViewPort: element.ViewPort{Zoom: 2, Width: 400, Height: 300}, Elements: []string{"a"}},
			},
			CreateTime: 1,
			UpdateTime: 2,
		})
	return store.FromBoard(b, pm)
}

// =============================================================================
// Document Codec Tests
// =============================================================================

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	if err := store.Encode(&buf, doc); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"presentationSequences"`) {
		t.Errorf("Expected sequences in output, got %s", buf.String())
	}

	got, err := store.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.ElementCount() != 6 {
		t.Errorf("Expected 6 elements, got %d", got.ElementCount())
	}
	f := got.Children[0]
	if !f.IsFrame() || f.Padding != element.DefaultFramePadding || len(f.Children) != 1 || f.Children[0].ID != "a" {
		t.Errorf("Frame did not survive the round trip: %+v", f)
	}
	if arrow := got.Children[2]; len(arrow.Points) != 2 || arrow.Points[1].X != 100 {
		t.Errorf("Arrow points did not survive the round trip: %+v", arrow.Points)
	}
	if root := got.Children[3]; root.Text != "root" || root.Children[0].Level != 2 {
		t.Errorf("Mind tree did not survive the round trip: %+v", root)
	}
	if len(got.PresentationSequences) != 1 || got.PresentationSequences[0].Frames[0].ViewPort.Zoom != 2 {
		t.Errorf("Unexpected sequences %+v", got.PresentationSequences)
	}
	if got.ViewPort != doc.ViewPort {
		t.Errorf("Expected viewport %+v, got %+v", doc.ViewPort, got.ViewPort)
	}
}

func TestDecodeDefaults(t *testing.T) {
	doc, err := store.Decode(strings.NewReader(`{"children":[{"id":"a","type":"geometry","x":1,"y":2,"width":3,"height":4}]}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Version != store.FormatVersion {
		t.Errorf("Expected version %d, got %d", store.FormatVersion, doc.Version)
	}
	if doc.ViewPort.Zoom != 1 {
		t.Errorf("Expected zoom 1, got %v", doc.ViewPort.Zoom)
	}
	if doc.Children[0].Children == nil {
		t.Error("Expected empty child list, got nil")
	}

	b := doc.Board(400, 200)
	if vp := b.ViewPort(); vp.Width != 400 || vp.Height != 200 {
		t.Errorf("Expected camera sized to the container, got %+v", vp)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"newer version", `{"version": 99, "children": []}`},
		{"malformed", `{"children": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Decode(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

// =============================================================================
// Sequence Export Tests
// =============================================================================

func TestSequencesYAML(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	if err := store.ExportSequences(&buf, doc.PresentationSequences); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "name: talk") {
		t.Errorf("Expected YAML output, got:\n%s", buf.String())
	}

	seqs, err := store.ImportSequences(&buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(seqs) != 1 || seqs[0].ID != "s1" || seqs[0].Frames[0].Elements[0] != "a" {
		t.Errorf("Unexpected import %+v", seqs)
	}
}

func TestImportSequencesAssignsIDs(t *testing.T) {
	input := `
sequences:
  - name: handwritten
    frames:
      - viewPort: {zoom: 1, minX: 0, minY: 0, width: 100, height: 100}
        elements: [a]
`
	seqs, err := store.ImportSequences(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if seqs[0].ID == "" || seqs[0].Frames[0].ID == "" {
		t.Errorf("Expected generated ids, got %+v", seqs[0])
	}
	if seqs[0].CreateTime == 0 || seqs[0].UpdateTime != seqs[0].CreateTime {
		t.Errorf("Expected stamped times, got %d/%d", seqs[0].CreateTime, seqs[0].UpdateTime)
	}

	doc := sampleDocument()
	seqs[0].Name = "talk"
	store.MergeSequences(doc, seqs)
	if len(doc.PresentationSequences) != 1 || doc.PresentationSequences[0].ID != seqs[0].ID {
		t.Errorf("Expected import to replace the sequence with the same name, got %+v", doc.PresentationSequences)
	}
}

// =============================================================================
// Snapshot Tests
// =============================================================================

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	snaps, err := store.OpenSnapshots(":memory:")
	if err != nil {
		t.Fatalf("OpenSnapshots failed: %v", err)
	}
	defer snaps.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps.SetClock(func() time.Time { return now })

	doc := sampleDocument()
	first, err := snaps.Save(ctx, "demo", doc)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc.Children = doc.Children[:1]
	now = now.Add(time.Minute)
	second, err := snaps.Save(ctx, "demo", doc)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if second <= first {
		t.Errorf("Expected increasing ids, got %d then %d", first, second)
	}
	if _, err := snaps.Save(ctx, "other", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	latest, err := snaps.Latest(ctx, "demo")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(latest.Children) != 1 {
		t.Errorf("Expected the newest snapshot, got %d roots", len(latest.Children))
	}

	old, err := snaps.Get(ctx, first)
	if err != nil || old.ElementCount() != 6 {
		t.Errorf("Expected first snapshot with 6 elements, got %v (%v)", old, err)
	}

	list, err := snaps.List(ctx, "demo")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != second || list[0].Elements != 2 || list[1].Elements != 6 {
		t.Errorf("Unexpected listing %+v", list)
	}
	if !list[0].CreatedAt.Equal(now) || list[0].Sequences != 1 {
		t.Errorf("Unexpected metadata %+v", list[0])
	}

	all, _ := snaps.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("Expected 3 snapshots in total, got %d", len(all))
	}

	pruned, err := snaps.Prune(ctx, "demo", 1)
	if err != nil || pruned != 1 {
		t.Errorf("Expected 1 pruned snapshot, got %d (%v)", pruned, err)
	}

	if _, err := snaps.Latest(ctx, "missing"); !errors.Is(err, store.ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot, got %v", err)
	}
}

// =============================================================================
// Verification Tests
// =============================================================================

func TestVerifyCleanDocument(t *testing.T) {
	if problems := store.Verify(sampleDocument()); len(problems) != 0 {
		t.Errorf("Expected no problems, got %v", problems)
	}
}

func TestVerifyFindsProblems(t *testing.T) {
	tests := []struct {
		name     string
		doc      func() *store.Document
		severity store.Severity
		want     string
	}{
		{
			name: "duplicate id",
			doc: func() *store.Document {
				return &store.Document{Children: []*element.Element{shape("a", 0, 0, 1, 1), shape("a", 5, 5, 1, 1)}}
			},
			severity: store.SeverityError,
			want:     "duplicate id",
		},
		{
			name: "frame inside frame",
			doc: func() *store.Document {
				outer := element.NewFrame("outer", geom.R(0, 0, 400, 400))
				outer.Children = []*element.Element{element.NewFrame("inner", geom.R(10, 10, 100, 100))}
				return &store.Document{Children: []*element.Element{outer}}
			},
			severity: store.SeverityError,
			want:     "cannot be placed under frame",
		},
		{
			name: "containment cycle",
			doc: func() *store.Document {
				return &store.Document{Children: []*element.Element{
					mindNode("x", 1, mindNode("y", 2, mindNode("x", 3))),
				}}
			},
			severity: store.SeverityError,
			want:     "containment cycle through [x y]",
		},
		{
			name: "short arrow",
			doc: func() *store.Document {
				a := element.NewArrow(geom.Point{X: 1, Y: 1})
				return &store.Document{Children: []*element.Element{a}}
			},
			severity: store.SeverityError,
			want:     "at least two points",
		},
		{
			name: "child outside frame",
			doc: func() *store.Document {
				f := element.NewFrame("F", geom.R(0, 0, 100, 100))
				f.Children = []*element.Element{shape("far", 1000, 1000, 10, 10)}
				return &store.Document{Children: []*element.Element{f}}
			},
			severity: store.SeverityWarning,
			want:     `outside frame "F"`,
		},
		{
			name: "mind level",
			doc: func() *store.Document {
				return &store.Document{Children: []*element.Element{mindNode("r", 1, mindNode("c", 3))}}
			},
			severity: store.SeverityWarning,
			want:     "mind level 3 under level 1",
		},
		{
			name: "missing frame element",
			doc: func() *store.Document {
				doc := sampleDocument()
				doc.PresentationSequences[0].Frames[0].Elements = []string{"ghost"}
				return doc
			},
			severity: store.SeverityWarning,
			want:     "missing element ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := store.Verify(tt.doc())
			found := false
			for _, p := range problems {
				if p.Severity == tt.severity && strings.Contains(p.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected %s containing %q, got %v", tt.severity, tt.want, problems)
			}
			if store.HasErrors(problems) != (tt.severity == store.SeverityError) {
				t.Errorf("Expected HasErrors=%v, got %v", tt.severity == store.SeverityError, problems)
			}
		})
	}
}
