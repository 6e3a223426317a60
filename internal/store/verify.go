package store

import (
	"fmt"
	"slices"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/nest"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Severity grades a Problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one finding of Verify.
type Problem struct {
	Severity Severity
	Path     element.Path
	ID       string
	Message  string
}

func (p Problem) String() string {
	if p.Path == nil {
		return fmt.Sprintf("%s: %s", p.Severity, p.Message)
	}
	return fmt.Sprintf("%s at %v (%s): %s", p.Severity, p.Path, p.ID, p.Message)
}

// HasErrors reports whether any problem is an error.
func HasErrors(problems []Problem) bool {
	return slices.ContainsFunc(problems, func(p Problem) bool { return p.Severity == SeverityError })
}

// Verify checks a decoded document before it is loaded: unique ids, the
// nesting rules, an acyclic containment graph, mind levels, frame
// membership and sequence references. Errors make the document unusable;
// warnings describe state the engine tolerates.
func Verify(doc *Document) []Problem {
	v := &verifier{
		seen:  make(map[string]element.Path),
		nodes: make(map[string]int64),
		g:     simple.NewDirectedGraph(),
	}
	for i, el := range doc.Children {
		v.visit(nil, element.Path{i}, el)
	}
	v.checkCycles()
	v.checkSequences(doc)
	return v.problems
}

type verifier struct {
	problems []Problem
	seen     map[string]element.Path
	nodes    map[string]int64
	g        *simple.DirectedGraph
}

func (v *verifier) add(sev Severity, path element.Path, id, format string, args ...any) {
	v.problems = append(v.problems, Problem{
		Severity: sev,
		Path:     path.Clone(),
		ID:       id,
		Message:  fmt.Sprintf(format, args...),
	})
}

// node returns the graph node for an element id.
func (v *verifier) node(id string) graph.Node {
	n, ok := v.nodes[id]
	if !ok {
		n = int64(len(v.nodes))
		v.nodes[id] = n
		v.g.AddNode(simple.Node(n))
	}
	return simple.Node(n)
}

func (v *verifier) visit(parent *element.Element, path element.Path, el *element.Element) {
	if el == nil {
		v.add(SeverityError, path, "", "null element")
		return
	}
	if el.ID == "" {
		v.add(SeverityError, path, "", "element without id")
	} else if first, dup := v.seen[el.ID]; dup {
		v.add(SeverityError, path, el.ID, "duplicate id, first used at %v", first)
	} else {
		v.seen[el.ID] = path.Clone()
	}

	if !nest.CanNest(parent, el) {
		kind := "root"
		if parent != nil {
			kind = string(parent.Type)
		}
		v.add(SeverityError, path, el.ID, "%s cannot be placed under %s", el.Type, kind)
	}

	if parent != nil && el.ID != "" && parent.ID != "" {
		if el.ID == parent.ID {
			v.add(SeverityError, path, el.ID, "element contains itself")
		} else {
			v.g.SetEdge(simple.Edge{F: v.node(parent.ID), T: v.node(el.ID)})
		}
	}

	switch {
	case el.IsArrow():
		if len(el.Points) < 2 {
			v.add(SeverityError, path, el.ID, "arrow needs at least two points, has %d", len(el.Points))
		}
	case el.IsMindNode():
		if parent.IsMindNode() && el.Level != parent.Level+1 {
			v.add(SeverityWarning, path, el.ID, "mind level %d under level %d", el.Level, parent.Level)
		}
	}
	if parent.IsFrame() && !el.IsFrame() && !nest.InFrameForRemoval(el, parent) {
		v.add(SeverityWarning, path, el.ID, "lies outside frame %q", parent.Label())
	}

	for i, child := range el.Children {
		v.visit(el, path.Child(i), child)
	}
}

// checkCycles reports containment loops, which can only arise from ids
// reused along a branch.
func (v *verifier) checkCycles() {
	if _, err := topo.Sort(v.g); err != nil {
		ids := make(map[int64]string, len(v.nodes))
		for id, n := range v.nodes {
			ids[n] = id
		}
		unorderable, _ := err.(topo.Unorderable)
		for _, component := range unorderable {
			var cycle []string
			for _, n := range component {
				cycle = append(cycle, ids[n.ID()])
			}
			slices.Sort(cycle)
			v.add(SeverityError, nil, "", "containment cycle through %v", cycle)
		}
	}
}

func (v *verifier) checkSequences(doc *Document) {
	names := make(map[string]bool)
	for _, s := range doc.PresentationSequences {
		if names[s.Name] {
			v.add(SeverityWarning, nil, "", "sequence name %q is used more than once", s.Name)
		}
		names[s.Name] = true
		for i, f := range s.Frames {
			if f.ViewPort.Zoom <= 0 {
				v.add(SeverityError, nil, "", "sequence %q frame %d has zoom %v", s.Name, i, f.ViewPort.Zoom)
			}
			for _, id := range f.Elements {
				if _, ok := v.seen[id]; !ok {
					v.add(SeverityWarning, nil, "", "sequence %q frame %d references missing element %s", s.Name, i, id)
				}
			}
		}
	}
}
