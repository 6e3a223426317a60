// Package store moves boards in and out of the process: the JSON document
// format, YAML presentation scripts, a SQLite snapshot history and a
// document integrity check. The engine packages never call it.
package store

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/board"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "store",
})

func init() {
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the log level for the store package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// FormatVersion is written into every document.
const FormatVersion = 1

// Document is the persisted form of a board.
type Document struct {
	Version               int                     `json:"version"`
	Children              []*element.Element      `json:"children"`
	ViewPort              element.ViewPort        `json:"viewport"`
	PresentationSequences []presentation.Sequence `json:"presentationSequences,omitempty"`
}

// FromBoard captures the board tree and camera, plus the sequences of pm
// when it is not nil.
func FromBoard(b *board.Board, pm *presentation.Manager) *Document {
	doc := &Document{
		Version:  FormatVersion,
		Children: b.Snapshot(),
		ViewPort: b.ViewPort(),
	}
	if pm != nil {
		doc.PresentationSequences = pm.Sequences()
	}
	return doc
}

// Board builds a board from the document for a container of the given
// size. A zero size keeps the stored camera as is.
func (d *Document) Board(containerW, containerH float64) *board.Board {
	vp := d.ViewPort
	if containerW > 0 && vp.Zoom > 0 {
		vp.Width = containerW / vp.Zoom
		vp.Height = containerH / vp.Zoom
	}
	return board.New(board.Options{
		Children:        d.Children,
		ViewPort:        vp,
		ContainerWidth:  containerW,
		ContainerHeight: containerH,
	})
}

// ElementCount counts every element in the tree.
func (d *Document) ElementCount() int {
	n := 0
	for _, el := range d.Children {
		if el == nil {
			continue
		}
		el.Walk(func(e *element.Element) bool {
			if e == nil {
				return false
			}
			n++
			return true
		})
	}
	return n
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Decode reads a JSON document. Missing child lists decode as empty.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("document version %d is newer than supported %d", doc.Version, FormatVersion)
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Children == nil {
		doc.Children = []*element.Element{}
	}
	for _, el := range doc.Children {
		if el == nil {
			continue
		}
		el.Walk(func(e *element.Element) bool {
			if e == nil {
				return false
			}
			if e.Children == nil {
				e.Children = []*element.Element{}
			}
			return true
		})
	}
	if doc.ViewPort.Zoom == 0 {
		doc.ViewPort.Zoom = 1
	}
	return &doc, nil
}

// ReadFile decodes the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("read document", "path", path, "elements", doc.ElementCount())
	return doc, nil
}

// WriteFile encodes doc to path.
func WriteFile(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Debug("wrote document", "path", path, "bytes", buf.Len())
	return nil
}
