package presentation

import (
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/google/uuid"
)

// Frame is one stop of a presentation: a camera and the elements it was
// captured around.
type Frame struct {
	ID       string           `json:"id" yaml:"id"`
	ViewPort element.ViewPort `json:"viewPort" yaml:"viewPort"`
	Elements []string         `json:"elements" yaml:"elements"`
}

// Sequence is an ordered list of frames. Times are Unix milliseconds.
type Sequence struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Frames     []Frame `json:"frames" yaml:"frames"`
	CreateTime int64   `json:"createTime" yaml:"createTime"`
	UpdateTime int64   `json:"updateTime" yaml:"updateTime"`
}

// NewFrame creates a frame with a fresh id.
func NewFrame(vp element.ViewPort, elementIDs []string) Frame {
	return Frame{
		ID:       uuid.New().String(),
		ViewPort: vp,
		Elements: append([]string(nil), elementIDs...),
	}
}

// NewSequence creates a sequence stamped with now.
func NewSequence(name string, frames []Frame, now time.Time) Sequence {
	ms := now.UnixMilli()
	return Sequence{
		ID:         uuid.New().String(),
		Name:       name,
		Frames:     cloneFrames(frames),
		CreateTime: ms,
		UpdateTime: ms,
	}
}

// Clone deep-copies the sequence.
func (s Sequence) Clone() Sequence {
	s.Frames = cloneFrames(s.Frames)
	return s
}

// Playable reports whether the sequence can be presented: it needs frames
// and a usable camera on the first one.
func (s Sequence) Playable() bool {
	return len(s.Frames) > 0 && s.Frames[0].ViewPort.Zoom > 0
}

func cloneFrames(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	for i, f := range frames {
		f.Elements = append([]string(nil), f.Elements...)
		out[i] = f
	}
	return out
}

// CloneSequences deep-copies a list of sequences.
func CloneSequences(list []Sequence) []Sequence {
	out := make([]Sequence, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}
