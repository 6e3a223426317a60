package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// sequenceFile is the YAML layout of an exported presentation script.
type sequenceFile struct {
	Sequences []presentation.Sequence `yaml:"sequences"`
}

// ExportSequences writes the sequences as YAML.
func ExportSequences(w io.Writer, seqs []presentation.Sequence) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sequenceFile{Sequences: seqs}); err != nil {
		return fmt.Errorf("encode sequences: %w", err)
	}
	return enc.Close()
}

// ImportSequences reads sequences written by ExportSequences. Sequences
// without an id get a fresh one.
func ImportSequences(r io.Reader) ([]presentation.Sequence, error) {
	var f sequenceFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode sequences: %w", err)
	}
	now := time.Now().UnixMilli()
	for i := range f.Sequences {
		s := &f.Sequences[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.CreateTime == 0 {
			s.CreateTime = now
		}
		if s.UpdateTime == 0 {
			s.UpdateTime = s.CreateTime
		}
		for j := range s.Frames {
			if s.Frames[j].ID == "" {
				s.Frames[j].ID = uuid.New().String()
			}
		}
	}
	return f.Sequences, nil
}

// WriteSequencesFile exports seqs to path.
func WriteSequencesFile(path string, seqs []presentation.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportSequences(f, seqs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadSequencesFile imports the sequences at path.
func ReadSequencesFile(path string) ([]presentation.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ImportSequences(f)
}

// MergeSequences adds imported sequences to doc, replacing those with the
// same id or name.
func MergeSequences(doc *Document, seqs []presentation.Sequence) {
	for _, s := range seqs {
		replaced := false
		for i, existing := range doc.PresentationSequences {
			if existing.ID == s.ID || existing.Name == s.Name {
				doc.PresentationSequences[i] = s.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			doc.PresentationSequences = append(doc.PresentationSequences, s.Clone())
		}
	}
}
