package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
)

const demoScript = `# demo board
Frame "F" 0 0 400 300
Shape "a" 40 40 60 40
Mind "Root" 600 0
Child "Root" "idea"
Sequence "intro"
Capture "a"
Save
`

func writeScript(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "demo.tape")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestRunScriptWritesDocument(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, demoScript)
	out := filepath.Join(dir, "demo.json")

	opts := runOptions{output: out, width: 800, height: 600}
	if err := runScript(context.Background(), script, opts, config.DefaultConfig()); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}

	doc, err := store.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got := doc.ElementCount(); got != 4 {
		t.Errorf("Expected 4 elements, got %d", got)
	}
	if len(doc.PresentationSequences) != 1 || doc.PresentationSequences[0].Name != "intro" {
		t.Fatalf("Expected sequence intro, got %+v", doc.PresentationSequences)
	}

	seq, err := findSequence(doc, "intro")
	if err != nil || len(seq.Frames) != 1 {
		t.Errorf("Expected one frame in intro, got %+v (%v)", seq, err)
	}
	if _, err := findSequence(doc, "missing"); !errors.Is(err, presentation.ErrSequenceNotFound) {
		t.Errorf("Expected ErrSequenceNotFound, got %v", err)
	}

	tree := renderTree(doc)
	for _, want := range []string{"frame", "Root", "idea", "4 element(s), 1 sequence(s)"} {
		if !strings.Contains(tree, want) {
			t.Errorf("Expected tree to contain %q", want)
		}
	}
}

func TestRunScriptReportsErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{"parse error", "Frame \"F\" 0 0\n", "line 1"},
		{"unknown element", "Delete \"ghost\"\n", "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			script := writeScript(t, dir, tt.script)
			opts := runOptions{output: filepath.Join(dir, "out.json"), width: 800, height: 600}
			err := runScript(context.Background(), script, opts, config.DefaultConfig())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckDocuments(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, demoScript)
	good := filepath.Join(dir, "good.json")
	if err := runScript(context.Background(), script, runOptions{output: good, width: 800, height: 600}, config.DefaultConfig()); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"children":[{"id":"x","type":"geometry","children":[]},{"id":"x","type":"geometry","children":[]}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.json")

	results, err := checkDocuments(context.Background(), []string{good, bad, missing})
	if err != nil {
		t.Fatalf("checkDocuments failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].err != nil || store.HasErrors(results[0].problems) {
		t.Errorf("Expected good document to pass, got %v %v", results[0].err, results[0].problems)
	}
	if !store.HasErrors(results[1].problems) {
		t.Error("Expected duplicate ids to be reported")
	}
	if results[2].err == nil {
		t.Error("Expected missing document to fail")
	}
}

func TestCheckDocumentsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := checkDocuments(ctx, []string{"a.json", "b.json"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFindCustomizations(t *testing.T) {
	def := config.DefaultConfig()
	user := config.DefaultConfig()
	user.Keybindings.Presentation["next_frame"] = []string{"n"}
	user.Keybindings.Presentation["stop"] = []string{}

	got := findCustomizations(user, def)
	if len(got) != 2 {
		t.Fatalf("Expected 2 customizations, got %+v", got)
	}
	if got[0].Action != "Next frame" || got[0].CustomKeys != "n" {
		t.Errorf("Expected next frame bound to n, got %+v", got[0])
	}
	if got[1].Action != "Stop presenting" || got[1].CustomKeys != "" {
		t.Errorf("Expected stop unbound, got %+v", got[1])
	}
}
