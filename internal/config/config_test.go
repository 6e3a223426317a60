package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/config"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	if cfg.Frame.Padding != element.DefaultFramePadding {
		t.Errorf("Expected frame padding %d, got %v", element.DefaultFramePadding, cfg.Frame.Padding)
	}
	if cfg.Frame.ContainmentPolicy != "partial" {
		t.Errorf("Expected partial containment, got %q", cfg.Frame.ContainmentPolicy)
	}
	if cfg.DnD.EdgeBand != 10 {
		t.Errorf("Expected edge band 10, got %v", cfg.DnD.EdgeBand)
	}
	if cfg.Presentation.FrameDuration != "500ms" {
		t.Errorf("Expected frame duration 500ms, got %q", cfg.Presentation.FrameDuration)
	}
}

func TestDefaultKeybindings(t *testing.T) {
	cfg := config.DefaultConfig()

	for _, action := range presentation.Actions {
		keys, ok := cfg.Keybindings.Presentation[string(action)]
		if !ok {
			t.Errorf("Expected %s keybinding to exist", action)
			continue
		}
		if len(keys) == 0 {
			t.Errorf("Expected %s to have at least one key bound", action)
		}
	}
}

// =============================================================================
// Loading Tests
// =============================================================================

func TestParsePartialConfig(t *testing.T) {
	data := `
[dnd]
edge_band = 6

[presentation]
frame_duration = "1s"
animate = false

[keybindings.presentation]
next_frame = ["n", "space"]
stop = []
`
	cfg, err := config.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.DnD.EdgeBand != 6 {
		t.Errorf("Expected edge band 6, got %v", cfg.DnD.EdgeBand)
	}
	if cfg.Frame.MinWidth != element.DefaultFrameMinWidth {
		t.Errorf("Expected missing frame section to keep defaults, got %+v", cfg.Frame)
	}

	opts := cfg.PresentationOptions()
	if opts.FrameDuration != time.Second {
		t.Errorf("Expected 1s frame duration, got %v", opts.FrameDuration)
	}
	if opts.FitAllDuration != presentation.DefaultFitAllDuration {
		t.Errorf("Expected default fit-all duration, got %v", opts.FitAllDuration)
	}
	if opts.Animate {
		t.Error("Expected animation to be disabled")
	}

	tests := []struct {
		key      string
		expected presentation.Action
		bound    bool
	}{
		{"n", presentation.ActionNext, true},
		{"space", presentation.ActionNext, true},
		{"right", "", false},
		{"left", presentation.ActionPrev, true},
		{"esc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			action, ok := opts.Keys.Lookup(tt.key)
			if ok != tt.bound || action != tt.expected {
				t.Errorf("Expected %q bound=%v, got %q bound=%v", tt.expected, tt.bound, action, ok)
			}
		})
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"policy", "[frame]\ncontainment_policy = \"some\"\n", "invalid frame policy"},
		{"duration", "[presentation]\nframe_duration = \"soon\"\n", "invalid duration"},
		{"action", "[keybindings.presentation]\nexplode = [\"x\"]\n", "unknown presentation action"},
		{"modifier", "[keybindings.presentation]\nstop = [\"hold+x\"]\n", "unknown modifier"},
		{"syntax", "[frame\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boardkit", "config.toml")

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file to be written: %v", err)
	}

	again, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("Reading written config failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, again) {
		t.Errorf("Expected written config to read back as defaults\nwant %+v\ngot  %+v", cfg, again)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# boardkit configuration file") {
		t.Errorf("Expected header, got %q", string(data[:min(len(data), 40)]))
	}
}

// =============================================================================
// Conversion Tests
// =============================================================================

func TestEngineConversions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Frame.RemovalPolicy = "full"
	no := false
	cfg.Frame.AutoResize = &no
	cfg.Mind.SiblingGaps = []float64{30, 20}

	fd := cfg.FrameDefaults()
	if fd.RemovalPolicy != element.PolicyFull || fd.AutoResize {
		t.Errorf("Unexpected frame defaults %+v", fd)
	}

	m := cfg.MindMargins()
	if m.MarginY[1] != 30 || m.MarginY[2] != 20 || len(m.MarginY) != 2 {
		t.Errorf("Expected sibling gaps by level, got %v", m.MarginY)
	}
	if m.MarginX != 36 || m.DefaultMarginY != 8 {
		t.Errorf("Unexpected margins %+v", m)
	}

	if r := cfg.Resolver(); r.EdgeBand != 10 {
		t.Errorf("Expected edge band 10, got %v", r.EdgeBand)
	}
}

// =============================================================================
// KeybindRegistry Tests
// =============================================================================

func TestKeybindRegistry_GetKeys(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("next_frame")
	if strings.Join(keys, ",") != "down,right" {
		t.Errorf("Expected [down right], got %v", keys)
	}
}

func TestKeybindRegistry_GetAction(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	tests := []struct {
		key      string
		expected string
	}{
		{"right", "next_frame"},
		{"Right", "next_frame"},
		{"escape", "stop"},
		{"f", "fit_all"},
		{"F", ""},
		{"ctrl+shift+alt+super+hyper+x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := registry.GetAction(tt.key); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestKeybindRegistry_GetKeysForDisplay(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	if got := registry.GetKeysForDisplay("next_frame"); got != "↓, →" {
		t.Errorf("Expected %q, got %q", "↓, →", got)
	}
	if got := registry.GetKeysForDisplay("stop"); got != "Esc" {
		t.Errorf("Expected %q, got %q", "Esc", got)
	}
	if got := registry.GetKeysForDisplay("nonexistent_action"); got != "" {
		t.Errorf("Expected empty display for unknown action, got %q", got)
	}
}

func TestKeybindRegistry_Conflicts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybindings.Presentation["stop"] = []string{"right"}

	registry := config.NewKeybindRegistry(cfg)
	if got := registry.GetAction("right"); got != "next_frame" {
		t.Errorf("Expected first action in display order to keep the key, got %q", got)
	}
}

func TestGetKeybindings(t *testing.T) {
	sections := config.GetKeybindings(nil)
	if len(sections) == 0 || sections[0].Title != "PRESENTATION" {
		t.Fatalf("Expected presentation section first, got %+v", sections)
	}
	if len(sections[0].Bindings) != len(presentation.Actions) {
		t.Errorf("Expected %d bindings, got %d", len(presentation.Actions), len(sections[0].Bindings))
	}
	if sections[0].Bindings[0].Description != "Next frame" {
		t.Errorf("Expected Next frame first, got %q", sections[0].Bindings[0].Description)
	}
}

// =============================================================================
// Key Normalizer Tests
// =============================================================================

func TestKeyNormalizer(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"ctrl+a", "ctrl+a"},
		{"Ctrl+A", "ctrl+a"},
		{"CTRL+A", "ctrl+a"},
		{"return", "enter"},
		{"escape", "esc"},
		{"PageDown", "pgdown"},
		{"N", "N"},
		{" ", "space"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := normalizer.NormalizeKey(tc.input)
			found := false
			for _, k := range got {
				if k == tc.expected {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("NormalizeKey(%q) = %v, want to contain %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyNormalizer_ValidateKey(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input   string
		isValid bool
	}{
		{"ctrl+a", true},
		{"n", true},
		{"enter", true},
		{"+", true},
		{"shift+", false},
		{"hold+x", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			valid, _ := normalizer.ValidateKey(tc.input)
			if valid != tc.isValid {
				t.Errorf("ValidateKey(%q) = %v, want %v", tc.input, valid, tc.isValid)
			}
		})
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkKeybindRegistry_GetAction(b *testing.B) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.GetAction("right")
	}
}

func BenchmarkNormalizeKey(b *testing.B) {
	normalizer := config.NewKeyNormalizer()
	keys := []string{"ctrl+a", "Ctrl+Shift+B", "alt+1", "return"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalizer.NormalizeKey(keys[i%len(keys)])
	}
}
