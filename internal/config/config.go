// Package config loads the boardkit user configuration: engine tuning for
// frames, mind maps, drag and drop and presentations, plus the presentation
// keybindings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/dnd"
	"github.com/Gaurav-Gosain/boardkit/internal/element"
	"github.com/Gaurav-Gosain/boardkit/internal/frame"
	"github.com/Gaurav-Gosain/boardkit/internal/mind"
	"github.com/Gaurav-Gosain/boardkit/internal/presentation"
	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "boardkit"

// UserConfig is the on-disk configuration.
type UserConfig struct {
	Frame        FrameConfig        `toml:"frame"`
	Mind         MindConfig         `toml:"mind"`
	DnD          DnDConfig          `toml:"dnd"`
	Presentation PresentationConfig `toml:"presentation"`
	Keybindings  KeybindingsConfig  `toml:"keybindings"`
}

// FrameConfig holds the defaults for frames created by wrapping.
type FrameConfig struct {
	Padding           float64 `toml:"padding" comment:"Inner padding kept around frame children"`
	MinWidth          float64 `toml:"min_width"`
	MinHeight         float64 `toml:"min_height"`
	ContainmentPolicy string  `toml:"containment_policy" comment:"partial or full"`
	RemovalPolicy     string  `toml:"removal_policy" comment:"partial or full"`
	AutoResize        *bool   `toml:"auto_resize"`
}

// MindConfig holds the mind-map layout spacing.
type MindConfig struct {
	MarginX        float64   `toml:"margin_x" comment:"Gap between a node and its children"`
	SiblingGaps    []float64 `toml:"sibling_gaps" comment:"Gap between siblings, by level starting at 1"`
	DefaultSibling float64   `toml:"default_sibling_gap"`
}

// DnDConfig tunes the outline drop resolver.
type DnDConfig struct {
	EdgeBand float64 `toml:"edge_band" comment:"Height of the before/after bands of an outline row"`
}

// PresentationConfig tunes camera movement while presenting.
type PresentationConfig struct {
	Padding        float64 `toml:"padding"`
	FrameDuration  string  `toml:"frame_duration"`
	FitAllDuration string  `toml:"fit_all_duration"`
	FPS            int     `toml:"fps"`
	Animate        *bool   `toml:"animate"`
}

// KeybindingsConfig maps actions to the keys that trigger them.
type KeybindingsConfig struct {
	Presentation map[string][]string `toml:"presentation"`
}

func boolPtr(v bool) *bool { return &v }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	fd := frame.DefaultDefaults()
	m := mind.DefaultMargins()
	po := presentation.DefaultOptions()

	return &UserConfig{
		Frame: FrameConfig{
			Padding:           fd.Padding,
			MinWidth:          fd.MinWidth,
			MinHeight:         fd.MinHeight,
			ContainmentPolicy: string(fd.ContainmentPolicy),
			RemovalPolicy:     string(fd.RemovalPolicy),
			AutoResize:        boolPtr(fd.AutoResize),
		},
		Mind: MindConfig{
			MarginX:        m.MarginX,
			SiblingGaps:    []float64{m.MarginY[1], m.MarginY[2], m.MarginY[3]},
			DefaultSibling: m.DefaultMarginY,
		},
		DnD: DnDConfig{EdgeBand: dnd.DefaultEdgeBand},
		Presentation: PresentationConfig{
			Padding:        po.Padding,
			FrameDuration:  po.FrameDuration.String(),
			FitAllDuration: po.FitAllDuration.String(),
			FPS:            po.FPS,
			Animate:        boolPtr(po.Animate),
		},
		Keybindings: KeybindingsConfig{
			Presentation: defaultPresentationKeys(),
		},
	}
}

func defaultPresentationKeys() map[string][]string {
	keys := make(map[string][]string)
	for key, action := range presentation.DefaultKeyMap() {
		keys[string(action)] = append(keys[string(action)], key)
	}
	for action := range keys {
		slices.Sort(keys[action])
	}
	return keys
}

// GetConfigPath returns the path of the user config file, creating its
// directory when needed.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(AppName, "config.toml"))
}

// GetDataPath returns a path under the XDG data directory, creating its
// directory when needed.
func GetDataPath(name string) (string, error) {
	return xdg.DataFile(filepath.Join(AppName, name))
}

// LoadUserConfig reads the user config, writing the defaults first when no
// file exists yet.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file is created with the
// defaults. Fields the file leaves out keep their default values.
func LoadFrom(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := WriteDefault(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*UserConfig, error) {
	cfg := &UserConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fillMissing(cfg, DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillMissing copies defaults into every zero field of cfg.
func fillMissing(cfg, def *UserConfig) {
	f, df := &cfg.Frame, def.Frame
	if f.Padding == 0 {
		f.Padding = df.Padding
	}
	if f.MinWidth == 0 {
		f.MinWidth = df.MinWidth
	}
	if f.MinHeight == 0 {
		f.MinHeight = df.MinHeight
	}
	if f.ContainmentPolicy == "" {
		f.ContainmentPolicy = df.ContainmentPolicy
	}
	if f.RemovalPolicy == "" {
		f.RemovalPolicy = df.RemovalPolicy
	}
	if f.AutoResize == nil {
		f.AutoResize = df.AutoResize
	}

	m, dm := &cfg.Mind, def.Mind
	if m.MarginX == 0 {
		m.MarginX = dm.MarginX
	}
	if len(m.SiblingGaps) == 0 {
		m.SiblingGaps = dm.SiblingGaps
	}
	if m.DefaultSibling == 0 {
		m.DefaultSibling = dm.DefaultSibling
	}

	if cfg.DnD.EdgeBand == 0 {
		cfg.DnD.EdgeBand = def.DnD.EdgeBand
	}

	p, dp := &cfg.Presentation, def.Presentation
	if p.Padding == 0 {
		p.Padding = dp.Padding
	}
	if p.FrameDuration == "" {
		p.FrameDuration = dp.FrameDuration
	}
	if p.FitAllDuration == "" {
		p.FitAllDuration = dp.FitAllDuration
	}
	if p.FPS == 0 {
		p.FPS = dp.FPS
	}
	if p.Animate == nil {
		p.Animate = dp.Animate
	}

	// Actions the user did not mention keep their default keys. An action
	// set to an empty list stays unbound.
	if cfg.Keybindings.Presentation == nil {
		cfg.Keybindings.Presentation = make(map[string][]string)
	}
	for action, keys := range def.Keybindings.Presentation {
		if _, ok := cfg.Keybindings.Presentation[action]; !ok {
			cfg.Keybindings.Presentation[action] = keys
		}
	}
}

// Validate reports values the engine cannot use.
func (c *UserConfig) Validate() error {
	for _, p := range []string{c.Frame.ContainmentPolicy, c.Frame.RemovalPolicy} {
		if p != string(element.PolicyFull) && p != string(element.PolicyPartial) {
			return fmt.Errorf("invalid frame policy %q: want full or partial", p)
		}
	}
	if c.Frame.Padding < 0 || c.DnD.EdgeBand < 0 || c.Presentation.Padding < 0 {
		return errors.New("padding and edge band must not be negative")
	}
	if c.Presentation.FPS < 0 {
		return fmt.Errorf("invalid fps %d", c.Presentation.FPS)
	}
	for _, d := range []string{c.Presentation.FrameDuration, c.Presentation.FitAllDuration} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}

	normalizer := NewKeyNormalizer()
	for action, keys := range c.Keybindings.Presentation {
		if !isPresentationAction(action) {
			return fmt.Errorf("unknown presentation action %q", action)
		}
		for _, key := range keys {
			if ok, msg := normalizer.ValidateKey(key); !ok {
				return fmt.Errorf("action %s: %s", action, msg)
			}
		}
	}
	return nil
}

func isPresentationAction(name string) bool {
	for _, a := range presentation.Actions {
		if string(a) == name {
			return true
		}
	}
	return false
}

// Marshal renders cfg as TOML with a short header.
func Marshal(cfg *UserConfig, path string) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("# boardkit configuration file\n")
	sb.WriteString("# Engine defaults and presentation keybindings.\n")
	sb.WriteString("# Multiple keys can be bound to the same action.\n")
	if path != "" {
		sb.WriteString("#\n# Configuration location: " + path + "\n")
	}
	sb.WriteString("\n")

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	sb.Write(data)
	return []byte(sb.String()), nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := Marshal(DefaultConfig(), path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FrameDefaults converts the [frame] section.
func (c *UserConfig) FrameDefaults() frame.Defaults {
	return frame.Defaults{
		Padding:           c.Frame.Padding,
		MinWidth:          c.Frame.MinWidth,
		MinHeight:         c.Frame.MinHeight,
		ContainmentPolicy: element.Policy(c.Frame.ContainmentPolicy),
		RemovalPolicy:     element.Policy(c.Frame.RemovalPolicy),
		AutoResize:        c.Frame.AutoResize == nil || *c.Frame.AutoResize,
	}
}

// MindMargins converts the [mind] section.
func (c *UserConfig) MindMargins() mind.Margins {
	m := mind.Margins{
		MarginX:        c.Mind.MarginX,
		MarginY:        make(map[int]float64, len(c.Mind.SiblingGaps)),
		DefaultMarginY: c.Mind.DefaultSibling,
	}
	for i, gap := range c.Mind.SiblingGaps {
		m.MarginY[i+1] = gap
	}
	return m
}

// Resolver converts the [dnd] section.
func (c *UserConfig) Resolver() dnd.Resolver {
	return dnd.Resolver{EdgeBand: c.DnD.EdgeBand}
}

// PresentationOptions converts the [presentation] section and its keys.
// Durations were checked by Validate.
func (c *UserConfig) PresentationOptions() presentation.Options {
	opts := presentation.DefaultOptions()
	opts.Padding = c.Presentation.Padding
	opts.FPS = c.Presentation.FPS
	if d, err := time.ParseDuration(c.Presentation.FrameDuration); err == nil {
		opts.FrameDuration = d
	}
	if d, err := time.ParseDuration(c.Presentation.FitAllDuration); err == nil {
		opts.FitAllDuration = d
	}
	if c.Presentation.Animate != nil {
		opts.Animate = *c.Presentation.Animate
	}
	opts.Keys = NewKeybindRegistry(c).KeyMap()
	return opts
}

// Apply installs the process-wide settings, currently the mind margins.
func (c *UserConfig) Apply() {
	mind.SetMargins(c.MindMargins())
}
