// Package config loads viewer configuration from CUE.
//
// A configuration file is unified with the embedded #Config schema, which
// supplies defaults and rejects unknown fields and out-of-range values.
//
//	defaultScale: "page-fit"
//	overscan:     1
//	hookFailure:  "fail-fast"
//	journal:      "~/.pageview/journal.db"
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
	"github.com/roach88/pageflow/internal/viewer"
)

//go:embed schema.cue
var schemaSource string

// Config is a validated viewer configuration.
type Config struct {
	// DefaultScale is set when the configuration asks for a fixed scale;
	// otherwise DefaultZoomLevel is set.
	DefaultScale     float64                `json:"-"`
	DefaultZoomLevel model.SpecialZoomLevel `json:"-"`

	InitialPage        int              `json:"initialPage"`
	Overscan           int              `json:"overscan"`
	PageGap            float64          `json:"pageGap"`
	ScrollMode         model.ScrollMode `json:"scrollMode"`
	HookFailure        string           `json:"hookFailure"`
	MeasureConcurrency int              `json:"measureConcurrency"`
	MaxRenderAttempts  int              `json:"maxRenderAttempts"`
	MaxCascadeDepth    int              `json:"maxCascadeDepth"`
	Journal            string           `json:"journal,omitempty"`
	RestorePosition    bool             `json:"restorePosition"`
}

// LoadError is a configuration error with its source position.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the configuration of an empty file.
func Default() Config {
	cfg, err := LoadBytes("default.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("config: default configuration invalid: %v", err))
	}
	return cfg
}

// Load reads and validates the CUE file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(path, data)
}

// LoadBytes validates data, reported as filename in errors.
func LoadBytes(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}

	scale := v.LookupPath(cue.ParsePath("defaultScale"))
	if d, ok := scale.Default(); ok {
		scale = d
	}
	switch scale.Kind() {
	case cue.StringKind:
		s, err := scale.String()
		if err != nil {
			return Config{}, formatCUEError(err)
		}
		level, err := model.ParseSpecialZoomLevel(s)
		if err != nil {
			return Config{}, &LoadError{Message: err.Error(), Pos: scale.Pos()}
		}
		cfg.DefaultZoomLevel = level
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := scale.Float64()
		if err != nil {
			return Config{}, formatCUEError(err)
		}
		cfg.DefaultScale = f
	default:
		return Config{}, &LoadError{
			Message: fmt.Sprintf("defaultScale: unexpected %s value", scale.Kind()),
			Pos:     scale.Pos(),
		}
	}
	return cfg, nil
}

// ViewerOptions converts the configuration into controller options.
func (c Config) ViewerOptions() ([]viewer.Option, error) {
	policy, err := plugin.ParsePolicy(c.HookFailure)
	if err != nil {
		return nil, fmt.Errorf("hookFailure: %w", err)
	}
	mode, err := model.ParseScrollMode(string(c.ScrollMode))
	if err != nil {
		return nil, fmt.Errorf("scrollMode: %w", err)
	}

	opts := []viewer.Option{
		viewer.WithInitialPage(c.InitialPage),
		viewer.WithOverscan(c.Overscan),
		viewer.WithPageGap(c.PageGap),
		viewer.WithScrollMode(mode),
		viewer.WithHookPolicy(policy),
		viewer.WithMeasureConcurrency(c.MeasureConcurrency),
		viewer.WithMaxRenderAttempts(c.MaxRenderAttempts),
		viewer.WithRestorePosition(c.RestorePosition),
	}
	if c.DefaultScale > 0 {
		opts = append(opts, viewer.WithDefaultScale(c.DefaultScale))
	} else {
		opts = append(opts, viewer.WithDefaultZoomLevel(c.DefaultZoomLevel))
	}
	return opts, nil
}

// StoreOptions returns the options for plugin stores.
func (c Config) StoreOptions() []store.Option {
	return []store.Option{store.WithMaxDepth(c.MaxCascadeDepth)}
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}

	first := errs[0]
	msg := first.Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(errs)-1)
	}
	le := &LoadError{Message: msg}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
