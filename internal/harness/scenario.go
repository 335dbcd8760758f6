package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
)

// Scenario is a scripted viewer session.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Document   DocumentSpec `yaml:"document"`
	Viewport   Size         `yaml:"viewport"`
	Options    Options      `yaml:"options,omitempty"`
	Steps      []Step       `yaml:"steps"`
	Assertions []Assertion  `yaml:"assertions"`
}

// DocumentSpec describes the synthetic document under test. Either Pages
// or Uniform is set.
type DocumentSpec struct {
	ID       string                   `yaml:"id"`
	FileName string                   `yaml:"file_name,omitempty"`
	Password string                   `yaml:"password,omitempty"`
	Pages    []document.SyntheticPage `yaml:"pages,omitempty"`
	Uniform  *UniformPages            `yaml:"uniform,omitempty"`

	// RenderFailures maps a page index to how many of its renders fail.
	RenderFailures map[int]int `yaml:"render_failures,omitempty"`

	// LoadError makes loading fail with this message.
	LoadError string `yaml:"load_error,omitempty"`
}

// UniformPages is a shorthand for Count pages of the same size.
type UniformPages struct {
	Count  int     `yaml:"count"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Options are the viewer options of a scenario. Unset fields keep the
// viewer defaults.
type Options struct {
	Scale             float64  `yaml:"scale,omitempty"`
	ZoomLevel         string   `yaml:"zoom_level,omitempty"`
	InitialPage       int      `yaml:"initial_page,omitempty"`
	Overscan          *int     `yaml:"overscan,omitempty"`
	PageGap           *float64 `yaml:"page_gap,omitempty"`
	ScrollMode        string   `yaml:"scroll_mode,omitempty"`
	HookFailure       string   `yaml:"hook_failure,omitempty"`
	MaxRenderAttempts int      `yaml:"max_render_attempts,omitempty"`
}

// Step is one user action. Exactly one action field is set.
type Step struct {
	Resize   *Size     `yaml:"resize,omitempty"`
	Scroll   *float64  `yaml:"scroll,omitempty"`
	Jump     *int      `yaml:"jump,omitempty"`
	Rotate   string    `yaml:"rotate,omitempty"`
	Zoom     *ZoomStep `yaml:"zoom,omitempty"`
	Password *string   `yaml:"password,omitempty"`
	Cancel   bool      `yaml:"cancel,omitempty"`
	Drain    bool      `yaml:"drain,omitempty"`

	// Queue posts the action without draining.
	Queue bool `yaml:"queue,omitempty"`
}

// ZoomStep sets either a fixed scale or a special zoom level.
type ZoomStep struct {
	Scale float64 `yaml:"scale,omitempty"`
	Level string  `yaml:"level,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Page is the expected current page (current_page).
	Page *int `yaml:"page,omitempty"`

	// Status is the expected lifecycle status (status).
	Status string `yaml:"status,omitempty"`

	// Pages is the expected render order (render_order).
	Pages []int `yaml:"pages,omitempty"`

	// Events is the expected outward event sequence (events).
	Events []string `yaml:"events,omitempty"`

	// Scale, Rotation and Window are compared when set (final_state).
	Scale    *float64 `yaml:"scale,omitempty"`
	Rotation *int     `yaml:"rotation,omitempty"`
	Window   []int    `yaml:"window,omitempty"`
}

// Assertion type constants.
const (
	AssertCurrentPage = "current_page"
	AssertStatus      = "status"
	AssertRenderOrder = "render_order"
	AssertEvents      = "events"
	AssertFinalState  = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := validateDocument(&s.Document); err != nil {
		return err
	}
	if err := validateOptions(&s.Options); err != nil {
		return err
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateDocument(d *DocumentSpec) error {
	if d.ID == "" {
		return fmt.Errorf("document.id is required")
	}
	if len(d.Pages) > 0 && d.Uniform != nil {
		return fmt.Errorf("document: pages and uniform are mutually exclusive")
	}
	if d.Uniform != nil && (d.Uniform.Count < 0 || d.Uniform.Width <= 0 || d.Uniform.Height <= 0) {
		return fmt.Errorf("document.uniform: count must be non-negative and sizes positive")
	}
	for i, p := range d.Pages {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("document.pages[%d]: width and height must be positive", i)
		}
	}
	return nil
}

func validateOptions(o *Options) error {
	if o.ZoomLevel != "" {
		if _, err := model.ParseSpecialZoomLevel(o.ZoomLevel); err != nil {
			return fmt.Errorf("options.zoom_level: %w", err)
		}
	}
	if _, err := model.ParseScrollMode(o.ScrollMode); err != nil {
		return fmt.Errorf("options.scroll_mode: %w", err)
	}
	if _, err := plugin.ParsePolicy(o.HookFailure); err != nil {
		return fmt.Errorf("options.hook_failure: %w", err)
	}
	return nil
}

// validateStep checks that exactly one action is set.
func validateStep(index int, s *Step) error {
	n := 0
	for _, set := range []bool{
		s.Resize != nil,
		s.Scroll != nil,
		s.Jump != nil,
		s.Rotate != "",
		s.Zoom != nil,
		s.Password != nil,
		s.Cancel,
		s.Drain,
	} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, n)
	}

	if s.Rotate != "" && s.Rotate != "forward" && s.Rotate != "backward" {
		return fmt.Errorf("steps[%d]: rotate must be forward or backward, got %q", index, s.Rotate)
	}
	if z := s.Zoom; z != nil {
		if (z.Scale > 0) == (z.Level != "") {
			return fmt.Errorf("steps[%d]: zoom needs exactly one of scale or level", index)
		}
		if z.Level != "" {
			if _, err := model.ParseSpecialZoomLevel(z.Level); err != nil {
				return fmt.Errorf("steps[%d]: %w", index, err)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCurrentPage:
		if a.Page == nil {
			return fmt.Errorf("assertions[%d]: page is required for current_page", index)
		}
	case AssertStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for status", index)
		}
	case AssertRenderOrder:
		if a.Pages == nil {
			return fmt.Errorf("assertions[%d]: pages is required for render_order", index)
		}
	case AssertEvents:
		if a.Events == nil {
			return fmt.Errorf("assertions[%d]: events is required for events", index)
		}
	case AssertFinalState:
		if a.Scale == nil && a.Rotation == nil && a.Window == nil {
			return fmt.Errorf("assertions[%d]: final_state needs scale, rotation or window", index)
		}
		if a.Window != nil && len(a.Window) != 2 {
			return fmt.Errorf("assertions[%d]: window must be [start, end]", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
