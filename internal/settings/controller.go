// Package settings drives the compensation settings pages: it loads a remote
// configuration into an editable draft, validates it with the calculator sum
// rules and writes it back as a full replacement.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle position of a Controller.
type State int

const (
	Idle State = iota
	Loading
	Editing
	Saving
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrSaveInFlight is returned when a save or edit is attempted while a
	// save is still running.
	ErrSaveInFlight = errors.New("a save is already in progress")

	// ErrBusy is returned when the draft is being loaded.
	ErrBusy = errors.New("settings are loading")
)

// DefaultBannerTTL is how long a banner stays visible.
const DefaultBannerTTL = 3 * time.Second

// BannerKind is the tone of a banner.
type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

func (k BannerKind) String() string {
	switch k {
	case BannerSuccess:
		return "success"
	case BannerError:
		return "error"
	default:
		return "none"
	}
}

// Banner is a transient message shown above the form.
type Banner struct {
	Kind    BannerKind
	Message string
	Expires time.Time
}

// Empty reports whether there is nothing to show.
func (b Banner) Empty() bool {
	return b.Kind == BannerNone
}

// Clock tells the controller the time. Tests inject a fake one.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type options struct {
	clock     Clock
	bannerTTL time.Duration
	logger    *slog.Logger
}

// Option configures a Controller.
type Option func(*options)

// WithClock sets the clock used for banner expiry.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithBannerTTL sets how long banners stay visible. Non-positive values keep
// the default.
func WithBannerTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.bannerTTL = d
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Controller is the load/edit/validate/save state machine of one settings
// page. It owns its draft exclusively; callers read copies and change it
// through Edit. Methods are safe for concurrent use.
type Controller[D any] struct {
	page   Page[D]
	remote Remote
	opts   options

	mu     sync.Mutex
	state  State
	draft  D
	banner Banner
	issues []Issue
	saving bool
}

// New creates a controller holding the page defaults in state Idle. Call
// Load to fetch the remote configuration.
func New[D any](page Page[D], remote Remote, opts ...Option) *Controller[D] {
	o := options{
		clock:     SystemClock,
		bannerTTL: DefaultBannerTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller[D]{
		page:   page,
		remote: remote,
		opts:   o,
		state:  Idle,
		draft:  page.Defaults(),
	}
}

// State returns the current state. Success and Error fall back to Idle and
// Editing once their banner has expired.
func (c *Controller[D]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
	return c.state
}

// Banner returns the visible banner, or an empty one.
func (c *Controller[D]) Banner() Banner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
	return c.banner
}

// Draft returns a copy of the current draft.
func (c *Controller[D]) Draft() D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Clone(c.draft)
}

// Issues returns the findings of the last validation, warnings included.
func (c *Controller[D]) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Validate checks the current draft without saving it. The findings are also
// kept for Issues.
func (c *Controller[D]) Validate() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = c.page.Validate(c.draft)
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Preview derives the pools and shares of the current draft.
func (c *Controller[D]) Preview() Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Preview(c.draft)
}

// Load fetches the remote configuration into the draft. When the fetch fails
// the draft falls back to the page defaults, an error banner is shown and the
// fetch error is returned for logging; the controller stays usable.
func (c *Controller[D]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if c.state == Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = Loading
	c.mu.Unlock()

	d, err := c.page.Load(ctx, c.remote)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	c.issues = nil
	if err != nil {
		c.draft = c.page.Defaults()
		c.setBanner(BannerError, fmt.Sprintf("Failed to load %s. Using default values.", c.page.Name()))
		c.opts.logger.Warn("Settings load failed, using defaults", "page", c.page.Name(), "error", err)
		return fmt.Errorf("load %s: %w", c.page.Name(), err)
	}
	c.draft = d
	c.opts.logger.Debug("Settings loaded", "page", c.page.Name())
	return nil
}

// Edit applies fn to a copy of the draft and keeps the result when fn
// succeeds. An error from fn leaves the draft untouched and is shown as an
// error banner.
func (c *Controller[D]) Edit(fn func(d *D) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()

	if c.saving {
		return ErrSaveInFlight
	}
	if c.state == Loading {
		return ErrBusy
	}

	next := c.page.Clone(c.draft)
	if err := fn(&next); err != nil {
		c.state = Editing
		c.setBanner(BannerError, err.Error())
		return err
	}
	c.draft = next
	c.state = Editing
	return nil
}

// Save validates the draft and writes it. Blocking issues stop the save
// before any remote call and return a *ValidationError. A failed write keeps
// the draft, with the steps already written recorded, and shows an error
// banner. A successful write shows a success
// banner and reloads the draft to pick up server-assigned identifiers.
// Nothing is retried.
func (c *Controller[D]) Save(ctx context.Context) error {
	c.mu.Lock()
	c.settle()
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if c.state == Loading {
		c.mu.Unlock()
		return ErrBusy
	}

	name := c.page.Name()
	issues := c.page.Validate(c.draft)
	c.issues = issues
	for _, i := range issues {
		if i.Blocking() {
			c.state = Editing
			c.setBanner(BannerError, i.Message)
			c.mu.Unlock()
			c.opts.logger.Info("Settings save blocked", "page", name, "field", i.Field, "reason", i.Message)
			return &ValidationError{Issues: issues}
		}
	}

	c.saving = true
	c.state = Saving
	snapshot := c.page.Clone(c.draft)
	c.mu.Unlock()

	err := c.page.Save(ctx, c.remote, &snapshot)

	c.mu.Lock()
	// The snapshot carries whatever the page managed to write.
	c.draft = snapshot
	if err != nil {
		c.saving = false
		c.state = Error
		c.setBanner(BannerError, fmt.Sprintf("Failed to save %s. Try again.", name))
		c.mu.Unlock()
		c.opts.logger.Error("Settings save failed", "page", name, "error", err)
		return fmt.Errorf("save %s: %w", name, err)
	}
	c.setBanner(BannerSuccess, successMessage(name, issues))
	c.state = Loading
	c.mu.Unlock()
	c.opts.logger.Info("Settings saved", "page", name, "warnings", len(issues))

	fresh, err := c.page.Load(ctx, c.remote)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	c.state = Success
	if err != nil {
		c.opts.logger.Warn("Settings reload after save failed, keeping saved draft", "page", name, "error", err)
		return nil
	}
	c.draft = fresh
	return nil
}

func successMessage(name string, warnings []Issue) string {
	msg := fmt.Sprintf("%s saved.", capitalize(name))
	if len(warnings) == 0 {
		return msg
	}
	var parts []string
	for _, w := range warnings {
		parts = append(parts, w.Message)
	}
	return msg + " Warning: " + strings.Join(parts, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// setBanner must be called with mu held.
func (c *Controller[D]) setBanner(kind BannerKind, msg string) {
	c.banner = Banner{
		Kind:    kind,
		Message: msg,
		Expires: c.opts.clock.Now().Add(c.opts.bannerTTL),
	}
}

// settle clears an expired banner and leaves the transient states. It must
// be called with mu held.
func (c *Controller[D]) settle() {
	if c.banner.Empty() || c.opts.clock.Now().Before(c.banner.Expires) {
		return
	}
	c.banner = Banner{}
	switch c.state {
	case Success:
		c.state = Idle
	case Error:
		c.state = Editing
	}
}
