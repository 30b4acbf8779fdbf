package booth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/catalog"
	"github.com/BTreeMap/PlayaBooth/internal/feedback"
	"github.com/BTreeMap/PlayaBooth/internal/genai"
	"github.com/BTreeMap/PlayaBooth/internal/metrics"
	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/BTreeMap/PlayaBooth/internal/prompt"
	"github.com/BTreeMap/PlayaBooth/internal/questionnaire"
	"github.com/BTreeMap/PlayaBooth/internal/store"
)

// Screen prompts
const (
	StartPrompt  = "Press Enter to begin: "
	ReturnPrompt = "Press Enter to return to start: "
)

// StylePrompt is the input prompt under the style menu.
func StylePrompt(defaultKey string) string {
	return fmt.Sprintf("Style [%s]: ", defaultKey)
}

// ErrInterrupted is returned by Run when input ends or the context is canceled.
var ErrInterrupted = errors.New("booth interrupted")

// ErrNoCandidates is the fallback cause when the generator output holds no usable names.
var ErrNoCandidates = errors.New("no nickname candidates in generator output")

// Screen draws the booth and reads the participant's input.
type Screen interface {
	questionnaire.Prompter
	feedback.Prompter
	Banner()
	StyleMenu(styles []models.Style, defaultKey string)
	Generating(style models.Style)
	Nicknames(candidates []models.Candidate)
	Fallback(messages []models.Message, raw string, cause error)
	Info(msg string)
}

// Generator turns a request into the raw generator output.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
}

// Dependencies holds the collaborators a Machine drives.
type Dependencies struct {
	Screen    Screen
	Catalog   *catalog.Catalog
	Builder   *prompt.Builder
	Generator Generator
	Store     store.SessionStore
	Metrics   metrics.Recorder
}

// Opts holds configuration options for the machine.
type Opts struct {
	Prefill   map[string]string
	Style     string
	Avoid     []string
	MaxCycles int
}

// Option defines a functional option for configuring the machine.
type Option func(*Opts)

// WithPrefill runs the questionnaire non-interactively from answers and starts
// the first cycle at the questionnaire.
func WithPrefill(answers map[string]string) Option {
	return func(o *Opts) {
		o.Prefill = answers
	}
}

// WithStyle overrides the catalog default style.
func WithStyle(key string) Option {
	return func(o *Opts) {
		o.Style = key
	}
}

// WithAvoid sets names the generator is asked not to repeat.
func WithAvoid(names []string) Option {
	return func(o *Opts) {
		o.Avoid = names
	}
}

// WithMaxCycles stops Run after n returns to the start screen. Zero runs until interrupted.
func WithMaxCycles(n int) Option {
	return func(o *Opts) {
		o.MaxCycles = n
	}
}

// Machine runs the booth one state at a time.
type Machine struct {
	deps      Dependencies
	collector *questionnaire.Collector
	form      *feedback.Form

	prefill      map[string]string
	defaultStyle string
	avoid        []string
	maxCycles    int

	state  State
	cycles int

	// current cycle
	style      string
	transcript models.Transcript
	candidates []models.Candidate
	sessionID  int64
	logged     bool
}

// NewMachine creates a machine over deps. A nil Metrics recorder is replaced by a no-op.
func NewMachine(deps Dependencies, opts ...Option) *Machine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoOpRecorder()
	}

	defaultStyle := deps.Catalog.DefaultStyle
	if cfg.Style != "" {
		if s, ok := deps.Catalog.Style(cfg.Style); ok {
			defaultStyle = s.Key
		} else {
			slog.Warn("Machine.NewMachine: unknown style override, using catalog default", "style", cfg.Style, "default", defaultStyle)
		}
	}

	m := &Machine{
		deps:         deps,
		collector:    questionnaire.NewCollector(deps.Screen),
		form:         feedback.NewForm(deps.Screen),
		prefill:      cfg.Prefill,
		defaultStyle: defaultStyle,
		avoid:        cfg.Avoid,
		maxCycles:    cfg.MaxCycles,
		state:        StateStart,
		style:        defaultStyle,
	}
	if cfg.Prefill != nil {
		m.state = StateQuestionnaire
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Cycles returns how many times the machine has returned to the start screen.
func (m *Machine) Cycles() int {
	return m.cycles
}

// Run steps the machine until the context is canceled, input ends, or the
// configured number of cycles completes. Input and cancellation errors are
// returned wrapped in ErrInterrupted.
func (m *Machine) Run(ctx context.Context) error {
	slog.Info("Machine.Run: booth started", "state", m.state, "style", m.defaultStyle, "prefilled", m.prefill != nil, "max_cycles", m.maxCycles)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		if err := m.Step(ctx); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				return err
			}
			slog.Info("Machine.Run: booth stopped", "state", m.state, "cycles", m.cycles, "reason", err)
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		if m.maxCycles > 0 && m.cycles >= m.maxCycles {
			slog.Info("Machine.Run: cycle limit reached", "cycles", m.cycles)
			return nil
		}
	}
}

// Step runs the handler for the current state and applies the resulting transition.
func (m *Machine) Step(ctx context.Context) error {
	var (
		event Event
		err   error
	)
	switch m.state {
	case StateStart:
		event, err = m.start(ctx)
	case StateStyleSelect:
		event, err = m.selectStyle(ctx)
	case StateQuestionnaire:
		event, err = m.runQuestionnaire(ctx)
	case StateGenerating:
		event, err = m.generate(ctx)
	case StateFeedback:
		event, err = m.collectFeedback(ctx)
	default:
		return fmt.Errorf("%w: unknown state %s", ErrInvalidTransition, m.state)
	}
	if err != nil {
		return err
	}

	next, err := Transition(m.state, event)
	if err != nil {
		return err
	}
	slog.Debug("Machine.Step: transition", "from", m.state, "event", event, "to", next)
	if next == StateStart {
		m.cycles++
		m.resetCycle()
	}
	m.state = next
	return nil
}

func (m *Machine) resetCycle() {
	m.style = m.defaultStyle
	m.transcript = nil
	m.candidates = nil
	m.sessionID = 0
	m.logged = false
}

func (m *Machine) start(ctx context.Context) (Event, error) {
	m.deps.Screen.Banner()
	if _, err := m.deps.Screen.Ask(ctx, StartPrompt); err != nil {
		return 0, err
	}
	return EventAcknowledged, nil
}

func (m *Machine) selectStyle(ctx context.Context) (Event, error) {
	cat := m.deps.Catalog
	m.deps.Screen.StyleMenu(cat.Styles, m.defaultStyle)
	for {
		choice, err := m.deps.Screen.Ask(ctx, StylePrompt(m.defaultStyle))
		if err != nil {
			return 0, err
		}
		choice = strings.TrimSpace(choice)
		if choice == "" {
			choice = m.defaultStyle
		}
		if s, ok := cat.Style(choice); ok {
			m.style = s.Key
			slog.Debug("Machine.selectStyle: style chosen", "style", s.Key)
			return EventStyleChosen, nil
		}
		m.deps.Screen.Error(fmt.Sprintf("Invalid choice. Use: %s", strings.Join(cat.Keys(), ", ")))
	}
}

func (m *Machine) runQuestionnaire(ctx context.Context) (Event, error) {
	if m.prefill != nil {
		m.deps.Screen.Info(fmt.Sprintf("Using %d prefilled answers.", len(m.prefill)))
	}
	transcript, err := m.collector.Collect(ctx, m.deps.Catalog.Questions, m.prefill)
	if err != nil {
		return 0, err
	}
	m.transcript = transcript
	return EventCollected, nil
}

func (m *Machine) generate(ctx context.Context) (Event, error) {
	style := m.deps.Catalog.Resolve(m.style)
	m.deps.Screen.Generating(style)

	messages, err := m.deps.Builder.Build(m.transcript, style.Key, m.avoid)
	if err != nil {
		slog.Error("Machine.generate: failed to build request", "style", style.Key, "error", err)
		m.deps.Metrics.GenerationCompleted(ctx, style.Key, metrics.OutcomeFailed)
		return m.fallback(ctx, nil, "", err)
	}

	raw, err := m.deps.Generator.Generate(ctx, messages)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		slog.Warn("Machine.generate: generation failed", "style", style.Key, "error", err)
		m.deps.Metrics.GenerationCompleted(ctx, style.Key, metrics.OutcomeFailed)
		return m.fallback(ctx, messages, "", err)
	}

	gen := genai.ParseGeneration(raw)
	if !gen.OK() {
		slog.Warn("Machine.generate: generator output had no candidates", "style", style.Key, "parsed", gen.Parsed, "raw_length", len(raw))
		m.deps.Metrics.GenerationCompleted(ctx, style.Key, metrics.OutcomeUnparsed)
		return m.fallback(ctx, messages, raw, ErrNoCandidates)
	}
	m.deps.Metrics.GenerationCompleted(ctx, style.Key, metrics.OutcomeSuccess)

	m.candidates = gen.Candidates
	m.deps.Screen.Nicknames(gen.Candidates)

	id, err := m.deps.Store.LogSession(ctx, style.Key, m.transcript, gen.Candidates, raw)
	if err != nil {
		slog.Warn("Machine.generate: session not logged", "style", style.Key, "error", err)
		m.deps.Metrics.SessionLogged(ctx, metrics.OutcomeNotLogged)
	} else {
		slog.Info("Machine.generate: session logged", "session_id", id, "style", style.Key, "candidates", len(gen.Candidates))
		m.deps.Metrics.SessionLogged(ctx, metrics.OutcomeLogged)
		m.sessionID = id
		m.logged = true
	}
	return EventCandidatesReady, nil
}

// fallback shows what would have been sent and waits for Enter. No session is written.
func (m *Machine) fallback(ctx context.Context, messages []models.Message, raw string, cause error) (Event, error) {
	m.deps.Screen.Fallback(messages, raw, cause)
	if _, err := m.deps.Screen.Ask(ctx, ReturnPrompt); err != nil {
		return 0, err
	}
	return EventGenerationFailed, nil
}

func (m *Machine) collectFeedback(ctx context.Context) (Event, error) {
	fb, err := m.form.Collect(ctx, m.candidates, m.transcript.Answered())
	if err != nil {
		return 0, err
	}
	if fb == nil {
		slog.Debug("Machine.collectFeedback: participant skipped feedback", "session_id", m.sessionID)
		m.deps.Metrics.FeedbackRecorded(ctx, metrics.OutcomeSkipped)
		return EventFeedbackDone, nil
	}
	if !m.logged {
		slog.Warn("Machine.collectFeedback: session was not logged, discarding feedback")
		m.deps.Metrics.FeedbackRecorded(ctx, metrics.OutcomeDiscarded)
		return EventFeedbackDone, nil
	}

	id, err := m.deps.Store.LogFeedback(ctx, m.sessionID, *fb)
	if err != nil {
		slog.Warn("Machine.collectFeedback: feedback not logged", "session_id", m.sessionID, "error", err)
		m.deps.Metrics.FeedbackRecorded(ctx, metrics.OutcomeNotLogged)
		return EventFeedbackDone, nil
	}
	slog.Info("Machine.collectFeedback: feedback logged", "feedback_id", id, "session_id", m.sessionID)
	m.deps.Metrics.FeedbackRecorded(ctx, metrics.OutcomeLogged)
	return EventFeedbackDone, nil
}
