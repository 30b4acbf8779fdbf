package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mdp/qrterminal/v3"
	"github.com/muesli/cancelreader"
)

// DefaultWidth is the rule width used when none is configured.
const DefaultWidth = 60

// clearSequence moves the cursor home and erases the screen.
const clearSequence = "\033[H\033[2J"

// Opts holds configuration options for the terminal.
type Opts struct {
	Width int
	QR    bool
	Clear *bool
}

// Option defines a functional option for configuring the terminal.
type Option func(*Opts)

// WithWidth sets the width of rules and panels.
func WithWidth(width int) Option {
	return func(o *Opts) {
		o.Width = width
	}
}

// WithQR renders the generated names as a QR code under the results.
func WithQR(enabled bool) Option {
	return func(o *Opts) {
		o.QR = enabled
	}
}

// WithClear forces screen clearing on or off. By default the screen is
// cleared only when the output is a terminal.
func WithClear(enabled bool) Option {
	return func(o *Opts) {
		o.Clear = &enabled
	}
}

// Terminal draws booth screens on out and reads lines from in.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	theme *Theme
	width int
	qr    bool
	clear bool
}

// NewTerminal creates a terminal bound to in and out.
func NewTerminal(in io.Reader, out io.Writer, opts ...Option) *Terminal {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	clearScreen := isTerminal(out)
	if cfg.Clear != nil {
		clearScreen = *cfg.Clear
	}
	return &Terminal{
		in:    bufio.NewReader(in),
		out:   out,
		theme: NewTheme(lipgloss.NewRenderer(out)),
		width: cfg.Width,
		qr:    cfg.QR,
		clear: clearScreen,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(t.out, line)
	}
}

// Ask prints prompt and reads one line, without the trailing newline.
// A final line without a newline is returned before io.EOF.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, t.theme.Progress.Render(prompt))
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, cancelreader.ErrCanceled) {
			fmt.Fprintln(t.out)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", context.Canceled
		}
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Clear erases the screen when the output is a terminal.
func (t *Terminal) Clear() {
	if t.clear {
		fmt.Fprint(t.out, clearSequence)
	}
}

// Banner draws the start screen.
func (t *Terminal) Banner() {
	t.Clear()
	title := t.theme.Gradient("PLAYA NICKNAME BOOTH", GradientSunset, true)
	sub := t.theme.Gradient("Get your playa name!", GradientNeon, false)
	t.println("", t.theme.Panel.Render(title+"\n\n"+sub), "")
}

// StyleMenu lists the style modes with their keys.
func (t *Terminal) StyleMenu(styles []models.Style, defaultKey string) {
	t.Clear()
	t.println(t.theme.RuleLine("", t.width), t.theme.Title.Render("Choose your vibe:"), "")
	for _, s := range styles {
		marker := ""
		if s.Key == defaultKey {
			marker = t.theme.Dim.Render(" (default)")
		}
		t.println(fmt.Sprintf("  %s %s %s%s",
			t.theme.KeyBracket.Render("["+s.Key+"]"),
			t.theme.KeyName.Render(s.Name),
			t.theme.KeyDesc.Render("- "+s.Description),
			marker))
	}
	t.println("")
}

// Error prints a validation or failure message.
func (t *Terminal) Error(msg string) {
	t.println(t.theme.Error.Render(msg))
}

// Info prints a neutral status line.
func (t *Terminal) Info(msg string) {
	t.println(t.theme.Dim.Render(msg))
}

// QuestionnaireIntro draws the panel shown before the first question.
func (t *Terminal) QuestionnaireIntro(total int) {
	t.Clear()
	body := t.theme.Question.Render("Answer a few questions to help generate your playa name.") + "\n" +
		t.theme.Hint.Render("Press Enter to skip any question.")
	t.println(t.theme.Panel.Render(body), "")
}

// Question draws one question with its progress counter and hint.
func (t *Terminal) Question(index, total int, q models.Question) {
	t.println(
		t.theme.RuleLine(fmt.Sprintf("Question %d/%d", index, total), t.width),
		t.theme.Question.Render(q.Text),
	)
	if q.Hint != "" {
		t.println(t.theme.Hint.Render(q.Hint))
	}
}

// Generating shows that a generation request is in flight.
func (t *Terminal) Generating(style models.Style) {
	t.println("", t.theme.Gradient("Consulting the playa spirits...", GradientFire, true),
		t.theme.Dim.Render("Style: "+style.Name))
}

// Nicknames shows the generated candidates, numbered from 1.
func (t *Terminal) Nicknames(candidates []models.Candidate) {
	t.Clear()
	t.println(t.theme.RuleLine("Your playa names", t.width), "")
	for i, c := range candidates {
		t.println(fmt.Sprintf("  %s %s",
			t.theme.KeyBracket.Render(fmt.Sprintf("%d.", i+1)),
			t.theme.Gradient(c.Name, GradientSunset, true)))
		if c.Explanation != "" {
			t.println("     " + t.theme.Hint.Render(c.Explanation))
		}
	}
	t.println("", t.theme.RuleLine("", t.width))
	if t.qr && len(candidates) > 0 {
		t.println(t.theme.Dim.Render("Scan to keep your names:"))
		qrterminal.GenerateHalfBlock(strings.Join(models.CandidateNames(candidates), "\n"), qrterminal.L, t.out)
	}
}

// Fallback shows the request that would have been sent when generation is unavailable
// or its output cannot be parsed.
func (t *Terminal) Fallback(messages []models.Message, raw string, cause error) {
	t.println("", t.theme.Error.Render("No names this time, the playa spirits are quiet."))
	if cause != nil {
		slog.Debug("Terminal.Fallback: showing generation fallback", "error", cause)
		t.println(t.theme.Dim.Render(cause.Error()))
	}
	for _, m := range messages {
		if m.Role == models.RoleUser {
			t.println("", t.theme.RuleLine("Your answers", t.width), m.Content)
		}
	}
	if raw != "" {
		t.println("", t.theme.RuleLine("Generator said", t.width), raw)
	}
	t.println("")
}

// FeedbackHeader introduces the feedback form.
func (t *Terminal) FeedbackHeader() {
	t.println("", t.theme.RuleLine("Feedback", t.width))
}

// Heading prints a form question and its hint.
func (t *Terminal) Heading(text, hint string) {
	t.println("", t.theme.Question.Render(text))
	if hint != "" {
		t.println(t.theme.Hint.Render(hint))
	}
}

// Choices lists items numbered from 1, with zeroLabel as [0] when set.
func (t *Terminal) Choices(items []string, zeroLabel string) {
	if zeroLabel != "" {
		t.println(fmt.Sprintf("  %s %s", t.theme.KeyBracket.Render("[0]"), t.theme.KeyDesc.Render(zeroLabel)))
	}
	for i, item := range items {
		t.println(fmt.Sprintf("  %s %s", t.theme.KeyBracket.Render(fmt.Sprintf("[%d]", i+1)), item))
	}
}

// Thanks closes the feedback form.
func (t *Terminal) Thanks() {
	t.println("", t.theme.Success.Render("Thanks for the feedback!"))
}

// Goodbye is printed when the booth is interrupted.
func (t *Terminal) Goodbye() {
	t.println("", t.theme.Gradient("Goodbye!", GradientSunset, true))
}
