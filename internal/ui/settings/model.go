package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeView    Mode = iota // Show current settings
	ModeForm                // Edit form
	ModeTesting             // Probing the server
	ModeResult              // Show probe result
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the configuration after it was checked and written.
type SavedMsg struct {
	Config model.AppConfig
}

// probeResultMsg is the outcome of a health probe. When save is set the
// probe was part of saving cfg.
type probeResultMsg struct {
	health *model.Health
	err    error
	save   bool
	cfg    model.AppConfig
}

// savedInternalMsg is sent after the config file is written.
type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

// HealthChecker probes the API server at baseURL.
type HealthChecker func(ctx context.Context, baseURL string, timeout time.Duration) (*model.Health, error)

// CheckHealth probes baseURL with a fresh API client.
func CheckHealth(ctx context.Context, baseURL string, timeout time.Duration) (*model.Health, error) {
	return gateway.New(baseURL, gateway.WithTimeout(timeout)).Health(ctx)
}

// Model edits the client connection settings: API base URL, request
// timeout, page size and refresh interval.
type Model struct {
	mode  Mode
	cfg   model.AppConfig
	path  string
	check HealthChecker

	form *huh.Form

	// Form field values (huh binds to these)
	formBaseURL  string
	formTimeout  string
	formPerPage  string
	formInterval string

	spinner   spinner.Model
	health    *model.Health
	probeErr  error
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view over cfg. Saved settings are written to
// path; an empty path keeps them in memory only.
func New(cfg model.AppConfig, path string, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeView,
		cfg:     cfg,
		path:    path,
		check:   CheckHealth,
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// WithChecker replaces the health probe.
func (m Model) WithChecker(c HealthChecker) Model {
	m.check = c
	return m
}

// Config returns the settings currently in effect.
func (m Model) Config() model.AppConfig {
	return m.cfg
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Busy reports whether a form or probe owns the keyboard.
func (m Model) Busy() bool {
	return m.mode == ModeForm || m.mode == ModeTesting
}

// Reset returns to the overview and clears transient state.
func (m *Model) Reset() {
	m.mode = ModeView
	m.statusMsg = ""
	m.health = nil
	m.probeErr = nil
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case probeResultMsg:
		if m.mode != ModeTesting {
			return m, nil
		}
		if msg.err != nil || !msg.save {
			m.health = msg.health
			m.probeErr = msg.err
			m.mode = ModeResult
			return m, nil
		}
		return m, m.save(msg.cfg)

	case savedInternalMsg:
		m.mode = ModeView
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.cfg
		m.statusMsg = "Settings saved"
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case spinner.TickMsg:
		if m.mode == ModeTesting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeView:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return DoneMsg{} }
		case msg.String() == "e":
			cmd := m.startForm()
			return m, cmd
		case msg.String() == "t":
			m.mode = ModeTesting
			return m, tea.Batch(m.spinner.Tick, m.probe(m.cfg, false))
		}
		return m, nil

	case ModeForm:
		return m.updateForm(msg)

	case ModeTesting:
		// Only allow escape while probing
		if msg.String() == "esc" {
			m.mode = ModeView
		}
		return m, nil

	case ModeResult:
		switch msg.String() {
		case "enter", "esc":
			m.mode = ModeView
			m.health = nil
			m.probeErr = nil
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) startForm() tea.Cmd {
	m.formBaseURL = m.cfg.API.BaseURL
	m.formTimeout = m.cfg.API.Timeout.String()
	m.formPerPage = strconv.Itoa(m.cfg.API.PerPage)
	m.formInterval = m.cfg.Sync.Interval.String()
	m.statusMsg = ""
	m.mode = ModeForm
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Description("Root of the todo API (e.g., http://127.0.0.1:8000)").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout").
				Description("Per-request limit, e.g. 10s").
				Value(&m.formTimeout).
				Validate(validateDuration),
			huh.NewInput().
				Title("Todos per page").
				Description(fmt.Sprintf("1 to %d", model.MaxPerPage)).
				Value(&m.formPerPage).
				Validate(validatePerPage),
			huh.NewInput().
				Title("Refresh interval").
				Description("How often to reload in the background, e.g. 30s").
				Value(&m.formInterval).
				Validate(validateDuration),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.formConfig()
		if err != nil {
			m.statusMsg = err.Error()
			m.mode = ModeView
			return m, nil
		}
		m.mode = ModeTesting
		return m, tea.Batch(m.spinner.Tick, m.probe(cfg, true))
	case huh.StateAborted:
		m.mode = ModeView
		return m, nil
	}
	return m, cmd
}

// formConfig applies the form values to a copy of the current settings.
func (m Model) formConfig() (model.AppConfig, error) {
	cfg := m.cfg
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.formBaseURL), "/")

	var err error
	if cfg.API.Timeout, err = time.ParseDuration(strings.TrimSpace(m.formTimeout)); err != nil {
		return cfg, fmt.Errorf("request timeout: %w", err)
	}
	if cfg.API.PerPage, err = strconv.Atoi(strings.TrimSpace(m.formPerPage)); err != nil {
		return cfg, fmt.Errorf("todos per page: %w", err)
	}
	if cfg.Sync.Interval, err = time.ParseDuration(strings.TrimSpace(m.formInterval)); err != nil {
		return cfg, fmt.Errorf("refresh interval: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// probe checks cfg's server. When save is set a successful probe is
// followed by writing cfg.
func (m Model) probe(cfg model.AppConfig, save bool) tea.Cmd {
	check := m.check
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout+time.Second)
		defer cancel()
		h, err := check(ctx, cfg.API.BaseURL, cfg.API.Timeout)
		return probeResultMsg{health: h, err: err, save: save, cfg: cfg}
	}
}

func (m Model) save(cfg model.AppConfig) tea.Cmd {
	path := m.path
	return func() tea.Msg {
		if path == "" {
			return savedInternalMsg{cfg: cfg}
		}
		return savedInternalMsg{cfg: cfg, err: model.SaveConfig(path, &cfg)}
	}
}

// View renders the settings view based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		if m.form == nil {
			return ""
		}
		return m.frame(m.form.View())
	case ModeTesting:
		return m.frame(fmt.Sprintf(
			"%s Testing connection...\n\nPress esc to cancel.",
			m.spinner.View(),
		))
	case ModeResult:
		return m.frame(m.viewResult())
	default:
		return m.frame(m.viewSettings())
	}
}

func (m Model) viewSettings() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valueStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("API URL", m.cfg.API.BaseURL)
	row("Request timeout", m.cfg.API.Timeout.String())
	row("Todos per page", strconv.Itoa(m.cfg.API.PerPage))
	row("Refresh interval", m.cfg.Sync.Interval.String())
	if m.path != "" {
		row("Config file", m.path)
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("e edit | t test connection | esc back"))
	return b.String()
}

func (m Model) viewResult() string {
	hint := lipgloss.NewStyle().Foreground(theme.ColorGray).Render("enter/esc back")
	if m.probeErr != nil {
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		return errStyle.Render("Connection failed") + "\n\n" +
			gateway.Message(m.probeErr) + "\n\n" + hint
	}

	okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
	version := "unknown"
	if m.health != nil && m.health.Version != "" {
		version = m.health.Version
	}
	return okStyle.Render("Connection successful") + "\n\n" +
		fmt.Sprintf("Server version: %s", version) + "\n\n" + hint
}

func (m Model) frame(content string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://127.0.0.1:8000)")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 10s or 1m")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validatePerPage(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 || n > model.MaxPerPage {
		return fmt.Errorf("must be between 1 and %d", model.MaxPerPage)
	}
	return nil
}
