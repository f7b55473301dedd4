package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sidequest/internal/prefs"
	"github.com/five82/sidequest/internal/profile"
	"github.com/five82/sidequest/internal/questsync"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBoard View = iota
	ViewProfile
	ViewHistory
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewBoard:
		return "Board"
	case ViewProfile:
		return "Profile"
	case ViewHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// ViewFromTab maps a prefs tab to its view.
func ViewFromTab(tab prefs.Tab) View {
	switch tab {
	case prefs.TabProfile:
		return ViewProfile
	case prefs.TabHistory:
		return ViewHistory
	default:
		return ViewBoard
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Quests    *questsync.Coordinator
	Profile   *profile.Adapter
	Logger    *slog.Logger
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	StartView View
	Compact   bool // one line per quest on the board
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	quests    *questsync.Coordinator
	profile   *profile.Adapter
	logger    *slog.Logger
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Data state
	snapshot    state.Snapshot
	pending     map[string]bool
	lastUpdated time.Time
	loading     bool

	// Board state
	selectedRow int
	compact     bool

	// Profile state
	profileField int
	editing      bool
	input        textinput.Model
	inputErr     string

	// History state
	history        []sidequest.Quest
	stats          *sidequest.HistoryStats
	historyErr     error
	historyLoading bool

	// Status line
	flash    string
	flashErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	input := textinput.New()
	input.CharLimit = profile.MaxNotesLength

	return Model{
		ctx:         ctx,
		quests:      opts.Quests,
		profile:     opts.Profile,
		logger:      logger,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		currentView: opts.StartView,
		compact:     opts.Compact,
		spinner:     sp,
		input:       input,
		pending:     map[string]bool{},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	if m.quests != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.quests))
	}
	if m.profile != nil {
		if m.currentView == ViewProfile {
			m.profile.Focus()
		} else {
			// The adapter starts focused and clean, so this never saves.
			_ = m.profile.Blur(m.ctx)
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-24, 20)
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.pending = msg.pending
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setFlash(msg.op+" failed: "+describeError(msg.err), true)
		} else if msg.op == opRefresh {
			m.setFlash("New quests generated", false)
		}
		return m, fetchSnapshotCmd(m.quests)

	case transitionMsg:
		if msg.err != nil {
			m.setFlash(transitionVerb(msg.status)+" failed: "+describeError(msg.err), true)
		} else {
			m.setFlash(transitionVerb(msg.status)+": "+truncate(msg.quest.Text, 60), false)
		}
		return m, fetchSnapshotCmd(m.quests)

	case profileLoadedMsg:
		if msg.err != nil {
			m.setFlash("Profile load failed: "+describeError(msg.err), true)
		}
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.setFlash("Profile save failed: "+describeError(msg.err), true)
		}
		return m, nil

	case historyMsg:
		m.historyLoading = false
		m.historyErr = msg.err
		if msg.err == nil {
			m.history = msg.page.Quests
			stats := msg.stats
			m.stats = &stats
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quitCmd()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = name })
		return m, nil

	case key.Matches(msg, m.keys.Compact):
		m.compact = !m.compact
		compact := m.compact
		m.savePrefs(func(p *prefs.Prefs) { p.Compact = compact })
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.currentView + 1) % viewCount)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.currentView + viewCount - 1) % viewCount)

	case key.Matches(msg, m.keys.ViewBoard):
		return m.switchView(ViewBoard)

	case key.Matches(msg, m.keys.ViewProfile):
		return m.switchView(ViewProfile)

	case key.Matches(msg, m.keys.ViewHistory):
		return m.switchView(ViewHistory)
	}

	switch m.currentView {
	case ViewBoard:
		return m.handleBoardKey(msg)
	case ViewProfile:
		return m.handleProfileKey(msg)
	case ViewHistory:
		return m.handleHistoryKey(msg)
	}

	return m, nil
}

// switchView moves to another view. Leaving the profile blurs it, which
// flushes any pending draft.
func (m Model) switchView(to View) (tea.Model, tea.Cmd) {
	if to == m.currentView {
		return m, nil
	}
	from := m.currentView
	m.currentView = to

	var cmds []tea.Cmd
	if m.profile != nil {
		if from == ViewProfile {
			cmds = append(cmds, blurProfileCmd(m.ctx, m.profile))
		}
		if to == ViewProfile {
			m.profile.Focus()
		}
	}
	if to == ViewHistory && m.quests != nil && !m.historyLoading {
		m.historyLoading = true
		cmds = append(cmds, loadHistoryCmd(m.ctx, m.quests))
	}
	return m, tea.Batch(cmds...)
}

// quitCmd saves any outstanding profile draft before quitting.
func (m Model) quitCmd() tea.Cmd {
	if m.profile == nil {
		return tea.Quit
	}
	return tea.Sequence(closeProfileCmd(m.ctx, m.profile), tea.Quit)
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.quests != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.quests))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	if isErr {
		m.logger.Warn("ui action failed", "message", text)
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.renderBoard()
	case ViewProfile:
		return m.renderProfile()
	case ViewHistory:
		return m.renderHistory()
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

// savePrefs persists a settings change. Failures are logged; the change still
// applies for this run.
func (m Model) savePrefs(fn func(*prefs.Prefs)) {
	if _, err := prefs.Update(m.prefsPath, fn); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}
