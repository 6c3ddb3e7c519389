package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gamemaster/internal/config"
	"github.com/diogo/gamemaster/internal/conversation"
	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
	"github.com/diogo/gamemaster/internal/render"
	"github.com/diogo/gamemaster/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// startGameMsg asks the model to open the game
	startGameMsg struct{}
	// noticeMsg is a transient status line
	noticeMsg struct {
		text string
		err  error
	}
)

// Options configures the game TUI
type Options struct {
	Controller *conversation.Controller
	Bridge     *Bridge
	Variant    config.Variant
	Provider   string
	Model      string
	Render     render.Options
	// ExportDir receives Ctrl+E exports (default: working directory)
	ExportDir string
}

// Model represents the TUI state
type Model struct {
	ctx       context.Context
	ctrl      *conversation.Controller
	bridge    *Bridge
	variant   config.Variant
	provider  string
	modelName string
	renderOpt render.Options
	exportDir string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	snapshot       conversation.Snapshot
	shownErr       error
	ready          bool
	started        bool
	awaitingStart  bool
	notice         string
	modal          string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewModel creates the game TUI model
func NewModel(ctx context.Context, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "What do you do?"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	bridge := opts.Bridge
	if bridge == nil {
		bridge = NewBridge()
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		bridge:    bridge,
		variant:   opts.Variant,
		provider:  opts.Provider,
		modelName: opts.Model,
		renderOpt: opts.Render,
		exportDir: exportDir,
		textarea:  ta,
		spinner:   s,
	}
	m.applyBootstrap()
	m.snapshot = m.ctrl.Snapshot()
	return m
}

// applyBootstrap prepares the opening of a game for the variant's policy
func (m *Model) applyBootstrap() {
	m.started = false
	m.awaitingStart = false
	switch m.variant.Policy() {
	case config.BootstrapButton:
		m.awaitingStart = true
	case config.BootstrapPreset:
		m.textarea.SetValue(models.StartGamePrompt)
		m.ctrl.SetPendingInput(models.StartGamePrompt)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
		m.bridge.wait(),
	}
	if m.variant.Policy() == config.BootstrapAuto {
		cmds = append(cmds, startGame)
	}
	return tea.Batch(cmds...)
}

func startGame() tea.Msg {
	return startGameMsg{}
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 2 // Status bar and notice line
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4
		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		if m.modal != "" {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "esc", " ":
				m.modal = ""
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+s":
			return m.Update(startGameMsg{})

		case "ctrl+r":
			m.ctrl.Reset()
			m.textarea.Reset()
			m.notice = ""
			m.shownErr = nil
			m.applyBootstrap()
			m.refresh()
			if m.variant.Policy() == config.BootstrapAuto {
				return m, startGame
			}
			return m, nil

		case "ctrl+y":
			return m, m.copyTranscript()

		case "ctrl+e":
			return m, m.exportTranscript()

		case "enter":
			if m.awaitingStart {
				return m.Update(startGameMsg{})
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if input == "/quit" || input == "/exit" {
				return m, tea.Quit
			}
			if m.ctrl.Submit(m.ctx, m.textarea.Value()) {
				m.started = true
				m.textarea.Reset()
				m.animationFrame = 0
				m.refresh()
				return m, tea.Batch(m.spinner.Tick, animationTick())
			}
			return m, nil
		}

	case startGameMsg:
		if m.started {
			return m, nil
		}
		m.started = true
		m.awaitingStart = false
		m.textarea.Reset()
		m.ctrl.StartGame(m.ctx)
		m.animationFrame = 0
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, animationTick())

	case controllerMsg:
		m.refresh()
		cmds = append(cmds, m.bridge.wait())

	case noticeMsg:
		if msg.err != nil {
			m.notice = errorStyle.Render("✗ " + msg.err.Error())
		} else {
			m.notice = noticeStyle.Render(msg.text)
		}

	case spinner.TickMsg:
		if m.snapshot.Busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.snapshot.Busy {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only key messages reach the textarea to prevent escape sequence leaks
	if key, ok := msg.(tea.KeyMsg); ok && !m.snapshot.Busy && !m.awaitingStart {
		m.textarea, cmd = m.textarea.Update(key)
		cmds = append(cmds, cmd)
		m.ctrl.SetPendingInput(m.textarea.Value())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh reads the controller snapshot and scrolls to the newest text
func (m *Model) refresh() {
	m.snapshot = m.ctrl.Snapshot()

	if err := m.snapshot.Err; err != nil && err != m.shownErr {
		m.shownErr = err
		if apperrors.IsUnavailable(err) {
			m.modal = "No game master is available right now.\n\n" + apperrors.Hint(err)
		}
	}

	m.updateViewport()
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := m.renderOpt.WithWidth(bubbleWidth - 4)

	for i, msg := range m.snapshot.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ Game Master")
			rendered := render.Narration(msg.Content, opts)
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// gameOver reports whether the latest reply ended the game. Display only.
func (m Model) gameOver() bool {
	msgs := m.snapshot.Messages
	if len(msgs) == 0 {
		return false
	}
	last := msgs[len(msgs)-1]
	return last.Role == models.RoleAssistant && models.ContainsGameOver(last.Content)
}

// document builds the exportable transcript
func (m Model) document() transcript.Document {
	doc := transcript.NewDocument(m.variant.Title, m.ctrl.Transcript())
	doc.Variant = m.variant.Name
	doc.Provider = m.provider
	doc.Model = m.modelName
	return doc
}

func (m Model) copyTranscript() tea.Cmd {
	doc := m.document()
	return func() tea.Msg {
		if err := transcript.CopyToClipboard(doc); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Transcript copied to clipboard"}
	}
}

func (m Model) exportTranscript() tea.Cmd {
	doc := m.document()
	dir := m.exportDir
	return func() tea.Msg {
		paths, err := transcript.Export(dir, doc, transcript.FormatMarkdown, transcript.FormatPDF)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Saved " + strings.Join(paths, ", ")}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ " + m.variant.Title),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.providerLabel()),
	}
	if m.variant.Tagline != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			hintStyle.Render(m.variant.Tagline),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Transcript
	var messagesContent string
	switch {
	case m.modal != "":
		messagesContent = m.renderModal()
	case len(m.snapshot.Messages) == 0:
		messagesContent = m.renderWelcome()
	default:
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// Input
	var inputContent string
	switch {
	case m.snapshot.Busy:
		inputContent = m.renderLoadingAnimation()
	case m.awaitingStart:
		inputContent = hintStyle.Render("Press Enter or Ctrl+S to start the game")
	default:
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// Status
	sections = append(sections, m.renderStatusBar(contentWidth))
	if line := m.statusLine(); line != "" {
		sections = append(sections, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) providerLabel() string {
	switch {
	case m.provider == "":
		return "no provider"
	case m.modelName == "":
		return m.provider
	default:
		return m.provider + " / " + m.modelName
	}
}

// statusLine shows the latest error, notice or game over banner
func (m Model) statusLine() string {
	switch {
	case m.snapshot.Err != nil:
		return FormatError(m.snapshot.Err)
	case m.notice != "":
		return m.notice
	case m.gameOver():
		return gameOverStyle.Render("GAME OVER  ") + hintStyle.Render("Ctrl+R to play again")
	default:
		return ""
	}
}

// renderWelcome renders the start screen shown before the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render(m.variant.Title)

	text := m.variant.Description
	if text == "" {
		text = m.variant.Tagline
	}
	if m.awaitingStart {
		text += "\n\nPress Enter to start the game"
	}
	subtitle := welcomeStyle.Width(width).Render(text)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderModal renders the blocking notice
func (m Model) renderModal() string {
	width := m.viewport.Width - 8
	if width > 60 {
		width = 60
	}
	if width < 20 {
		width = 20
	}
	box := modalStyle.Width(width).Render(
		modalTitleStyle.Render("⚠ Notice") + "\n\n" + m.modal + "\n\n" + hintStyle.Render("Press Enter to continue"),
	)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Sending... ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^S", "Start"},
		{"^R", "Restart"},
		{"^Y", "Copy"},
		{"^E", "Export"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// Run starts the game TUI and blocks until the player quits
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
