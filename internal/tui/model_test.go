package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gamemaster/internal/config"
	"github.com/diogo/gamemaster/internal/conversation"
	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
	"github.com/diogo/gamemaster/internal/provider"
	"github.com/diogo/gamemaster/internal/render"
)

func testVariant(policy config.BootstrapPolicy) config.Variant {
	return config.Variant{
		Name:         "oregon-trail",
		Title:        "Oregon Trail",
		Tagline:      "Lead your band of travelers west",
		SystemPrompt: "You are a game master.",
		Bootstrap:    policy,
	}
}

func newTestModel(t *testing.T, p provider.Provider, v config.Variant) (Model, *conversation.Controller) {
	t.Helper()

	bridge := NewBridge()
	ctrl := conversation.New(v.PersonaMessage(), p,
		conversation.WithObserver(bridge.Observe),
		conversation.WithStallTimeout(0),
	)
	t.Cleanup(ctrl.Close)

	m := NewModel(context.Background(), Options{
		Controller: ctrl,
		Bridge:     bridge,
		Variant:    v,
		Provider:   "demo",
		Model:      "scripted",
		Render:     render.DefaultOptions().WithStyle(render.StyleNoTTY),
		ExportDir:  t.TempDir(),
	})
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctrl
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, text string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// settle waits for in-flight provider calls and refreshes the model
func settle(m Model, ctrl *conversation.Controller) Model {
	ctrl.Wait()
	return update(m, controllerMsg{})
}

func TestNewModel_BeforeWindowSize(t *testing.T) {
	ctrl := conversation.New(models.NewSystemMessage("p"), nil)
	m := NewModel(context.Background(), Options{Controller: ctrl, Variant: testVariant(config.BootstrapAuto)})

	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("expected initializing view, got %q", got)
	}
	if m.exportDir != "." {
		t.Errorf("expected default export dir '.', got %q", m.exportDir)
	}
	if m.bridge == nil {
		t.Error("expected a bridge to be created")
	}
}

func TestStartGame_Auto(t *testing.T) {
	p := provider.NewScripted("You arrive ", "in Independence.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapAuto))

	if cmd := m.Init(); cmd == nil {
		t.Fatal("expected Init to return a command")
	}

	m = update(m, startGameMsg{})
	m = settle(m, ctrl)

	want := []models.Message{
		models.NewUserMessage(models.StartGamePrompt),
		models.NewAssistantMessage("You arrive in Independence."),
	}
	got := m.snapshot.Messages
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if !strings.Contains(m.View(), "Independence") {
		t.Error("expected the reply in the view")
	}

	// The game opens only once per session
	m = update(m, startGameMsg{})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	ctrl.Wait()
	if n := len(ctrl.Transcript()); n != 3 {
		t.Errorf("expected a single start, transcript has %d entries", n)
	}
	if len(p.Requests()) != 1 {
		t.Errorf("expected 1 request, got %d", len(p.Requests()))
	}
}

func TestView_RepeatedRenderIsStable(t *testing.T) {
	v := testVariant(config.BootstrapAuto)
	v.SystemPrompt = "You are a secret game master persona."
	p := provider.NewScripted("The wagon ", "rolls west.")
	m, ctrl := newTestModel(t, p, v)

	m = update(m, startGameMsg{})
	m = settle(m, ctrl)

	first := m.View()
	if !strings.Contains(first, "rolls west.") {
		t.Fatalf("expected the reply in the view, got %q", first)
	}

	m = update(m, controllerMsg{})
	if second := m.View(); second != first {
		t.Errorf("view changed without a state change:\nfirst:  %q\nsecond: %q", first, second)
	}
	if strings.Contains(first, "secret game master persona") {
		t.Error("the persona prompt must not be shown")
	}
}

func TestStartGame_Button(t *testing.T) {
	p := provider.NewScripted("Welcome.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapButton))

	if !m.awaitingStart {
		t.Fatal("expected the start screen")
	}
	if !strings.Contains(m.View(), "Press Enter") {
		t.Error("expected start instructions in the view")
	}

	// Typing is ignored on the start screen
	m = typeText(m, "x")
	if ctrl.PendingInput() != "" {
		t.Errorf("expected no pending input, got %q", ctrl.PendingInput())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(m, ctrl)

	if m.awaitingStart {
		t.Error("expected start screen to close")
	}
	tr := ctrl.Transcript()
	if len(tr) != 3 || tr[1].Content != models.StartGamePrompt {
		t.Errorf("unexpected transcript %v", tr)
	}
}

func TestStartGame_Preset(t *testing.T) {
	p := provider.NewScripted("The year is 1492.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapPreset))

	if m.textarea.Value() != models.StartGamePrompt {
		t.Errorf("expected prefilled input, got %q", m.textarea.Value())
	}
	if ctrl.PendingInput() != models.StartGamePrompt {
		t.Errorf("expected pending input %q, got %q", models.StartGamePrompt, ctrl.PendingInput())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(m, ctrl)

	if m.textarea.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.textarea.Value())
	}
	tr := ctrl.Transcript()
	if len(tr) != 3 || tr[1] != models.NewUserMessage(models.StartGamePrompt) {
		t.Errorf("unexpected transcript %v", tr)
	}
	if !m.started {
		t.Error("expected the game to count as started")
	}
}

func TestEnter_SubmitsTypedInput(t *testing.T) {
	p := provider.NewScripted("You ford the river.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapButton))
	m.awaitingStart = false

	m = typeText(m, "ford the river")
	if ctrl.PendingInput() != "ford the river" {
		t.Errorf("expected pending input to follow the textarea, got %q", ctrl.PendingInput())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(m, ctrl)

	if ctrl.PendingInput() != "" {
		t.Errorf("expected pending input cleared, got %q", ctrl.PendingInput())
	}
	msgs := m.snapshot.Messages
	if len(msgs) != 2 || msgs[0].Content != "ford the river" || msgs[1].Content != "You ford the river." {
		t.Errorf("unexpected messages %v", msgs)
	}
}

func TestEnter_EmptyInputIsIgnored(t *testing.T) {
	p := provider.NewScripted("never")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapButton))
	m.awaitingStart = false

	m = typeText(m, "   ")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	ctrl.Wait()

	if len(p.Requests()) != 0 {
		t.Errorf("expected no request, got %d", len(p.Requests()))
	}
	if len(ctrl.Transcript()) != 1 {
		t.Errorf("expected persona only, got %v", ctrl.Transcript())
	}
}

func TestBusy_ShowsSendingAndBlocksInput(t *testing.T) {
	p := provider.NewScripted()
	p.Hang = true
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapButton))
	m.awaitingStart = false

	m = typeText(m, "hunt")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.snapshot.Busy {
		t.Fatal("expected busy after submit")
	}
	if !strings.Contains(m.View(), "Sending...") {
		t.Error("expected Sending... while busy")
	}

	m = typeText(m, "more")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if n := len(ctrl.Transcript()); n != 2 {
		t.Errorf("expected submissions to be ignored while busy, transcript has %d entries", n)
	}
}

func TestUnavailableProvider_ShowsModal(t *testing.T) {
	m, ctrl := newTestModel(t, nil, testVariant(config.BootstrapButton))
	m.awaitingStart = false

	m = typeText(m, "Hello")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.modal == "" {
		t.Fatal("expected a modal notice")
	}
	view := m.View()
	if !strings.Contains(view, "No game master is available") {
		t.Error("expected the notice in the view")
	}

	tr := ctrl.Transcript()
	if len(tr) != 2 || tr[1] != models.NewUserMessage("Hello") {
		t.Errorf("expected the user message to be kept, got %v", tr)
	}
	if m.snapshot.Busy {
		t.Error("expected busy to be cleared")
	}
	if !apperrors.IsUnavailable(m.snapshot.Err) {
		t.Errorf("expected unavailable error, got %v", m.snapshot.Err)
	}

	// Keys other than dismiss are swallowed by the modal
	m = typeText(m, "x")
	if m.textarea.Value() != "" {
		t.Errorf("expected modal to swallow keys, got %q", m.textarea.Value())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != "" {
		t.Error("expected Enter to dismiss the modal")
	}

	// The same error does not reopen the modal
	m = update(m, controllerMsg{})
	if m.modal != "" {
		t.Error("expected the modal to stay closed")
	}
}

func TestRestart(t *testing.T) {
	p := provider.NewScripted("Day 1.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapAuto))

	m = update(m, startGameMsg{})
	m = settle(m, ctrl)
	if len(m.snapshot.Messages) != 2 {
		t.Fatalf("expected a started game, got %v", m.snapshot.Messages)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)

	if len(m.snapshot.Messages) != 0 {
		t.Errorf("expected an empty transcript after restart, got %v", m.snapshot.Messages)
	}
	if m.started {
		t.Error("expected started to be cleared")
	}
	if cmd == nil {
		t.Fatal("expected auto policy to start again")
	}
	if _, ok := cmd().(startGameMsg); !ok {
		t.Error("expected a start game message")
	}
}

func TestRestart_ButtonShowsStartScreen(t *testing.T) {
	p := provider.NewScripted("Day 1.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapButton))

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = settle(m, ctrl)
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlR})

	if !m.awaitingStart {
		t.Error("expected the start screen after restart")
	}
}

func TestGameOverBanner(t *testing.T) {
	p := provider.NewScripted("Your party perished. GAME OVER")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapAuto))

	m = update(m, startGameMsg{})
	m = settle(m, ctrl)

	if !m.gameOver() {
		t.Fatal("expected game over to be detected")
	}
	if !strings.Contains(m.statusLine(), "Ctrl+R to play again") {
		t.Errorf("expected the restart hint, got %q", m.statusLine())
	}

	// Submissions keep working after the marker
	m = typeText(m, "again")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	ctrl.Wait()
	if len(ctrl.Transcript()) != 5 {
		t.Errorf("expected the game to continue, got %d entries", len(ctrl.Transcript()))
	}
}

func TestExportTranscript(t *testing.T) {
	p := provider.NewScripted("You arrive in Independence.")
	m, ctrl := newTestModel(t, p, testVariant(config.BootstrapAuto))

	m = update(m, startGameMsg{})
	m = settle(m, ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if cmd == nil {
		t.Fatal("expected an export command")
	}
	msg, ok := cmd().(noticeMsg)
	if !ok {
		t.Fatal("expected a notice message")
	}
	if msg.err != nil {
		t.Fatalf("unexpected export error: %v", msg.err)
	}

	entries, err := os.ReadDir(m.exportDir)
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected markdown and pdf files, got %d entries", len(entries))
	}

	m = update(m, msg)
	if !strings.Contains(m.notice, "Saved") {
		t.Errorf("expected saved notice, got %q", m.notice)
	}
}

func TestExportTranscript_Empty(t *testing.T) {
	m, _ := newTestModel(t, provider.NewScripted(), testVariant(config.BootstrapButton))

	msg := m.exportTranscript()().(noticeMsg)
	if msg.err == nil {
		t.Error("expected an error for an empty transcript")
	}
	m = update(m, msg)
	if m.notice == "" {
		t.Error("expected the error notice to be shown")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, provider.NewScripted(), testVariant(config.BootstrapButton))

	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("expected quit command for %v", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg for %v", key)
		}
	}
}

func TestBridge(t *testing.T) {
	b := NewBridge()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			b.Observe(conversation.Event{Kind: conversation.EventChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked on a full buffer")
	}

	msg := b.wait()()
	if _, ok := msg.(controllerMsg); !ok {
		t.Errorf("expected controllerMsg, got %T", msg)
	}
}

func TestProviderLabel(t *testing.T) {
	m := Model{}
	if m.providerLabel() != "no provider" {
		t.Errorf("unexpected label %q", m.providerLabel())
	}
	m.provider = "gemini"
	if m.providerLabel() != "gemini" {
		t.Errorf("unexpected label %q", m.providerLabel())
	}
	m.modelName = "gemini-2.5-flash"
	if m.providerLabel() != "gemini / gemini-2.5-flash" {
		t.Errorf("unexpected label %q", m.providerLabel())
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("expected empty output for nil")
	}

	out := FormatError(apperrors.NewTimeoutError("no response for 90s"))
	if !strings.Contains(out, "no response for 90s") {
		t.Errorf("expected the error text, got %q", out)
	}
	if !strings.Contains(out, "Hint:") {
		t.Errorf("expected a hint, got %q", out)
	}

	if strings.Contains(FormatError(errors.New("plain")), "Hint:") {
		t.Error("plain errors carry no hint")
	}
}

func TestApplyTheme(t *testing.T) {
	original := render.GetTUITheme().Name
	defer ApplyTheme(original)

	if !ApplyTheme("chrono-violet") {
		t.Fatal("expected chrono-violet to apply")
	}
	if colorPrimary != render.ChronoVioletTheme.Primary {
		t.Error("expected styles to follow the theme")
	}
	if ApplyTheme("nonexistent") {
		t.Error("expected unknown theme to be rejected")
	}
}
