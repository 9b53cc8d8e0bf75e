package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/chatpanel/internal/api"
	"github.com/diogo/chatpanel/internal/chat"
	"github.com/diogo/chatpanel/internal/models"
	"github.com/diogo/chatpanel/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

type (
	replyMsg struct {
		reply models.Message
		err   error
	}
	infoExpiredMsg struct{}
)

// Options configures the chat panel.
type Options struct {
	// Context is passed to every chat request.
	Context context.Context

	Endpoint  string
	StatusURL string
	Prober    Prober

	Render  render.Options
	Palette render.Palette

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	Logger    *zap.Logger
}

// Model represents the TUI state
type Model struct {
	orch      *chat.Orchestrator
	toasts    *ToastNotifier
	refresher *RefreshService
	opts      Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready          bool
	animationFrame int

	queue       []toast
	nextToastID int

	status    *api.ProbeResult
	statusErr error

	// info is a short-lived confirmation such as "Copied".
	info string

	width  int
	height int
}

// NewModel creates the chat panel around orch. toasts and refresher must be
// the same values registered on orch with chat.WithNotifier and
// chat.WithRefresher.
func NewModel(orch *chat.Orchestrator, toasts *ToastNotifier, refresher *RefreshService, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Render.Width == 0 {
		opts.Render = render.DefaultOptions()
	}
	if opts.Palette.Name != "" {
		ApplyPalette(opts.Palette)
	}

	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Type your message here (at least %d characters)...", orch.MinPromptLength())
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.SetValue(orch.Input())
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		orch:      orch,
		toasts:    toasts,
		refresher: refresher,
		opts:      opts,
		textarea:  ta,
		spinner:   s,
	}
}

// Init starts the listeners and the first status probe.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.toasts != nil {
		cmds = append(cmds, waitForToast(m.toasts.C()))
	}
	if m.refresher != nil {
		cmds = append(cmds, waitForRefresh(m.refresher.ch))
	}
	if cmd := probeCmd(m.opts.Prober, m.opts.StatusURL); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

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
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.orch.Loading() {
				return m, nil
			}
			m, cmd = m.submit()
			if m.orch.Loading() {
				cmd = tea.Batch(cmd, m.spinner.Tick, animationTick())
			}
			return m, cmd
		}

	case replyMsg:
		m = m.complete(msg)

	case toastMsg:
		id := m.nextToastID
		m.nextToastID++
		m.queue = append(m.queue, toast{id: id, n: msg.n})
		cmds = append(cmds, waitForToast(m.toasts.C()), dismissToastAfter(id, ToastDuration))

	case toastExpiredMsg:
		m.dismissToast(msg.id)

	case refreshMsg:
		cmds = append(cmds, waitForRefresh(m.refresher.ch))
		if cmd := probeCmd(m.opts.Prober, m.opts.StatusURL); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case statusMsg:
		result := msg.result
		m.status = &result
		m.statusErr = msg.err

	case infoExpiredMsg:
		m.info = ""

	case spinner.TickMsg:
		if m.orch.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.orch.Loading() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// The input is disabled while a message is in flight.
	if !m.orch.Loading() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
			m.orch.SetInput(m.textarea.Value())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4
	inputHeight := 7
	statusHeight := 1
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
}

// submit handles Enter. Slash commands are handled locally; anything else
// goes through the orchestrator and the returned command performs the
// request.
func (m Model) submit() (Model, tea.Cmd) {
	input := m.textarea.Value()

	switch strings.TrimSpace(input) {
	case "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		m.textarea.Reset()
		m.orch.ResetInput()
		return m, nil
	case "/copy":
		return m.copyLastReply()
	}

	pending, err := m.orch.Begin(input)
	if err != nil {
		if !errors.Is(err, chat.ErrSubmitting) {
			m.opts.Logger.Debug("input rejected", zap.Error(err))
		}
		return m, nil
	}

	m.animationFrame = 0
	m.info = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, m.sendCmd(pending)
}

func (m Model) sendCmd(pending []models.Message) tea.Cmd {
	send := m.orch.SendFunc(m.opts.Context, pending)
	return func() tea.Msg {
		reply, err := send()
		return replyMsg{reply: reply, err: err}
	}
}

// complete merges a finished request. The input is cleared only when a
// reply arrived.
func (m Model) complete(msg replyMsg) Model {
	out := m.orch.Complete(msg.reply, msg.err)
	if out.OK() {
		m.textarea.Reset()
	}
	m.updateViewport()
	m.viewport.GotoBottom()
	return m
}

func (m Model) copyLastReply() (Model, tea.Cmd) {
	reply, ok := m.orch.LastReply()
	if !ok {
		m.info = "Nothing to copy yet"
		return m, clearInfoAfter(2 * time.Second)
	}
	if err := m.opts.Clipboard(reply.Content); err != nil {
		m.opts.Logger.Warn("clipboard write failed", zap.Error(err))
		if m.toasts != nil {
			m.toasts.Notify(chat.Notification{
				Variant:     chat.VariantDestructive,
				Title:       "Copy failed",
				Description: err.Error(),
			})
		}
		return m, nil
	}
	m.textarea.Reset()
	m.orch.ResetInput()
	m.info = "Copied last reply to clipboard"
	return m, clearInfoAfter(2 * time.Second)
}

func clearInfoAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return infoExpiredMsg{} })
}

func (m *Model) dismissToast(id int) {
	kept := make([]toast, 0, len(m.queue))
	for _, t := range m.queue {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.queue = kept
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	sections = append(sections, headerStyle.Width(contentWidth).Render(m.renderHeader()))

	var messagesContent string
	if m.orch.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.orch.Loading() {
		inputContent = m.renderLoadingAnimation()
	} else {
		parts := []string{inputLabelStyle.Render("You"), m.textarea.View()}
		if ferr := m.orch.FieldError(); ferr != nil {
			parts = append(parts, fieldErrorStyle.Render(ferr.Message))
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.info != "" {
		sections = append(sections, infoStyle.Render("  "+m.info))
	}

	if toasts := m.renderToasts(contentWidth / 2); toasts != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(contentWidth, lipgloss.Right, toasts))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render("✦ Chat")}
	if host := endpointHost(m.opts.Endpoint); host != "" {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(host))
	}
	if indicator := m.renderStatus(); indicator != "" {
		parts = append(parts, hintStyle.Render("  •  "), indicator)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderStatus() string {
	if m.status == nil {
		return ""
	}
	if m.statusErr == nil && m.status.Online() {
		return onlineStyle.Render(fmt.Sprintf("● online %s", m.status.Latency.Round(time.Millisecond)))
	}
	return offlineStyle.Render("● offline")
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("No messages yet"),
		"",
		welcomeStyle.Width(width).Render("Start a conversation by typing a message below"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderLoadingAnimation() string {
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}
	frame := m.animationFrame

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+frame)%len(gradientColors)])
		bar.WriteString(style.Render(barChars[(i+frame/2)%len(barChars)]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for a reply ")
	return fmt.Sprintf("%s %s %s", m.spinner.View(), bar.String(), text)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
		{"/copy", "Copy reply"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

func (m Model) renderToasts(width int) string {
	if len(m.queue) == 0 {
		return ""
	}
	if width < 30 {
		width = 30
	}

	visible := m.queue
	if len(visible) > maxVisibleToasts {
		visible = visible[len(visible)-maxVisibleToasts:]
	}

	rendered := make([]string, len(visible))
	for i, t := range visible {
		rendered[i] = renderToast(t.n, width)
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// updateViewport re-renders the conversation into the scroll container.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.orch.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ Assistant")
			rendered := render.Reply(msg.Content, m.opts.Render.WithWidth(bubbleWidth-4))
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// Run starts the chat panel in the alternate screen.
func Run(orch *chat.Orchestrator, toasts *ToastNotifier, refresher *RefreshService, opts Options) error {
	m := NewModel(orch, toasts, refresher, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
