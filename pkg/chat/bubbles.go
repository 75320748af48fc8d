// Package chat is an interactive terminal front end sending one prompt at a time to an llm.Client.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/savioxavier/termlink"

	"github.com/integrail/ollama-client/pkg/llm"
)

const maxMessages = 10

var (
	HeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF88")).Background(lipgloss.Color("#444444"))
	SenderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	ResponseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	ErrorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("330000")).Foreground(lipgloss.Color("#FF3333"))
)

type Config struct {
	Url        string             `json:"url" yaml:"url"`
	Model      string             `json:"model" yaml:"model"`
	MaxRetries int                `json:"maxRetries" yaml:"maxRetries"`
	Options    map[string]float64 `json:"options" yaml:"options"`
}

type responseMsg struct {
	res *llm.GenerateResponse
	err error
}

type CliClient struct {
	viewport       viewport.Model
	messages       []string
	textarea       textarea.Model
	loader         spinner.Model
	llm            llm.Client
	ctx            context.Context
	cfg            Config
	inProgress     bool
	lastAttempts   int
	err            error
	history        []string
	historyPointer int
}

func BubbleClient(ctx context.Context, cfg Config, client llm.Client) *CliClient {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt... (or press Ctrl^C to exit, use Up and Down to navigate)"
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4096

	ta.SetWidth(128)
	ta.SetHeight(6)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(160, 30)
	vp.SetContent(fmt.Sprintf("Chatting with %s. Type a prompt and press Enter to send.", cfg.Model))

	return &CliClient{
		ctx:      ctx,
		llm:      client,
		cfg:      cfg,
		textarea: ta,
		viewport: vp,
		messages: []string{},
		loader: spinner.New(
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
			spinner.WithSpinner(spinner.Dot),
		),
	}
}

func (m *CliClient) Init() tea.Cmd {
	return textarea.Blink
}

func (m *CliClient) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.inProgress {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case responseMsg:
		m.processResponse(msg.res, msg.err)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.historyPointer < len(m.history) {
				m.historyPointer++
				m.textarea.SetValue(m.history[len(m.history)-m.historyPointer])
			}
		case tea.KeyDown:
			if m.historyPointer > 1 {
				m.historyPointer--
				m.textarea.SetValue(m.history[len(m.history)-m.historyPointer])
			} else {
				m.historyPointer = 0
				m.textarea.SetValue("")
			}
		case tea.KeyEnter:
			prompt := strings.TrimSpace(m.textarea.Value())
			// one generation at a time
			if m.inProgress || prompt == "" {
				return m, nil
			}
			m.inProgress = true
			m.history = append(m.history, prompt)
			m.historyPointer = 0
			m.messages = append(m.messages, SenderStyle.Render("You: ")+prompt)
			m.updateMessages()
			m.textarea.Reset()
			return m, tea.Batch(m.loader.Tick, m.generate(prompt))
		}
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *CliClient) generate(prompt string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.llm.Generate(m.ctx, llm.GenerateRequest{
			Prompt:     prompt,
			Model:      m.cfg.Model,
			MaxRetries: m.cfg.MaxRetries,
			Options:    m.cfg.Options,
		})
		return responseMsg{res: res, err: err}
	}
}

func (m *CliClient) updateMessages() {
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
	m.viewport.SetContent(strings.Join(m.messages, "\n"))
	m.viewport.GotoBottom()
}

func (m *CliClient) processResponse(res *llm.GenerateResponse, err error) {
	defer m.updateMessages()
	m.inProgress = false
	if err != nil {
		m.err = err
		m.messages = append(m.messages, ErrorStyle.Render("ERROR: "+err.Error()))
		return
	}
	m.err = nil
	m.lastAttempts = res.Attempts
	if res.Empty {
		m.messages = append(m.messages, ResponseStyle.Render(m.cfg.Model+": ")+"<no response>")
		return
	}
	m.messages = append(m.messages, ResponseStyle.Render(m.cfg.Model+": ")+res.Response)
}

func (m *CliClient) Err() error {
	return m.err
}

func (m *CliClient) View() string {
	dialogView := m.textarea.View()
	if m.inProgress {
		dialogView = m.loader.View() + " generating..."
	}
	header := HeaderStyle.Render("Model: "+m.cfg.Model) + " " + termlink.ColorLink(m.cfg.Url, m.cfg.Url, "italic green")
	if m.lastAttempts > 0 {
		header += HeaderStyle.Render(fmt.Sprintf("; attempts: %d", m.lastAttempts))
	}
	return header + fmt.Sprintf(
		"\n\n%s\n\n%s",
		m.viewport.View(),
		dialogView,
	) + "\n\n"
}
