package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

const (
	PlaceHolderText = "Type a choice number, an action, or /help..."
)

// entryKind tags one line of the transcript.
type entryKind int

const (
	entryScene entryKind = iota
	entryPlayer
	entryNotice
	entryError
)

type entry struct {
	kind  entryKind
	title string
	text  string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	view         *playback.View
	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Story selection state
	showStoryModal bool
	stories        []story.Story
	selectedStory  int
	loadingStories bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type storiesLoadedMsg struct {
	stories []story.Story
	err     error
}

type playStartedMsg struct {
	view *playback.View
	err  error
}

type choiceMsg struct {
	text string
	resp *chooseResult
	err  error
}

type chooseResult struct {
	moved bool
	view  *playback.View
}

type actionMsg struct {
	view        *playback.View
	choicesNote string
	err         error
}

type viewMsg struct {
	view *playback.View
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sceneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	disabledChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")) // dark grey

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

const helpText = `
Commands:
• 1, 2, 3... - Follow a choice
• /restart - Go back to the start scene
• /copy - Copy the current scene to the clipboard
• /stories - Pick another story
• /help - Show this help
• Ctrl+C - Quit

Anything else you type is a custom action. The story will be
extended with a new scene that follows from it.
`

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		api:            api,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		showStoryModal: true,
		loadingStories: true,
	}
}

func (m ConsoleUI) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.config.Timeout)
}

// renderScene formats a scene and its numbered choices for the given width.
func renderScene(v *playback.View, width int) string {
	if width < 10 {
		width = 10
	}
	var b strings.Builder
	if v.CannotStart {
		b.WriteString(errorStyle.Render(wordwrap.String(v.Message, width)) + "\n")
		return b.String()
	}
	if v.Scene == nil {
		return ""
	}

	b.WriteString(sceneTitleStyle.Render(v.Scene.Title) + "\n\n")
	if body := strings.TrimSpace(v.Scene.Body); body != "" {
		b.WriteString(wordwrap.String(body, width) + "\n\n")
	}
	if v.Ending {
		b.WriteString(titleStyle.Render(v.Message) + "\n")
		return b.String()
	}
	for i, ch := range v.Choices {
		line := fmt.Sprintf("%d. %s", i+1, ch.Text)
		if ch.Enabled {
			b.WriteString(choiceStyle.Render(line) + "\n")
		} else {
			b.WriteString(disabledChoiceStyle.Render(line+" (unwritten)") + "\n")
		}
	}
	return b.String()
}

func writeMetadata(v *playback.View) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STORY") + "\n\n")

	content.WriteString("Title:\n")
	content.WriteString(v.StoryTitle + "\n\n")

	content.WriteString("Session:\n")
	id := v.SessionID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	content.WriteString(id + "\n\n")

	if v.Scene != nil {
		content.WriteString("Scene:\n")
		content.WriteString(v.Scene.Title + "\n\n")

		enabled := 0
		for _, ch := range v.Choices {
			if ch.Enabled {
				enabled++
			}
		}
		content.WriteString("Choices:\n")
		content.WriteString(fmt.Sprintf("%d of %d open\n\n", enabled, len(v.Choices)))

		content.WriteString("Words:\n")
		content.WriteString(fmt.Sprintf("%d\n", len(v.Words)))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /restart: Restart\n")

	return content.String()
}

// writeChatContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("STORYWEAVER") + "\n\n")
	content.WriteString("Pick a numbered choice or type your own action.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryScene:
			content.WriteString(separatorStyle.Render(e.title) + "\n\n")
		case entryPlayer:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-5) + "\n\n")
		case entryNotice:
			content.WriteString(promptStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		}
	}

	if m.view != nil {
		content.WriteString(renderScene(m.view, chatWidth))
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// setView records the scene being left in the transcript and shows the new one.
func (m *ConsoleUI) setView(v *playback.View) {
	if m.view != nil && m.view.Scene != nil && v != nil && v.Scene != nil && m.view.Scene.ID != v.Scene.ID {
		m.transcript = append(m.transcript, entry{kind: entryScene, title: "[" + m.view.Scene.Title + "]"})
	}
	m.view = v
	if v != nil {
		m.metaViewport.SetContent(writeMetadata(v))
	}
}

func (m *ConsoleUI) notice(text string) {
	m.transcript = append(m.transcript, entry{kind: entryNotice, text: text})
}

func (m *ConsoleUI) fail(err error) {
	m.transcript = append(m.transcript, entry{kind: entryError, text: describeError(err)})
}

// describeError turns API error kinds into something a player can act on.
func describeError(err error) string {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case "busy":
		return "Still writing the last scene, please wait."
	case "malformed":
		return "The storyteller replied with something unreadable. Nothing changed; try again."
	case "transport", "status":
		return "The storyteller could not be reached. Nothing changed; try again."
	case "unavailable":
		return "Custom actions are disabled on this server."
	default:
		return apiErr.Msg
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadStories()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showStoryModal {
		return m.updateStoryModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if n, err := strconv.Atoi(input); err == nil {
				return m.followChoice(n)
			}

			m.transcript = append(m.transcript, entry{kind: entryPlayer, text: input})
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.sendAction(input), progressTick())
		}

	case choiceMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.transcript = append(m.transcript, entry{kind: entryPlayer, text: msg.text})
			if !msg.resp.moved {
				m.notice("That path has not been written yet.")
			}
			m.setView(msg.resp.view)
		}
		m.writeChatContent()
		return m, nil

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			if msg.choicesNote != "" {
				m.notice(msg.choicesNote)
			}
			m.setView(msg.view)
		}
		m.writeChatContent()
		return m, nil

	case viewMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.setView(msg.view)
		}
		m.writeChatContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) followChoice(n int) (tea.Model, tea.Cmd) {
	if m.view == nil || n < 1 || n > len(m.view.Choices) {
		m.notice(fmt.Sprintf("There is no choice %d.", n))
		m.writeChatContent()
		return m, nil
	}
	ch := m.view.Choices[n-1]
	sessionID := m.view.SessionID
	return m, func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		resp, err := m.api.choose(ctx, sessionID, ch.ID)
		if err != nil {
			return choiceMsg{err: err}
		}
		return choiceMsg{text: ch.Text, resp: &chooseResult{moved: resp.Moved, view: &resp.View}}
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.notice(helpText)
	case "/restart":
		if m.view == nil {
			return m, nil
		}
		sessionID := m.view.SessionID
		m.transcript = append(m.transcript, entry{kind: entryPlayer, text: "/restart"})
		m.writeChatContent()
		return m, func() tea.Msg {
			ctx, cancel := m.ctx()
			defer cancel()
			v, err := m.api.restart(ctx, sessionID)
			return viewMsg{v, err}
		}
	case "/copy":
		if m.view == nil || m.view.Scene == nil {
			m.notice("Nothing to copy.")
			break
		}
		text := m.view.Scene.Title + "\n\n" + m.view.Scene.Body
		if err := clipboard.WriteAll(text); err != nil {
			m.fail(fmt.Errorf("copy failed: %w", err))
		} else {
			m.notice("Scene copied to the clipboard.")
		}
	case "/stories":
		m.showStoryModal = true
		m.loadingStories = true
		m.err = nil
		return m, m.loadStories()
	case "/quit":
		m.showQuitModal = true
		return m, nil
	default:
		m.notice("Unknown command " + cmd + ". Type /help for commands.")
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendAction(action string) tea.Cmd {
	sessionID := m.view.SessionID
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		resp, err := m.api.action(ctx, sessionID, action)
		if err != nil {
			return actionMsg{err: err}
		}
		note := ""
		if resp.Result.ChoicesError != "" {
			note = "No choices could be suggested for this scene, so it is a dead end for now."
		}
		return actionMsg{view: &resp.View, choicesNote: note}
	}
}

func (m ConsoleUI) loadStories() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		stories, err := m.api.listStories(ctx)
		return storiesLoadedMsg{stories, err}
	}
}

func (m ConsoleUI) startStory(storyID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		v, err := m.api.startPlay(ctx, storyID)
		return playStartedMsg{v, err}
	}
}

func (m ConsoleUI) updateStoryModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case storiesLoadedMsg:
		m.loadingStories = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.stories = msg.stories
			if m.selectedStory >= len(m.stories) {
				m.selectedStory = 0
			}
		}

	case playStartedMsg:
		m.loading = false
		if msg.err != nil {
			// e.g. the story has no start scene; let the player pick another
			m.err = msg.err
			return m, nil
		}
		m.showStoryModal = false
		m.transcript = nil
		m.view = nil
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.setView(msg.view)
		m.writeChatContent()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingStories || m.loading {
			return m, nil
		}
		// any key dismisses a start error
		if m.err != nil {
			m.err = nil
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedStory > 0 {
				m.selectedStory--
			}
		case tea.KeyDown:
			if m.selectedStory < len(m.stories)-1 {
				m.selectedStory++
			}
		case tea.KeyEnter:
			if len(m.stories) > 0 {
				m.loading = true
				return m, m.startStory(m.stories[m.selectedStory].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showStoryModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to stop reading?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderStoryModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingStories:
		content.WriteString(modalTitleStyle.Render("Loading Stories..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch your stories..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(wordwrap.String(m.err.Error(), 52)))
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Press any key to go back, Ctrl+C to exit"))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening Story..."))
	case len(m.stories) == 0:
		content.WriteString(modalTitleStyle.Render("No Stories Yet"))
		content.WriteString("\n\n")
		content.WriteString("Create one with the API first, for example:\n")
		content.WriteString(promptStyle.Render(`POST /v1/stories {"title":"..."}`))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Story"))
		content.WriteString("\n\n")

		for i, st := range m.stories {
			label := fmt.Sprintf("%s (%d scenes)", st.Title, len(st.Scenes))
			if i == m.selectedStory {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showStoryModal {
		return m.renderStoryModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return loadingStyle.Render("Writing the next scene...") + "\n" + separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
