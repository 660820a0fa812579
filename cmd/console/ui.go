package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

const (
	AgentName       = "Dungeon Master"
	PlaceHolderText = "What do you do?"
)

// Creation wizard steps.
const (
	stepLoading = iota
	stepScenario
	stepClass
	stepName
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	streamClient *http.Client
	game         *GameResponse
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Live stream state
	events    <-chan streamEvent
	streamBuf string
	rollLine  string
	status    string

	// Character creation state
	showCreateModal  bool
	createStep       int
	scenarios        []scenario.Scenario
	classes          map[string]state.ClassInfo
	classNames       []string
	selectedScenario int
	selectedClass    int
	nameInput        textinput.Model

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type setupLoadedMsg struct {
	setup *ScenariosResponse
	err   error
}

type gameCreatedMsg struct {
	game *GameResponse
	err  error
}

type gameRefreshedMsg struct {
	game *GameResponse
	err  error
}

type streamOpenedMsg struct {
	events <-chan streamEvent
	err    error
}

type streamEventMsg struct {
	event streamEvent
	open  bool
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	rollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

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

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, streamClient *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ni := textinput.New()
	ni.Placeholder = "Adventurer"
	ni.CharLimit = 40
	ni.Width = 30

	return ConsoleUI{
		config:          cfg,
		client:          client,
		streamClient:    streamClient,
		textarea:        ta,
		chatViewport:    chatVp,
		metaViewport:    metaVp,
		nameInput:       ni,
		ready:           false,
		showCreateModal: true,
		createStep:      stepLoading,
	}
}

// writeChatContent rebuilds the chat viewport from the game's message
// log plus any in-flight narration.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEON MASTER") + "\n\n")
	content.WriteString("Describe your actions below and the Dungeon Master will respond.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	if m.game != nil && m.game.Game != nil {
		for _, msg := range m.game.Game.Messages {
			switch {
			case msg.Type == chat.MessageTypeRoll:
				content.WriteString(rollStyle.Render(msg.Content) + "\n\n")
			case msg.Role == chat.ChatRoleUser:
				userMsg := userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n"
				content.WriteString(userMsg)
			case msg.Role == chat.ChatRoleAgent:
				if msg.Content == "" {
					continue // placeholder for the narration being streamed
				}
				content.WriteString(formatNarratorResponse(msg.Content, chatWidth) + "\n\n")
			}
		}
	}

	if m.rollLine != "" {
		content.WriteString(rollStyle.Render(m.rollLine) + "\n\n")
	}

	if m.loading {
		if m.streamBuf != "" {
			live := state.StripTags(m.streamBuf)
			content.WriteString(formatNarratorResponse(live, chatWidth) + "\n\n")
		} else {
			content.WriteString(m.renderProgressBar() + "\n")
		}
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// writeMetadata renders the character sheet sidebar.
func (m *ConsoleUI) writeMetadata() {
	if m.game == nil || m.game.Game == nil || m.game.Game.GameState == nil {
		return
	}
	gs := m.game.Game.GameState

	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	if c := gs.Character; c != nil {
		content.WriteString(speakerStyle.Render(c.Name) + "\n")
		content.WriteString(fmt.Sprintf("Level %d %s\n\n", c.Level, c.Class))

		content.WriteString(fmt.Sprintf("HP: %d/%d\n", c.HP, c.MaxHP))
		content.WriteString(renderHPBar(c.HP, c.MaxHP, 16) + "\n")
		content.WriteString(fmt.Sprintf("AC: %d  XP: %d\n", c.AC, c.XP))
		content.WriteString(fmt.Sprintf("Gold: %d\n\n", gs.Gold))

		content.WriteString(fmt.Sprintf("STR %2d  DEX %2d\n", c.Stats.Strength, c.Stats.Dexterity))
		content.WriteString(fmt.Sprintf("CON %2d  INT %2d\n", c.Stats.Constitution, c.Stats.Intelligence))
		content.WriteString(fmt.Sprintf("WIS %2d  CHA %2d\n\n", c.Stats.Wisdom, c.Stats.Charisma))
	}

	content.WriteString("Location:\n")
	content.WriteString(gs.Location + "\n")
	if gs.TimeOfDay != "" {
		content.WriteString(string(gs.TimeOfDay) + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Inventory:\n")
	if len(gs.Inventory) == 0 {
		content.WriteString("Empty\n")
	} else {
		for _, item := range gs.Inventory {
			content.WriteString("• " + item + "\n")
		}
	}
	content.WriteString("\n")

	if gs.Combat.Active {
		content.WriteString(errorStyle.Render("COMBAT") + fmt.Sprintf(" (turn %d)\n", gs.Combat.Turn))
		for _, e := range gs.Combat.Enemies {
			content.WriteString(fmt.Sprintf("• %s %d/%d %s\n", e.Name, e.HP, e.MaxHP, e.Status))
		}
		content.WriteString("\n")
	}

	if m.game.Pending != nil {
		content.WriteString(rollStyle.Render("ROLL NEEDED") + "\n")
		content.WriteString(fmt.Sprintf("%s\n%s\n", m.game.Pending.Dice, m.game.Pending.Reason))
		content.WriteString(promptStyle.Render("Press Ctrl+R to roll") + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+R: Roll dice\n")
	content.WriteString("• Ctrl+Y: Copy narration\n")
	content.WriteString("• Ctrl+C: Quit\n")

	if m.status != "" {
		content.WriteString("\n" + loadingStyle.Render(m.status) + "\n")
	}

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showCreateModal {
		return m.loadSetup()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle creation wizard first
	if m.showCreateModal {
		return m.updateCreateModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events
		// outside its bounds
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		m.writeMetadata()
		m.ready = true

	case tea.KeyMsg:
		m.status = ""
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlY:
			if text := m.lastNarration(); text != "" {
				if err := clipboard.WriteAll(text); err != nil {
					m.status = "Copy failed: " + err.Error()
				} else {
					m.status = "Narration copied"
				}
				m.writeMetadata()
			}
			return m, nil

		case tea.KeyCtrlR:
			if m.loading || m.game.Pending == nil {
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			m.streamBuf = ""
			m.writeChatContent()
			return m, tea.Batch(m.openRollStream(), progressTick())

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.streamBuf = ""
			m.rollLine = ""

			// Show the action immediately; the server appends its own
			// copy which replaces this one on refresh
			m.game.Game.Messages = append(m.game.Game.Messages, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
				Type:    chat.MessageTypeAction,
			})
			m.writeChatContent()

			return m, tea.Batch(m.openChatStream(input), progressTick())
		}

	case streamOpenedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			m.writeChatContent()
			m.appendError(msg.err)
			return m, nil
		}
		m.events = msg.events
		return m, waitForStream(m.events)

	case streamEventMsg:
		if !msg.open {
			// Stream finished; pull the authoritative state
			m.loading = false
			m.streamBuf = ""
			m.events = nil
			return m, m.refreshGame()
		}
		switch msg.event.Type {
		case "chunk":
			m.streamBuf += msg.event.Content
			m.writeChatContent()
		case "roll":
			r := msg.event.Roll
			m.rollLine = fmt.Sprintf("You rolled %s: %d (%s)", r.Notation, r.Total, r.Breakdown)
			m.writeChatContent()
		case "error":
			m.appendError(msg.event.Err)
		}
		return m, waitForStream(m.events)

	case gameRefreshedMsg:
		if msg.err == nil && msg.game != nil {
			m.game = msg.game
			m.rollLine = ""
			m.writeChatContent()
			m.writeMetadata()
		}

	case progressTickMsg:
		if m.loading && m.streamBuf == "" {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
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

// lastNarration returns the most recent Dungeon Master message.
func (m *ConsoleUI) lastNarration() string {
	if m.game == nil || m.game.Game == nil {
		return ""
	}
	msgs := m.game.Game.Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.ChatRoleAgent && msgs[i].Content != "" {
			return msgs[i].Content
		}
	}
	return ""
}

func (m *ConsoleUI) appendError(err error) {
	if err == nil {
		return
	}
	currentContent := m.chatViewport.View()
	errorMsg := errorStyle.Render("Error: "+err.Error()) + "\n\n"
	m.chatViewport.SetContent(currentContent + errorMsg)
	m.chatViewport.GotoBottom()
}

func formatNarratorResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		speaker := response[:idx]
		if len(strings.Fields(speaker)) <= 2 {
			hasPrefix = true
		}
	}

	// If no prefix, we'll add "Dungeon Master: " so reduce available width
	wrapWidth := width
	if !hasPrefix {
		narratorPrefix := AgentName + ": "
		wrapWidth = width - len(narratorPrefix)
	}

	// Wrap the text to the available width
	wrappedResponse := wordwrap.String(response, wrapWidth)
	lines := strings.Split(wrappedResponse, "\n")
	var formattedLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formattedLines = append(formattedLines, "")
			continue
		}

		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			rest := trimmed[idx+1:]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+rest)
				continue
			}
		}

		formattedLines = append(formattedLines, line)
	}

	result := strings.Join(formattedLines, "\n")
	if !hasPrefix && !strings.HasPrefix(strings.TrimSpace(result), speakerStyle.Render("")) {
		result = narratorStyle.Render(AgentName+": ") + result
	}

	return result
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• Ctrl+R - Resolve a pending dice roll
• Ctrl+Y - Copy the last narration
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• The Dungeon Master narrates the outcome
• When a roll is called for, press Ctrl+R
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) openChatStream(message string) tea.Cmd {
	return func() tea.Msg {
		events, err := streamChat(m.streamClient, m.config.APIBaseURL, m.game.Game.ID, message)
		return streamOpenedMsg{events, err}
	}
}

func (m ConsoleUI) openRollStream() tea.Cmd {
	return func() tea.Msg {
		events, err := streamRoll(m.streamClient, m.config.APIBaseURL, m.game.Game.ID)
		return streamOpenedMsg{events, err}
	}
}

func waitForStream(events <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, open := <-events
		return streamEventMsg{ev, open}
	}
}

func (m ConsoleUI) refreshGame() tea.Cmd {
	return func() tea.Msg {
		game, err := getGame(m.client, m.config.APIBaseURL, m.game.Game.ID)
		return gameRefreshedMsg{game, err}
	}
}

func (m ConsoleUI) loadSetup() tea.Cmd {
	return func() tea.Msg {
		setup, err := getScenarios(m.client, m.config.APIBaseURL)
		return setupLoadedMsg{setup, err}
	}
}

func (m ConsoleUI) createGameCmd(name, class, scenarioID string) tea.Cmd {
	return func() tea.Msg {
		game, err := createGame(m.client, m.config.APIBaseURL, name, class, scenarioID)
		return gameCreatedMsg{game, err}
	}
}

func (m ConsoleUI) updateCreateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case setupLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.scenarios = msg.setup.Scenarios
		m.classes = msg.setup.Classes
		m.classNames = m.classNames[:0]
		for name := range m.classes {
			m.classNames = append(m.classNames, name)
		}
		sort.Strings(m.classNames)
		m.createStep = stepScenario

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.game = msg.game
		m.showCreateModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.writeChatContent()
		m.writeMetadata()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.err != nil || m.createStep == stepLoading || m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyUp:
			switch m.createStep {
			case stepScenario:
				if m.selectedScenario > 0 {
					m.selectedScenario--
				}
			case stepClass:
				if m.selectedClass > 0 {
					m.selectedClass--
				}
			}

		case tea.KeyDown:
			switch m.createStep {
			case stepScenario:
				if m.selectedScenario < len(m.scenarios)-1 {
					m.selectedScenario++
				}
			case stepClass:
				if m.selectedClass < len(m.classNames)-1 {
					m.selectedClass++
				}
			}

		case tea.KeyEnter:
			switch m.createStep {
			case stepScenario:
				if len(m.scenarios) > 0 {
					m.createStep = stepClass
				}
			case stepClass:
				if len(m.classNames) > 0 {
					m.createStep = stepName
					m.nameInput.Focus()
					return m, textinput.Blink
				}
			case stepName:
				name := strings.TrimSpace(m.nameInput.Value())
				if name == "" {
					return m, nil
				}
				m.loading = true
				return m, m.createGameCmd(name,
					m.classNames[m.selectedClass],
					m.scenarios[m.selectedScenario].ID)
			}
		}
	}

	if m.createStep == stepName {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
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
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showCreateModal {
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
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCreateModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to reach the game server: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")

	case m.createStep == stepLoading:
		content.WriteString(modalTitleStyle.Render("Loading..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching scenarios and classes..."))

	case m.loading:
		content.WriteString(modalTitleStyle.Render("Creating Character..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Rolling stats and setting the scene..."))

	case m.createStep == stepScenario:
		content.WriteString(modalTitleStyle.Render("Choose Your Adventure"))
		content.WriteString("\n\n")
		for i, s := range m.scenarios {
			label := fmt.Sprintf("%s — %s", s.Name, s.Location)
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))

	case m.createStep == stepClass:
		content.WriteString(modalTitleStyle.Render("Choose Your Class"))
		content.WriteString("\n\n")
		for i, name := range m.classNames {
			info := m.classes[name]
			label := fmt.Sprintf("%s (base HP %d)", name, info.BaseHP)
			if i == m.selectedClass {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))

	case m.createStep == stepName:
		content.WriteString(modalTitleStyle.Render("Name Your Character"))
		content.WriteString("\n\n")
		content.WriteString(fmt.Sprintf("%s in %s\n\n",
			m.classNames[m.selectedClass],
			m.scenarios[m.selectedScenario].Name))
		content.WriteString(m.nameInput.View())
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to begin, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.showCreateModal {
		return m.renderCreateModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderHPBar draws a fixed-width bar for current/max hit points.
func renderHPBar(hp, maxHP, width int) string {
	if maxHP <= 0 {
		maxHP = 1
	}
	filled := (hp * width) / maxHP
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}

	style := narratorStyle
	if hp*3 <= maxHP {
		style = errorStyle
	} else if hp*3 <= maxHP*2 {
		style = loadingStyle
	}
	return style.Render(bar.String())
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80 // avoid overly wide bars
	} else if usable < 10 {
		usable = 10 // minimum visible bar
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
