package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Investigate something, or type /help..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	transcript []string
	options    []string
	items      []inventoryItem
	room       string

	// Room selection state
	showRoomModal bool
	rooms         []string
	selectedRoom  int
	loadingRooms  bool

	// Quit confirmation state
	showQuitModal bool
}

type roomsLoadedMsg struct {
	rooms []string
	err   error
}

type actionMsg struct {
	text string
	err  error
}

type joinedMsg struct {
	room string
	text string
	err  error
}

type sidebarMsg struct {
	options []string
	items   []inventoryItem
	err     error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
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

	roomStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
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

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	gameVp := viewport.New(50, 20)
	gameVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textarea:      ta,
		gameViewport:  gameVp,
		metaViewport:  metaVp,
		showRoomModal: true,
		loadingRooms:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadRooms()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showRoomModal {
		return m.updateRoomModal(msg)
	}
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
		m.gameViewport, vpCmd = m.gameViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeTranscript()
		m.writeMetadata()
		m.ready = true

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
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.appendLine(userStyle.Render("You: ") + input)
			m.loading = true
			return m, m.investigate(input)
		}

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLine(roomStyle.Render(msg.text))
		return m, m.refreshSidebar()

	case joinedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.room = msg.room
		m.appendLine(roomStyle.Render(msg.text))
		return m, m.refreshSidebar()

	case sidebarMsg:
		if msg.err == nil {
			m.options = msg.options
			m.items = msg.items
			m.writeMetadata()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.gameViewport, vpCmd = m.gameViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "/help":
		m.appendLine(titleStyle.Render("Commands:") + `
• plain text       - investigate that choice
• /back            - go back one spot
• /equip ITEM      - hold an item from the room inventory
• /combine A + B   - combine two items
• /check STAT      - roll a stat check
• /roll 2d6        - roll dice
• /copy            - copy the transcript to the clipboard
• Ctrl+C           - quit`)
		return m, nil

	case "/back":
		m.loading = true
		return m, m.investigate("go back")

	case "/equip":
		if rest == "" {
			m.appendLine(errorStyle.Render("Usage: /equip ITEM"))
			return m, nil
		}
		m.loading = true
		return m, m.action("equip", map[string]string{"player_id": m.config.PlayerID, "item": rest})

	case "/combine":
		a, b, ok := strings.Cut(rest, "+")
		if !ok {
			m.appendLine(errorStyle.Render("Usage: /combine ITEM A + ITEM B"))
			return m, nil
		}
		m.loading = true
		return m, m.action("combine", map[string]string{
			"player_id": m.config.PlayerID,
			"item_a":    strings.TrimSpace(a),
			"item_b":    strings.TrimSpace(b),
		})

	case "/check":
		if rest == "" {
			m.appendLine(errorStyle.Render("Usage: /check STAT"))
			return m, nil
		}
		m.loading = true
		return m, m.action("check", map[string]string{"player_id": m.config.PlayerID, "stat": rest})

	case "/roll":
		if rest == "" {
			m.appendLine(errorStyle.Render("Usage: /roll 2d6"))
			return m, nil
		}
		m.loading = true
		return m, m.roll(rest)

	case "/copy":
		if err := clipboard.WriteAll(strings.Join(m.transcript, "\n")); err != nil {
			m.appendLine(errorStyle.Render("Copy failed: " + err.Error()))
		} else {
			m.appendLine(promptStyle.Render("Transcript copied to clipboard."))
		}
		return m, nil

	default:
		m.appendLine(errorStyle.Render("Unknown command. Try /help"))
		return m, nil
	}
}

func (m *ConsoleUI) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.writeTranscript()
}

func (m *ConsoleUI) writeTranscript() {
	width := m.gameViewport.Width - 6
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("RINGOBOT ESCAPE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
	for _, line := range m.transcript {
		content.WriteString(wordwrap.String(line, width) + "\n\n")
	}
	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}

	m.gameViewport.SetContent(content.String())
	m.gameViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ROOM") + "\n\n")
	content.WriteString(m.room + "\n\n")

	content.WriteString("Player:\n")
	content.WriteString(m.config.PlayerID + "\n\n")

	content.WriteString("Choices:\n")
	if len(m.options) == 0 {
		content.WriteString("None\n")
	}
	for _, opt := range m.options {
		content.WriteString("• " + opt + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Inventory:\n")
	if len(m.items) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range m.items {
		content.WriteString("• " + item.Name + "\n")
	}

	m.metaViewport.SetContent(content.String())
}

func (m *ConsoleUI) resize() {
	gameWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - gameWidth - 6

	m.gameViewport.Width = gameWidth - 2
	m.gameViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(gameWidth - 4)
}

func (m ConsoleUI) loadRooms() tea.Cmd {
	return func() tea.Msg {
		rooms, err := listRooms(m.client, m.config.APIBaseURL)
		return roomsLoadedMsg{rooms, err}
	}
}

func (m ConsoleUI) joinRoom(room string) tea.Cmd {
	return func() tea.Msg {
		text, err := postAction(m.client, m.config.APIBaseURL, "join",
			map[string]string{"player_id": m.config.PlayerID, "room": room})
		return joinedMsg{room, text, err}
	}
}

func (m ConsoleUI) investigate(choice string) tea.Cmd {
	return m.action("investigate", map[string]string{
		"player_id": m.config.PlayerID,
		"choice":    choice,
	})
}

func (m ConsoleUI) action(name string, body map[string]string) tea.Cmd {
	return func() tea.Msg {
		text, err := postAction(m.client, m.config.APIBaseURL, name, body)
		return actionMsg{text, err}
	}
}

func (m ConsoleUI) roll(notation string) tea.Cmd {
	return func() tea.Msg {
		result, err := rollDice(m.client, m.config.APIBaseURL, notation)
		if err != nil {
			return actionMsg{"", err}
		}
		text := fmt.Sprintf("Rolled %s: [%s] = %d", result.Notation,
			strings.Join(result.Symbols, " "), result.Total)
		return actionMsg{text, nil}
	}
}

func (m ConsoleUI) refreshSidebar() tea.Cmd {
	return func() tea.Msg {
		options, err := getOptions(m.client, m.config.APIBaseURL, m.config.PlayerID)
		if err != nil {
			return sidebarMsg{err: err}
		}
		items, err := getInventory(m.client, m.config.APIBaseURL, m.config.PlayerID)
		return sidebarMsg{options: options, items: items, err: err}
	}
}

func (m ConsoleUI) updateRoomModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case roomsLoadedMsg:
		m.loadingRooms = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.rooms = msg.rooms
		}

	case joinedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.room = msg.room
		m.showRoomModal = false
		m.appendLine(roomStyle.Render(msg.text))
		m.writeMetadata()
		m.textarea.Focus()
		return m, tea.Batch(textarea.Blink, m.refreshSidebar())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedRoom > 0 {
				m.selectedRoom--
			}
		case tea.KeyDown:
			if m.selectedRoom < len(m.rooms)-1 {
				m.selectedRoom++
			}
		case tea.KeyEnter:
			if len(m.rooms) > 0 && !m.loading {
				m.loading = true
				return m, m.joinRoom(m.rooms[m.selectedRoom])
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
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderRoomModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	switch {
	case m.loadingRooms:
		content.WriteString(modalTitleStyle.Render("Loading Rooms..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching available escape rooms..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Joining..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Room"))
		content.WriteString("\n\n")
		for i, room := range m.rooms {
			if i == m.selectedRoom {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", room)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", room)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave the escape room? Your progress is saved.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showRoomModal {
		return m.renderRoomModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	gameWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - gameWidth - 6

	gamePanel := gamePanelStyle.Width(gameWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.gameViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", gameWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, gamePanel, metaPanel)
}
