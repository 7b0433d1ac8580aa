/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package tui renders the dashboard in the terminal. The model reads a
// fresh snapshot on a fixed cadence and derives everything it draws
// through the view package; it owns no dashboard state of its own.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/push"
	"github.com/carverauto/visionradar/pkg/view"
)

const (
	refreshInterval = 500 * time.Millisecond

	minPollInterval = 250 * time.Millisecond
	maxPollInterval = 30 * time.Second

	defaultLogWidth  = 80
	defaultLogHeight = 10
	minLogHeight     = 3

	logCameraWidth = 16
	logModelWidth  = 10
	cardErrorWidth = 24
)

// Provider is the read surface the dashboard renders from.
type Provider interface {
	Snapshot() models.Snapshot
	ChannelState() push.ChannelState
	SetPollInterval(d time.Duration) error
	DecodeFailures() uint64
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	provider Provider
	board    view.Board

	filterInput textinput.Model
	log         viewport.Model
	filtering   bool
	selected    int
	canCopy     bool
	notice      string
	pollEvery   time.Duration
	width       int
	height      int

	styles struct {
		title, live, header, label, value, help, hint, success, error, card, cardSelected, footer lipgloss.Style
	}
}

func initialModel(provider Provider) *model {
	fi := textinput.New()
	fi.Placeholder = "camera name or id"
	fi.Prompt = "/ "
	fi.Width = 30
	fi.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	fi.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	fi.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

	canCopy := true
	if err := clipboard.WriteAll(""); err != nil {
		canCopy = false
	}

	m := &model{
		provider:    provider,
		filterInput: fi,
		log:         viewport.New(defaultLogWidth, defaultLogHeight),
		canCopy:     canCopy,
		pollEvery:   time.Second,
		styles:      newStyles(),
	}

	m.board = view.Compose(provider.Snapshot())
	m.refreshLog()

	return m
}

func (*model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

		return m, nil
	case tickMsg:
		m.board = view.Compose(m.provider.Snapshot())
		m.clampSelection()
		m.refreshLog()
		m.resize()

		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)

	return m, cmd
}

func (m *model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	//nolint:exhaustive // Default case handles all unlisted keys
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		m.moveSelection(-1)
		return m, nil
	case tea.KeyDown:
		m.moveSelection(1)
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)

		return m, cmd
	default:
		return m.handleRune(msg)
	}
}

func (m *model) handleRune(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.filtering = true
		m.notice = ""
		m.filterInput.Focus()

		return m, textinput.Blink
	case "k":
		m.moveSelection(-1)
	case "j":
		m.moveSelection(1)
	case "c":
		m.copySelected()
	case "+", "=":
		m.adjustPollInterval(0.5)
	case "-", "_":
		m.adjustPollInterval(2)
	}

	return m, nil
}

func (m *model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Default case handles all unlisted keys
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.clampSelection()
		m.refreshLog()

		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()

		return m, nil
	default:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.clampSelection()
		m.refreshLog()

		return m, cmd
	}
}

func (m *model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *model) clampSelection() {
	visible := len(m.visibleCards())
	if visible == 0 {
		m.selected = 0
		return
	}

	if m.selected >= visible {
		m.selected = visible - 1
	}

	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *model) copySelected() {
	if !m.canCopy {
		m.notice = "Clipboard unavailable"
		return
	}

	cards := m.visibleCards()
	if len(cards) == 0 {
		return
	}

	camera := cards[m.selected].Camera
	if camera.StreamURL == "" {
		m.notice = "No stream URL for " + camera.DisplayName()
		return
	}

	if err := clipboard.WriteAll(camera.StreamURL); err != nil {
		m.notice = "Failed to copy to clipboard"
	} else {
		m.notice = "Stream URL copied to clipboard!"
	}
}

func (m *model) adjustPollInterval(factor float64) {
	next := time.Duration(float64(m.pollEvery) * factor)
	if next < minPollInterval {
		next = minPollInterval
	}

	if next > maxPollInterval {
		next = maxPollInterval
	}

	if next == m.pollEvery {
		return
	}

	if err := m.provider.SetPollInterval(next); err != nil {
		m.notice = "Failed to update poll rate"
		return
	}

	m.pollEvery = next
	m.notice = fmt.Sprintf("Polling every %s", next)
}

func (m *model) filterQuery() string {
	return strings.TrimSpace(strings.ToLower(m.filterInput.Value()))
}

func (m *model) visibleCards() []view.CameraCard {
	query := m.filterQuery()
	if query == "" {
		return m.board.Cards
	}

	matched := make([]view.CameraCard, 0, len(m.board.Cards))

	for _, card := range m.board.Cards {
		if cardMatches(card, query) {
			matched = append(matched, card)
		}
	}

	return matched
}

func cardMatches(card view.CameraCard, query string) bool {
	if strings.Contains(strings.ToLower(card.Camera.DisplayName()), query) {
		return true
	}

	return strconv.Itoa(card.Camera.ID) == query
}

func (m *model) visibleLog() []view.LogLine {
	query := m.filterQuery()
	if query == "" {
		return m.board.Log
	}

	matched := make([]view.LogLine, 0, len(m.board.Log))

	for _, entry := range m.board.Log {
		if strings.Contains(strings.ToLower(entry.Camera), query) {
			matched = append(matched, entry)
		}
	}

	return matched
}

// refreshLog rebuilds the viewport content. Entries are newest-first,
// so the freshest activity sits at the top with no autoscroll.
func (m *model) refreshLog() {
	entries := m.visibleLog()
	if len(entries) == 0 {
		m.log.SetContent(m.styles.help.Render("no activity yet"))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, m.renderLogLine(entry))
	}

	m.log.SetContent(strings.Join(lines, "\n"))
}

func (m *model) renderLogLine(entry view.LogLine) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		m.styles.help.Render(entry.Time),
		m.styles.value.Render(fit(entry.Camera, logCameraWidth)),
		m.styles.label.Render(fit(entry.Model, logModelWidth)),
		m.styles.header.Render(entry.Preview),
	)
}

func (m *model) resize() {
	if m.width <= 0 {
		return
	}

	m.log.Width = m.width

	chrome := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderCards()) +
		lipgloss.Height(m.renderFooter()) +
		4 // section titles and spacing

	height := m.height - chrome
	if height < minLogHeight {
		height = minLogHeight
	}

	m.log.Height = height
}

func (m *model) View() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")
	content.WriteString(m.renderCards())
	content.WriteString("\n")
	content.WriteString(m.styles.label.Render("Activity"))
	content.WriteString("\n")
	content.WriteString(m.log.View())
	content.WriteString("\n")

	if m.filtering || m.filterInput.Value() != "" {
		content.WriteString(m.filterInput.View())
		content.WriteString("\n")
	}

	if m.notice != "" {
		content.WriteString(m.renderNotice())
		content.WriteString("\n")
	}

	content.WriteString(m.renderFooter())

	return content.String()
}

func (m *model) renderHeader() string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.styles.title.Render("VisionRadar"),
		"  ",
		m.styles.live.Render("● LIVE"),
	)

	if !m.board.Header.HasStatus {
		return title + "\n" + m.styles.help.Render("waiting for backend status...")
	}

	header := m.board.Header
	stats := strings.Join([]string{
		m.statView("Uptime", header.Uptime),
		m.statView("Active", header.ActiveModel),
		m.statView("Models", strconv.Itoa(len(header.AvailableModels))),
		m.statView("Processed", strconv.Itoa(header.PredictionsProcessed)),
		m.statView("Cameras", strconv.Itoa(header.CameraCount)),
	}, m.styles.help.Render("  |  "))

	return title + "\n" + stats
}

func (m *model) statView(label, value string) string {
	return m.styles.label.Render(label+" ") + m.styles.value.Render(value)
}

func (m *model) renderCards() string {
	cards := m.visibleCards()
	if len(cards) == 0 {
		if m.filterQuery() != "" {
			return m.styles.help.Render("no cameras match the filter")
		}

		return m.styles.help.Render("no cameras registered")
	}

	rendered := make([]string, 0, len(cards))
	for i, card := range cards {
		rendered = append(rendered, m.renderCard(card, i == m.selected))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *model) renderCard(card view.CameraCard, selected bool) string {
	style := m.styles.card
	if selected {
		style = m.styles.cardSelected
	}

	var body strings.Builder

	body.WriteString(m.styles.value.Render(card.Camera.DisplayName()))
	body.WriteString("\n")
	body.WriteString(m.styles.help.Render(card.Camera.Device))
	body.WriteString("\n")

	if card.Latest != nil {
		body.WriteString(m.styles.label.Render(card.Latest.Model))
		body.WriteString(" ")
		body.WriteString(m.styles.help.Render(view.FormatTimestamp(card.Latest.Timestamp)))
	} else {
		body.WriteString(m.styles.help.Render("no predictions"))
	}

	body.WriteString("\n")
	body.WriteString(m.styles.header.Render(fmt.Sprintf("pred %d  err %d", card.PredictionCount, card.ErrorCount)))

	if card.LastError != nil {
		body.WriteString("\n")
		body.WriteString(m.styles.error.Render(fit(card.LastError.Error, cardErrorWidth)))
	}

	return style.Render(body.String())
}

func (m *model) renderNotice() string {
	messageStyle := m.styles.success
	if strings.HasPrefix(m.notice, "Failed") || strings.HasPrefix(m.notice, "Clipboard") {
		messageStyle = m.styles.error
	}

	return messageStyle.Render(m.notice)
}

func (m *model) renderFooter() string {
	state := m.provider.ChannelState()

	conn := m.styles.error.Render("push offline")
	if state.Connected {
		conn = m.styles.success.Render("push " + state.Transport)
	}

	parts := []string{conn, m.styles.footer.Render("poll " + m.pollEvery.String())}
	if dropped := m.provider.DecodeFailures(); dropped > 0 {
		parts = append(parts, m.styles.hint.Render(fmt.Sprintf("dropped %d", dropped)))
	}

	statusLine := strings.Join(parts, m.styles.footer.Render("  |  "))
	help := m.styles.help.Render("↑/↓ → select | / → filter | c → copy stream | +/- → poll rate | q → quit")

	return statusLine + "\n" + help
}

// fit pads or truncates a string to a fixed display width.
func fit(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}

	return s + strings.Repeat(" ", width-len(runes))
}

// Run renders the dashboard until the user quits.
func Run(provider Provider) error {
	program := tea.NewProgram(initialModel(provider), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard UI failed: %w", err)
	}

	return nil
}
