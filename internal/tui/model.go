// Package tui paints the project board in the terminal and turns keyboard and
// mouse gestures into form submits and drag sessions on the board document.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/app"
	"github.com/evanschultz/tavla/internal/board"
	"github.com/evanschultz/tavla/internal/dom"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

// focusArea identifies which part of the screen receives keys.
type focusArea int

const (
	focusTitle focusArea = iota
	focusDescription
	focusPeople
	focusBoard
	focusCount
)

// overlayMode identifies the modal drawn over the board.
type overlayMode int

const (
	overlayNone overlayMode = iota
	overlayAlert
	overlayActivity
	overlayInfo
)

const (
	activityLimit = 30
	historyLimit  = 20
	queryTimeout  = 2 * time.Second
)

type activityLoadedMsg struct {
	entries []domain.ChangeEvent
	err     error
}

type historyLoadedMsg struct {
	itemID  string
	entries []domain.ChangeEvent
	err     error
}

type configChangedMsg struct {
	config RuntimeConfig
}

// ConfigChanged wraps a reloaded runtime config for Program.Send.
func ConfigChanged(cfg RuntimeConfig) tea.Msg {
	return configChangedMsg{config: cfg}
}

// alertQueue collects validation alerts raised while a submit runs.
type alertQueue struct {
	pending []string
}

// Alert queues message for the modal.
func (q *alertQueue) Alert(message string) {
	q.pending = append(q.pending, message)
}

func (q *alertQueue) pop() (string, bool) {
	if len(q.pending) == 0 {
		return "", false
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	return next, true
}

// card is the painted form of one item element.
type card struct {
	id          string
	title       string
	people      string
	description string
	el          *dom.Element
}

// Model hosts the board document and its views.
type Model struct {
	doc       *dom.Document
	board     *board.Board
	store     *store.Store
	alerts    *alertQueue
	boardOpts []board.Option
	activity  ActivitySource
	logger    *log.Logger
	copy      func(string) error
	md        *markdownRenderer

	config RuntimeConfig
	keys   keyMap
	help   help.Model

	inputs         []textinput.Model
	focus          focusArea
	selectedColumn int
	selectedItem   int

	drag        *dom.DragSession
	dragByMouse bool

	overlay         overlayMode
	alert           string
	activityEntries []domain.ChangeEvent
	infoItemID      string
	infoHistory     []domain.ChangeEvent

	status string
	width  int
	height int
}

// NewModel loads the board templates, mounts the board over st and focuses
// the title field. A nil store uses the process-wide one.
func NewModel(st *store.Store, opts ...Option) (Model, error) {
	m := Model{
		store:  st,
		alerts: &alertQueue{},
		logger: log.New(io.Discard),
		copy:   defaultClipboard,
		md:     &markdownRenderer{},
		help:   help.New(),
		status: "ready",
	}
	WithRuntimeConfig(DefaultRuntimeConfig())(&m)
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.store == nil {
		m.store = store.Default()
	}

	doc, err := board.NewDocument()
	if err != nil {
		return Model{}, fmt.Errorf("load board templates: %w", err)
	}
	boardOpts := append([]board.Option{
		board.WithLogger(m.logger),
		board.WithAlerter(m.alerts),
	}, m.boardOpts...)
	b, err := board.New(doc, m.store, boardOpts...)
	if err != nil {
		return Model{}, fmt.Errorf("mount board: %w", err)
	}
	m.doc = doc
	m.board = b
	m.inputs = newFormInputs()
	m.focusField(focusTitle)
	return m, nil
}

// newFormInputs builds the title, description and people fields.
func newFormInputs() []textinput.Model {
	fields := []struct {
		prompt      string
		placeholder string
		limit       int
	}{
		{"Title       ", "project title", 120},
		{"Description ", "at least 5 characters", 500},
		{"People      ", fmt.Sprintf("%d-%d", board.PeopleMin, board.PeopleMax), 3},
	}
	out := make([]textinput.Model, 0, len(fields))
	for _, f := range fields {
		in := textinput.New()
		in.Prompt = f.prompt
		in.Placeholder = f.placeholder
		in.CharLimit = f.limit
		in.SetWidth(32)
		out = append(out, in)
	}
	return out
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		for i := range m.inputs {
			m.inputs[i].SetWidth(m.formInputWidth())
		}
		return m, nil

	case configChangedMsg:
		m.applyRuntimeConfig(msg.config)
		m.status = "config reloaded"
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load activity failed", "err", msg.err)
			m.status = "activity log: " + msg.err.Error()
			return m, nil
		}
		m.activityEntries = msg.entries
		m.overlay = overlayActivity
		return m, nil

	case historyLoadedMsg:
		if msg.itemID != m.infoItemID {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("load item history failed", "item_id", msg.itemID, "err", msg.err)
			m.status = "history: " + msg.err.Error()
			return m, nil
		}
		m.infoHistory = msg.entries
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)
	}

	if idx, ok := m.focusedInput(); ok {
		var cmd tea.Cmd
		m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyRuntimeConfig swaps colors and key overrides in place.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	WithRuntimeConfig(cfg)(m)
}

// handleKey routes a key press by overlay, drag and focus state.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancelDrag()
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayAlert:
		switch msg.String() {
		case "enter", "esc":
			m.dismissAlert()
		}
		return m, nil
	case overlayActivity, overlayInfo:
		if key.Matches(msg, m.keys.cancel, m.keys.submit) {
			m.overlay = overlayNone
			m.infoItemID = ""
			m.infoHistory = nil
		}
		return m, nil
	}

	if m.help.ShowAll {
		if key.Matches(msg, m.keys.toggleHelp, m.keys.cancel) {
			m.help.ShowAll = false
		}
		return m, nil
	}

	if m.drag != nil {
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.nextField):
		return m, m.focusField((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.prevField):
		return m, m.focusField((m.focus + focusCount - 1) % focusCount)
	}

	if m.focus != focusBoard {
		return m.handleFormKey(msg)
	}
	return m.handleBoardKey(msg)
}

// handleFormKey submits on enter and otherwise feeds the focused field.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		return m, m.submitForm()
	case key.Matches(msg, m.keys.cancel):
		return m, m.focusField(focusBoard)
	}
	idx := int(m.focus)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

// handleBoardKey handles navigation and item actions on the board.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
	case key.Matches(msg, m.keys.moveUp):
		m.selectedItem--
		m.clampSelection()
	case key.Matches(msg, m.keys.moveDown):
		m.selectedItem++
		m.clampSelection()
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.clampSelection()
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.clampSelection()
	case key.Matches(msg, m.keys.grab):
		m.startKeyboardDrag()
	case key.Matches(msg, m.keys.activityLog):
		return m, m.loadActivityCmd()
	case key.Matches(msg, m.keys.itemInfo):
		return m, m.openInfo()
	case key.Matches(msg, m.keys.copyID):
		m.copySelectedID()
	}
	return m, nil
}

// handleDragKey carries a grabbed card between columns.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.carryTo(m.selectedColumn - 1)
	case key.Matches(msg, m.keys.moveRight):
		m.carryTo(m.selectedColumn + 1)
	case key.Matches(msg, m.keys.grab, m.keys.submit):
		m.dropDrag()
	case key.Matches(msg, m.keys.cancel):
		m.cancelDrag()
	case key.Matches(msg, m.keys.quit):
		m.cancelDrag()
		return m, tea.Quit
	}
	return m, nil
}

// submitForm mirrors the fields into the document form and submits it.
func (m *Model) submitForm() tea.Cmd {
	input := m.board.Input()
	before := len(m.store.Items())
	title := m.inputs[focusTitle].Value()
	input.SetValues(title, m.inputs[focusDescription].Value(), m.inputs[focusPeople].Value())
	input.Submit()

	gotTitle, gotDescription, gotPeople := input.Values()
	m.inputs[focusTitle].SetValue(gotTitle)
	m.inputs[focusDescription].SetValue(gotDescription)
	m.inputs[focusPeople].SetValue(gotPeople)

	if alert, ok := m.alerts.pop(); ok {
		m.alert = alert
		m.overlay = overlayAlert
		m.status = "project rejected"
		return nil
	}
	if err := m.board.Err(); err != nil {
		m.status = "render error: " + err.Error()
		return nil
	}
	if len(m.store.Items()) > before {
		m.status = fmt.Sprintf("added %q", title)
		return m.focusField(focusTitle)
	}
	return nil
}

// dismissAlert closes the alert or advances to the next queued one.
func (m *Model) dismissAlert() {
	if next, ok := m.alerts.pop(); ok {
		m.alert = next
		return
	}
	m.alert = ""
	m.overlay = overlayNone
}

// focusField moves keyboard focus and returns the input's cursor command.
func (m *Model) focusField(f focusArea) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if focusArea(i) == f {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	if f == focusBoard {
		m.clampSelection()
	}
	return cmd
}

// focusedInput returns the index of the focused form field.
func (m Model) focusedInput() (int, bool) {
	if m.focus >= focusBoard || int(m.focus) >= len(m.inputs) {
		return 0, false
	}
	return int(m.focus), true
}

// columnCards reads the painted cards of column idx from its list element.
func (m Model) columnCards(idx int) []card {
	cols := m.board.Columns()
	if idx < 0 || idx >= len(cols) {
		return nil
	}
	list := cols[idx].List()
	if list == nil {
		return nil
	}
	children := list.Children()
	out := make([]card, 0, len(children))
	for _, li := range children {
		out = append(out, card{
			id:          li.ID,
			title:       childText(li, "h2"),
			people:      childText(li, "h3"),
			description: childText(li, "p"),
			el:          li,
		})
	}
	return out
}

func childText(root *dom.Element, selector string) string {
	if el := root.QuerySelector(selector); el != nil {
		return el.Text
	}
	return ""
}

// selectedCard returns the card under the selection.
func (m Model) selectedCard() (card, bool) {
	cards := m.columnCards(m.selectedColumn)
	if m.selectedItem < 0 || m.selectedItem >= len(cards) {
		return card{}, false
	}
	return cards[m.selectedItem], true
}

// clampSelection keeps the selection inside the board.
func (m *Model) clampSelection() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board.Columns())-1)
	m.selectedItem = clamp(m.selectedItem, 0, len(m.columnCards(m.selectedColumn))-1)
}

// selectItem points the selection at the card for id, if it is on the board.
func (m *Model) selectItem(id string) {
	for colIdx := range m.board.Columns() {
		for cardIdx, c := range m.columnCards(colIdx) {
			if c.id == id {
				m.selectedColumn = colIdx
				m.selectedItem = cardIdx
				return
			}
		}
	}
	m.clampSelection()
}

// columnTarget returns the drop target element for column idx.
func (m Model) columnTarget(idx int) *dom.Element {
	cols := m.board.Columns()
	if idx < 0 || idx >= len(cols) {
		return nil
	}
	return cols[idx].List()
}

// beginDrag opens a drag session on c.
func (m *Model) beginDrag(c card, byMouse bool) bool {
	session, err := dom.StartDrag(c.el)
	if err != nil {
		m.logger.Warn("start drag failed", "item_id", c.id, "err", err)
		m.status = "grab failed: " + err.Error()
		return false
	}
	m.drag = session
	m.dragByMouse = byMouse
	m.status = fmt.Sprintf("carrying %q", c.title)
	return true
}

// startKeyboardDrag grabs the selected card and hovers its own column.
func (m *Model) startKeyboardDrag() {
	c, ok := m.selectedCard()
	if !ok {
		m.status = "nothing to grab"
		return
	}
	if m.beginDrag(c, false) {
		m.drag.Over(m.columnTarget(m.selectedColumn))
	}
}

// carryTo moves a keyboard drag over column idx.
func (m *Model) carryTo(idx int) {
	if m.drag == nil {
		return
	}
	m.selectedColumn = clamp(idx, 0, len(m.board.Columns())-1)
	m.drag.Over(m.columnTarget(m.selectedColumn))
}

// dropDrag releases the drag on its current target.
func (m *Model) dropDrag() {
	if m.drag == nil {
		return
	}
	id := m.draggedID()
	before, _ := m.store.Item(id)
	accepted := m.drag.Drop()
	m.drag = nil

	after, ok := m.store.Item(id)
	switch {
	case !accepted || !ok:
		m.status = "drop rejected"
	case after.Status != before.Status:
		m.status = fmt.Sprintf("moved %q to %s", after.Title, after.Status.Label())
	default:
		m.status = fmt.Sprintf("%q stays in %s", after.Title, after.Status.Label())
	}
	if err := m.board.Err(); err != nil {
		m.status = "render error: " + err.Error()
	}
	m.selectItem(id)
}

// draggedID is the id of the carried item. Card elements share the item id.
func (m Model) draggedID() string {
	if m.drag == nil || m.drag.Source() == nil {
		return ""
	}
	return m.drag.Source().ID
}

// cancelDrag abandons the current drag, if any.
func (m *Model) cancelDrag() {
	if m.drag == nil {
		return
	}
	m.drag.Cancel()
	m.drag = nil
	m.status = "drag cancelled"
}

// handleMouseClick focuses form fields and starts a drag on a pressed card.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.overlay != overlayNone || m.help.ShowAll || msg.Button != tea.MouseLeft {
		return m, nil
	}
	m.cancelDrag()
	lay := m.layout()
	if field, ok := lay.fieldAt(msg.X, msg.Y); ok {
		return m, m.focusField(field)
	}
	colIdx, cardIdx, ok := lay.hit(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.selectedColumn = colIdx
	cmd := m.focusField(focusBoard)
	if cardIdx < 0 {
		return m, cmd
	}
	m.selectedItem = cardIdx
	cards := m.columnCards(colIdx)
	if cardIdx < len(cards) && m.beginDrag(cards[cardIdx], true) {
		m.drag.Over(cards[cardIdx].el)
	}
	return m, cmd
}

// handleMouseMotion moves a mouse drag over the element under the pointer.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.drag == nil || !m.dragByMouse {
		return m, nil
	}
	target, colIdx := m.elementAt(m.layout(), msg.X, msg.Y)
	if colIdx >= 0 {
		m.selectedColumn = colIdx
	}
	m.drag.Over(target)
	return m, nil
}

// handleMouseRelease drops a mouse drag, or cancels it outside the columns.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if m.drag == nil || !m.dragByMouse {
		return m, nil
	}
	target, _ := m.elementAt(m.layout(), msg.X, msg.Y)
	if target == nil {
		m.cancelDrag()
		return m, nil
	}
	if m.drag.Target() != target {
		m.drag.Over(target)
	}
	m.dropDrag()
	return m, nil
}

// handleMouseWheel moves the card selection.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.overlay != overlayNone || m.help.ShowAll || m.drag != nil {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.selectedItem--
	case tea.MouseWheelDown:
		m.selectedItem++
	}
	m.clampSelection()
	return m, nil
}

// elementAt resolves the drag target under the pointer and its column index.
func (m Model) elementAt(lay boardLayout, x, y int) (*dom.Element, int) {
	colIdx, cardIdx, ok := lay.hit(x, y)
	if !ok {
		return nil, -1
	}
	if cardIdx >= 0 {
		cards := m.columnCards(colIdx)
		if cardIdx < len(cards) {
			return cards[cardIdx].el, colIdx
		}
	}
	return m.columnTarget(colIdx), colIdx
}

// loadActivityCmd queries the recent change events.
func (m Model) loadActivityCmd() tea.Cmd {
	src := m.activity
	if src == nil {
		return func() tea.Msg {
			return activityLoadedMsg{err: app.ErrLedgerUnavailable}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		entries, err := src.Recent(ctx, activityLimit)
		return activityLoadedMsg{entries: entries, err: err}
	}
}

// openInfo shows the selected item and requests its history.
func (m *Model) openInfo() tea.Cmd {
	c, ok := m.selectedCard()
	if !ok {
		m.status = "no project selected"
		return nil
	}
	m.overlay = overlayInfo
	m.infoItemID = c.id
	m.infoHistory = nil
	src := m.activity
	if src == nil {
		return nil
	}
	id := c.id
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		entries, err := src.History(ctx, id, historyLimit)
		return historyLoadedMsg{itemID: id, entries: entries, err: err}
	}
}

// copySelectedID writes the selected item id to the clipboard.
func (m *Model) copySelectedID() {
	c, ok := m.selectedCard()
	if !ok {
		m.status = "no project selected"
		return
	}
	if err := m.copy(c.id); err != nil {
		m.logger.Warn("copy item id failed", "item_id", c.id, "err", err)
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + c.id
}

// formInputWidth returns the text width of the form fields.
func (m Model) formInputWidth() int {
	if m.width <= 0 {
		return 32
	}
	return clamp(m.width-20, 16, 60)
}

// clamp bounds v to [minV, maxV], preferring minV when the range is empty.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
