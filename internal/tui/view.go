package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// rect is a half-open screen region.
type rect struct {
	x0, y0, x1, y1 int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

// columnBox is the screen region of one column and its visible cards.
type columnBox struct {
	area  rect
	cards []rect
}

// boardLayout records where the form fields and columns were painted.
type boardLayout struct {
	fields  []rect
	columns []columnBox
}

// fieldAt returns the form field under (x, y).
func (l boardLayout) fieldAt(x, y int) (focusArea, bool) {
	for i, r := range l.fields {
		if r.contains(x, y) {
			return focusArea(i), true
		}
	}
	return 0, false
}

// hit returns the column and card under (x, y). cardIdx is -1 when the point
// is inside a column but not on a card.
func (l boardLayout) hit(x, y int) (colIdx, cardIdx int, ok bool) {
	for ci, col := range l.columns {
		if !col.area.contains(x, y) {
			continue
		}
		for ki, c := range col.cards {
			if c.contains(x, y) {
				return ci, ki, true
			}
		}
		return ci, -1, true
	}
	return -1, -1, false
}

// palette resolves the configured colors.
type palette struct {
	accent color.Color
	muted  color.Color
	marker color.Color
	dim    color.Color
	text   color.Color
	warn   color.Color
}

func (m Model) palette() palette {
	return palette{
		accent: lipgloss.Color(m.config.AccentColor),
		muted:  lipgloss.Color(m.config.MutedColor),
		marker: lipgloss.Color(m.config.MarkerColor),
		dim:    lipgloss.Color("239"),
		text:   lipgloss.Color("252"),
		warn:   lipgloss.Color("203"),
	}
}

// View renders the board.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// layout returns the geometry of the current frame.
func (m Model) layout() boardLayout {
	_, lay := m.renderBoard(m.palette())
	return lay
}

// render paints the full frame including footer and overlays.
func (m Model) render() string {
	p := m.palette()
	content, _ := m.renderBoard(p)

	statusStyle := lipgloss.NewStyle().Foreground(p.dim)
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		content += "\n" + statusStyle.Render(m.status)
	}

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(p.muted).
		BorderTop(true).
		BorderForeground(p.dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine

	if overlay := m.renderOverlay(p, m.width-8); overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, m.width, max(1, height))
	}
	return full
}

// renderBoard paints header, form and columns and records their geometry.
func (m Model) renderBoard(p palette) (string, boardLayout) {
	var lay boardLayout

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.text)
	statusStyle := lipgloss.NewStyle().Foreground(p.dim)
	header := titleStyle.Render("tavla") + statusStyle.Render("  ["+m.modeLabel()+"]")
	sections := []string{header, ""}
	row := len(sections)

	form := m.renderForm(p)
	formWidth := lipgloss.Width(form)
	for i := range m.inputs {
		// border row, then one row per field
		lay.fields = append(lay.fields, rect{x0: 0, y0: row + 1 + i, x1: formWidth, y1: row + 2 + i})
	}
	sections = append(sections, form, "")
	row += lipgloss.Height(form) + 1

	blocks, boxes := m.renderColumns(p, row)
	lay.columns = boxes
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	return strings.Join(sections, "\n"), lay
}

// renderForm paints the three fields and the submit button.
func (m Model) renderForm(p palette) string {
	lines := make([]string, 0, len(m.inputs)+1)
	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}
	button := lipgloss.NewStyle().Foreground(p.muted).Render("[ ADD PROJECT ]  enter")
	lines = append(lines, button)

	border := p.dim
	if m.focus != focusBoard {
		border = p.accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderColumns paints both columns side by side starting at screen row top.
func (m Model) renderColumns(p palette, top int) ([]string, []columnBox) {
	cols := m.board.Columns()
	colWidth := m.columnWidthFor(m.width, len(cols))

	colTitle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(p.marker).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(p.muted)
	idStyle := lipgloss.NewStyle().Foreground(p.dim)

	type painted struct {
		lines []string
		spans [][2]int
	}
	all := make([]painted, 0, len(cols))
	innerHeight := 0
	for colIdx, col := range cols {
		cards := m.columnCards(colIdx)
		lines := []string{colTitle.Render(truncate(fmt.Sprintf("%s (%d)", col.Title(), len(cards)), colWidth)), ""}
		var spans [][2]int
		if len(cards) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for cardIdx, c := range cards {
			selected := m.focus == focusBoard && colIdx == m.selectedColumn && cardIdx == m.selectedItem
			prefix := "  "
			switch {
			case m.drag != nil && c.id == m.draggedID():
				prefix = "» "
			case selected:
				prefix = "│ "
			}
			title := prefix + truncate(c.title, colWidth-2)
			if selected || (m.drag != nil && c.id == m.draggedID()) {
				title = selectedStyle.Render(title)
			}
			start := len(lines)
			lines = append(lines,
				title,
				"  "+subStyle.Render(truncate(c.people, colWidth-2)),
				"  "+truncate(c.description, colWidth-2),
			)
			if m.config.ShowItemIDs {
				lines = append(lines, "  "+idStyle.Render(truncate(c.id, colWidth-2)))
			}
			spans = append(spans, [2]int{start, len(lines)})
			if cardIdx < len(cards)-1 {
				lines = append(lines, "")
			}
		}
		innerHeight = max(innerHeight, len(lines))
		all = append(all, painted{lines: lines, spans: spans})
	}
	if limit := m.columnInnerLimit(top); limit > 0 {
		innerHeight = min(innerHeight, limit)
	}

	blocks := make([]string, 0, len(cols)*2)
	boxes := make([]columnBox, 0, len(cols))
	x := 0
	for colIdx, col := range cols {
		border := p.dim
		switch {
		case col.Hovering():
			border = p.marker
		case m.focus == focusBoard && colIdx == m.selectedColumn:
			border = p.accent
		}
		inner := lipgloss.NewStyle().Width(colWidth).Render(fitLines(strings.Join(all[colIdx].lines, "\n"), innerHeight))
		block := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Render(inner)
		width := lipgloss.Width(block)

		box := columnBox{area: rect{x0: x, y0: top, x1: x + width, y1: top + lipgloss.Height(block)}}
		for _, span := range all[colIdx].spans {
			if span[0] >= innerHeight {
				break
			}
			// border row above the content
			box.cards = append(box.cards, rect{
				x0: x, y0: top + 1 + span[0],
				x1: x + width, y1: top + 1 + min(span[1], innerHeight),
			})
		}
		boxes = append(boxes, box)

		if colIdx > 0 {
			blocks = append(blocks, " ")
		}
		blocks = append(blocks, block)
		x += width + 1
	}
	return blocks, boxes
}

// columnWidthFor returns the text width of each column.
func (m Model) columnWidthFor(boardWidth, columns int) int {
	if columns <= 0 {
		return 24
	}
	w := 32
	if boardWidth > 0 {
		// per column: border (2) + padding (2) + gap (1)
		const colOverhead = 5
		if candidate := (boardWidth - columns*colOverhead) / columns; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 24, 48)
}

// columnInnerLimit returns the rows left for column content, or 0 when the
// terminal height is unknown.
func (m Model) columnInnerLimit(top int) int {
	if m.height <= 0 {
		return 0
	}
	// column borders, status line and the two help rows
	return max(4, m.height-top-5)
}

// modeLabel names the current interaction mode for the header.
func (m Model) modeLabel() string {
	switch {
	case m.drag != nil:
		return "carrying"
	case m.overlay == overlayAlert:
		return "alert"
	case m.focus == focusBoard:
		return "board"
	default:
		return "form"
	}
}

// renderOverlay returns the active modal, or "".
func (m Model) renderOverlay(p palette, maxWidth int) string {
	switch m.overlay {
	case overlayAlert:
		return m.renderAlertOverlay(p, maxWidth)
	case overlayActivity:
		return m.renderActivityOverlay(p, maxWidth)
	case overlayInfo:
		return m.renderInfoOverlay(p, maxWidth)
	}
	if m.help.ShowAll {
		return m.renderHelpOverlay(p, maxWidth)
	}
	return ""
}

func (m Model) renderAlertOverlay(p palette, maxWidth int) string {
	width := clamp(maxWidth, 32, 60)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(p.warn).Render("Alert"),
		"",
		m.alert,
		"",
		lipgloss.NewStyle().Foreground(p.muted).Render("enter or esc to dismiss"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.warn).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderActivityOverlay(p palette, maxWidth int) string {
	width := clamp(maxWidth, 40, 96)
	muted := lipgloss.NewStyle().Foreground(p.muted)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render("Activity"), ""}
	if len(m.activityEntries) == 0 {
		lines = append(lines, muted.Render("no activity yet"))
	}
	for _, ev := range m.activityEntries {
		lines = append(lines, muted.Render(formatActivityTimestamp(ev.OccurredAt))+"  "+truncate(ev.Summary(), width-16))
	}
	lines = append(lines, "", muted.Render("esc to close"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderInfoOverlay(p palette, maxWidth int) string {
	width := clamp(maxWidth, 40, 96)
	muted := lipgloss.NewStyle().Foreground(p.muted)
	body := muted.Render("project no longer exists")
	if item, ok := m.store.Item(m.infoItemID); ok {
		body = m.md.render(itemMarkdown(item, m.infoHistory), width-4)
		if m.config.ShowItemIDs {
			body += "\n" + muted.Render("id "+item.ID)
		}
	}
	lines := []string{body, "", muted.Render("esc to close")}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.accent).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelpOverlay(p palette, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	muted := lipgloss.NewStyle().Foreground(p.muted)
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render("Workflows"),
		"1. fill title, description and people, then enter to add a project",
		"2. tab to the board, arrows to pick a project",
		fmt.Sprintf("3. %s grabs, ←/→ carries it over, %s or enter drops, esc cancels", m.keys.grab.Help().Key, m.keys.grab.Help().Key),
		"4. or press a card with the mouse and release it over the other column",
		fmt.Sprintf("5. %s activity log  •  %s project info  •  %s copy id", m.keys.activityLog.Help().Key, m.keys.itemInfo.Help().Key, m.keys.copyID.Help().Key),
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render("tavla help"),
		"",
		hb.View(m.keys),
		"",
		muted.Render(strings.Join(workflow, "\n")),
		muted.Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// formatActivityTimestamp formats event times for the overlays.
func formatActivityTimestamp(at time.Time) string {
	if at.IsZero() {
		return "--:--:--"
	}
	local := at.Local()
	now := time.Now().In(local.Location())
	if local.Year() != now.Year() || local.YearDay() != now.YearDay() {
		return local.Format("01-02 15:04")
	}
	return local.Format("15:04:05")
}

// fitLines pads or cuts content to exactly maxLines rows.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay over base on a canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate cuts s to limit runes with a trailing ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}
