package tui

import (
	"fmt"
	"strings"

	"flowboard-cli/internal/board"
	"flowboard-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type boardSelection struct {
	Col  int
	Item int
	// ItemID is the stable selected task id (preferred over Item index for
	// tracking focus across re-sorts and status changes).
	ItemID string
}

type boardCol struct {
	status model.Status
	label  string
	tasks  []model.Task
}

type boardView struct {
	cols []boardCol
	// dragID marks the task rendered provisionally at its drag target.
	dragID string
}

// buildBoardView partitions tasks into display columns. While a drag is
// active the grabbed task is lifted out of its committed slot and shown at
// the session's current target instead; this is purely visual, the task data
// itself is untouched until the drop commits.
func buildBoardView(tasks []model.Task, dragID string, target model.Status, targetIdx int) boardView {
	cols := make([]boardCol, 0, len(model.Statuses))
	part := board.Partition(tasks)
	for _, st := range model.Statuses {
		col := boardCol{status: st, label: st.Label()}
		for _, t := range part[st] {
			if t.ID == dragID {
				continue
			}
			col.tasks = append(col.tasks, t)
		}
		cols = append(cols, col)
	}

	b := boardView{cols: cols, dragID: dragID}
	if dragID == "" {
		return b
	}
	dragged, ok := board.FindTask(tasks, dragID)
	if !ok {
		return b
	}
	for i := range b.cols {
		if b.cols[i].status != target {
			continue
		}
		col := b.cols[i].tasks
		if targetIdx < 0 {
			targetIdx = 0
		}
		if targetIdx > len(col) {
			targetIdx = len(col)
		}
		col = append(col[:targetIdx:targetIdx], append([]model.Task{dragged}, col[targetIdx:]...)...)
		b.cols[i].tasks = col
		break
	}
	return b
}

func (b boardView) indexOfTaskID(taskID string) (int, int, bool) {
	if taskID == "" {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ii := range b.cols[ci].tasks {
			if b.cols[ci].tasks[ii].ID == taskID {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}

func (b boardView) clamp(sel boardSelection) boardSelection {
	if len(b.cols) == 0 {
		return boardSelection{Col: 0, Item: -1}
	}

	// Prefer stable selection by ID when present.
	if ci, ii, ok := b.indexOfTaskID(sel.ItemID); ok {
		sel.Col = ci
		sel.Item = ii
	} else {
		sel.ItemID = ""
	}

	if sel.Col < 0 {
		sel.Col = 0
	}
	if sel.Col >= len(b.cols) {
		sel.Col = len(b.cols) - 1
	}

	n := len(b.cols[sel.Col].tasks)
	if n == 0 {
		sel.Item = -1
		return sel
	}
	if sel.Item < 0 {
		sel.Item = 0
	}
	if sel.Item >= n {
		sel.Item = n - 1
	}
	sel.ItemID = b.cols[sel.Col].tasks[sel.Item].ID
	return sel
}

func (b boardView) selectedTask(sel boardSelection) (model.Task, bool) {
	sel = b.clamp(sel)
	if sel.Col < 0 || sel.Col >= len(b.cols) {
		return model.Task{}, false
	}
	if sel.Item < 0 || sel.Item >= len(b.cols[sel.Col].tasks) {
		return model.Task{}, false
	}
	return b.cols[sel.Col].tasks[sel.Item], true
}

func (b boardView) colIndexOf(status model.Status) int {
	for i := range b.cols {
		if b.cols[i].status == status {
			return i
		}
	}
	return 0
}

// wrapPlainText word-wraps s to maxW columns, hard-cutting words wider than
// the pane.
func wrapPlainText(s string, maxW int) []string {
	if maxW <= 0 {
		return []string{""}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{""}
	}

	words := strings.Fields(s)
	lines := make([]string, 0, 4)
	cur := ""
	curW := 0
	for _, w := range words {
		wordW := xansi.StringWidth(w)
		if cur != "" && curW+1+wordW <= maxW {
			cur += " " + w
			curW += 1 + wordW
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		for wordW > maxW {
			lines = append(lines, xansi.Cut(w, 0, maxW))
			w = xansi.Cut(w, maxW, wordW)
			wordW = xansi.StringWidth(w)
		}
		cur = w
		curW = wordW
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// renderBoard renders the columns side by side. The selected card is
// highlighted; the grabbed card (during a drag) gets the accent background;
// cards with an in-flight mutation are marked as saving.
func renderBoard(b boardView, sel boardSelection, inFlight func(string) bool, width, height int) string {
	n := len(b.cols)
	if n == 0 || width <= 0 {
		return normalizePane("", width, height)
	}
	sel = b.clamp(sel)

	gap := 2
	avail := width - gap*(n-1)
	if avail < n {
		avail = n
	}
	colW := avail / n
	if colW < 10 {
		colW = 10
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
	headerSelectedStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
	muted := styleMuted()

	// Whitespace defines the card, not borders; stacked bordered cards read
	// like a continuous list.
	itemStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	itemSelectedStyle := itemStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	itemGrabbedStyle := itemStyle.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	itemInnerW := colW - 2
	if itemInnerW < 0 {
		itemInnerW = 0
	}

	renderCard := func(t model.Task, selected, grabbed bool) string {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "(untitled)"
		}
		lines := wrapPlainText(title, itemInnerW)

		meta := make([]string, 0, 2)
		if a := strings.TrimSpace(t.Assignee); a != "" {
			meta = append(meta, "@"+a)
		}
		for _, tag := range t.Tags {
			meta = append(meta, "#"+tag)
		}
		if inFlight != nil && inFlight(t.ID) {
			meta = append(meta, "(saving)")
		}
		if len(meta) > 0 {
			lines = append(lines, truncateText(strings.Join(meta, " "), itemInnerW))
		}

		inner := normalizePane(strings.Join(lines, "\n"), itemInnerW, 0)
		switch {
		case grabbed:
			return itemGrabbedStyle.Render(inner)
		case selected:
			return itemSelectedStyle.Render(inner)
		}
		return itemStyle.Render(inner)
	}

	renderCol := func(colIdx int, c boardCol) string {
		head := truncateText(fmt.Sprintf("%s (%d)", c.label, len(c.tasks)), colW)
		hs := headerStyle
		if colIdx == sel.Col {
			hs = headerSelectedStyle
		}
		lines := []string{hs.Width(colW).Render(head)}

		if len(c.tasks) == 0 {
			lines = append(lines, muted.Render("(empty)"))
			return normalizePane(strings.Join(lines, "\n"), colW, height)
		}

		lines = append(lines, "")
		for i, t := range c.tasks {
			grabbed := b.dragID != "" && t.ID == b.dragID
			selected := colIdx == sel.Col && i == sel.Item
			card := renderCard(t, selected, grabbed)
			lines = append(lines, strings.Split(card, "\n")...)

			if i < len(c.tasks)-1 {
				sepW := colW - 2
				if sepW < 0 {
					sepW = 0
				}
				lines = append(lines, muted.Render(" "+strings.Repeat("─", sepW)+" "))
			}
		}
		return normalizePane(strings.Join(lines, "\n"), colW, height)
	}

	rendered := make([]string, 0, n)
	for i, c := range b.cols {
		rendered = append(rendered, renderCol(i, c))
	}

	out := rendered[0]
	sep := strings.Repeat(" ", gap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, height)
}
