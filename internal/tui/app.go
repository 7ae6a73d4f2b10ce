package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flowboard-cli/internal/drag"
	"flowboard-cli/internal/model"
	"flowboard-cli/internal/mutate"
	"flowboard-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Grab   key.Binding
	Detail key.Binding
	Cancel key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Detail, k.Cancel, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Grab, k.Detail, k.Cancel, k.Reload, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Grab:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/drop")),
		Detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type (
	reloadTickMsg   struct{}
	toastClearMsg   struct{ seq int }
	moveResolvedMsg struct{ ev mutate.Event }
)

type appModel struct {
	store store.Store
	coord *mutate.Coordinator
	drag  *drag.Controller

	width  int
	height int

	sel        boardSelection
	showDetail bool

	// pendingResolves counts outstanding remote moves so background reloads
	// don't clobber optimistic state mid-flight.
	pendingResolves int

	toast      string
	toastIsErr bool
	toastSeq   int

	keys keyMap
	help help.Model
}

func newAppModel(s store.Store, coord *mutate.Coordinator) appModel {
	return appModel{
		store: s,
		coord: coord,
		drag:  drag.NewController(),
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

func tickReload() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m appModel) Init() tea.Cmd { return tickReload() }

func (m appModel) resolveCmd(p *mutate.Pending) tea.Cmd {
	return func() tea.Msg {
		return moveResolvedMsg{ev: p.Resolve(context.Background())}
	}
}

func (m *appModel) setToast(text string, isErr bool) tea.Cmd {
	m.toast = text
	m.toastIsErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return toastClearMsg{seq: seq} })
}

func (m *appModel) reloadFromStore() {
	tasks, err := m.store.LoadTasks(context.Background())
	if err != nil {
		return
	}
	m.coord.SetTasks(tasks)
}

func (m appModel) currentBoard() boardView {
	dragID := m.drag.TaskID()
	target, targetIdx := model.Status(""), 0
	if st, idx, ok := m.drag.Target(); ok {
		target, targetIdx = st, idx
	}
	return buildBoardView(m.coord.Tasks(), dragID, target, targetIdx)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case reloadTickMsg:
		// Refresh from disk so CLI writes in another terminal show up, but
		// never while a drag or a remote move is in progress.
		if m.drag.State() == drag.StateIdle && m.pendingResolves == 0 {
			m.reloadFromStore()
		}
		return m, tickReload()

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case moveResolvedMsg:
		m.pendingResolves--
		switch msg.ev.Kind {
		case mutate.EventMoveSucceeded:
			return m, m.setToast("moved", false)
		case mutate.EventMoveFailed:
			return m, m.setToast(fmt.Sprintf("move failed, snapped back: %v", msg.ev.Err), true)
		case mutate.EventRenormalizationFailed:
			return m, m.setToast(fmt.Sprintf("reorder failed, snapped back: %v", msg.ev.Err), true)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Quit):
			m.showDetail = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.drag.State() == drag.StateActive {
			m.drag.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.drag.Cancel()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.drag.State() == drag.StateIdle && m.pendingResolves == 0 {
			m.reloadFromStore()
		}
		return m, nil

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		delta := -1
		if key.Matches(msg, m.keys.Right) {
			delta = 1
		}
		return m.moveHorizontal(delta), nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		delta := -1
		if key.Matches(msg, m.keys.Down) {
			delta = 1
		}
		return m.moveVertical(delta), nil

	case key.Matches(msg, m.keys.Grab):
		return m.grabOrDrop()

	case key.Matches(msg, m.keys.Detail):
		if _, ok := m.currentBoard().selectedTask(m.sel); ok && m.drag.State() == drag.StateIdle {
			m.showDetail = true
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) moveHorizontal(delta int) appModel {
	if m.drag.State() == drag.StateActive {
		st, idx, _ := m.drag.Target()
		b := m.currentBoard()
		ci := b.colIndexOf(st) + delta
		if ci < 0 || ci >= len(model.Statuses) {
			return m
		}
		_ = m.drag.UpdateTarget(m.coord.Tasks(), model.Statuses[ci], idx)
		m.sel.ItemID = m.drag.TaskID()
		return m
	}

	b := m.currentBoard()
	sel := b.clamp(m.sel)
	sel.Col += delta
	sel.Item = 0
	sel.ItemID = ""
	m.sel = b.clamp(sel)
	return m
}

func (m appModel) moveVertical(delta int) appModel {
	if m.drag.State() == drag.StateActive {
		st, idx, _ := m.drag.Target()
		_ = m.drag.UpdateTarget(m.coord.Tasks(), st, idx+delta)
		m.sel.ItemID = m.drag.TaskID()
		return m
	}

	b := m.currentBoard()
	sel := b.clamp(m.sel)
	sel.Item += delta
	sel.ItemID = ""
	m.sel = b.clamp(sel)
	return m
}

func (m appModel) grabOrDrop() (tea.Model, tea.Cmd) {
	if m.drag.State() == drag.StateActive {
		plan, err := m.drag.Commit(m.coord.Tasks())
		if err != nil {
			return m, m.setToast(err.Error(), true)
		}
		pending, err := m.coord.Commit(plan)
		if err != nil {
			return m, m.setToast(err.Error(), true)
		}
		m.sel.ItemID = plan.TaskID
		if pending == nil {
			// No-op drop: nothing to write.
			return m, nil
		}
		m.pendingResolves++
		return m, m.resolveCmd(pending)
	}

	task, ok := m.currentBoard().selectedTask(m.sel)
	if !ok {
		return m, nil
	}
	if m.coord.InFlight(task.ID) {
		return m, m.setToast("task is still saving", true)
	}
	if err := m.drag.Begin(m.coord.Tasks(), task.ID); err != nil {
		return m, m.setToast(err.Error(), true)
	}
	m.sel.ItemID = task.ID
	return m, nil
}

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	if m.showDetail {
		return m.viewDetail()
	}

	title := lipgloss.NewStyle().Bold(true).Render("flowboard")
	mode := ""
	if m.drag.State() == drag.StateActive {
		mode = styleMuted().Render("  moving — arrows to place, space to drop, esc to cancel")
	}
	header := normalizePane(title+mode, m.width, 1)

	footerParts := []string{m.help.View(m.keys)}
	if m.toast != "" {
		st := lipgloss.NewStyle().Foreground(colorOkFg)
		if m.toastIsErr {
			st = lipgloss.NewStyle().Foreground(colorErrorFg)
		}
		footerParts = append([]string{st.Render(m.toast)}, footerParts...)
	}
	footer := normalizePane(strings.Join(footerParts, "  "), m.width, 1)

	boardH := m.height - 3
	boardPane := renderBoard(m.currentBoard(), m.sel, m.coord.InFlight, m.width, boardH)

	return header + "\n" + boardPane + "\n" + footer
}

func (m appModel) viewDetail() string {
	task, ok := m.currentBoard().selectedTask(m.sel)
	if !ok {
		return normalizePane("", m.width, m.height)
	}

	title := lipgloss.NewStyle().Bold(true).Render(task.Title)
	meta := make([]string, 0, 3)
	meta = append(meta, string(task.Status))
	if task.Assignee != "" {
		meta = append(meta, "@"+task.Assignee)
	}
	for _, tag := range task.Tags {
		meta = append(meta, "#"+tag)
	}

	lines := []string{
		title,
		styleMuted().Render(strings.Join(meta, "  ")),
		"",
	}
	if notes := renderMarkdown(task.Notes, m.width-4); notes != "" {
		lines = append(lines, notes)
	} else {
		lines = append(lines, styleMuted().Render("(no notes)"))
	}
	lines = append(lines, "", styleMuted().Render("esc to go back"))

	return normalizePane(strings.Join(lines, "\n"), m.width, m.height)
}
