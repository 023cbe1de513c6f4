// Package tui implements the interactive migration UI.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rebblit/rebblit-db/pkg/migration"
)

type mode int

const (
	modeList mode = iota
	modeConfirm
	modeExecuting
	modeComplete
	modeError
)

// Model drives the interactive migration screen.
type Model struct {
	mode          mode
	action        string // "up" or "down"
	list          list.Model
	confirmYes    bool
	confirmTarget int
	err           error
	width         int
	height        int
	dbURL         string
	migrationsDir string
	migrations    []migration.Migration
	status        []migration.MigrationRecord
	pool          *pgxpool.Pool
	executor      *migration.Executor
}

// NewModel creates the migration UI model
func NewModel(action, dbURL, migrationsDir string) Model {
	l := list.New([]list.Item{}, itemDelegate{}, 0, 0)
	l.Title = "Rebblit Migrations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{
		mode:          modeList,
		action:        action,
		list:          l,
		dbURL:         dbURL,
		migrationsDir: migrationsDir,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.dbURL, m.migrationsDir), tea.EnterAltScreen)
}

type loadedMsg struct {
	migrations []migration.Migration
	status     []migration.MigrationRecord
	pool       *pgxpool.Pool
	executor   *migration.Executor
}

type executedMsg struct {
	version string
	err     error
}

type errorMsg struct {
	err error
}

func loadCmd(dbURL, migrationsDir string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to connect to database: %w", err)}
		}

		executor := migration.NewExecutor(pool)
		if err := executor.Initialize(ctx); err != nil {
			pool.Close()
			return errorMsg{err: fmt.Errorf("failed to initialize migrations: %w", err)}
		}

		generator := migration.NewGenerator(migrationsDir)
		files, err := generator.ListMigrations()
		if err != nil {
			pool.Close()
			return errorMsg{err: fmt.Errorf("failed to list migrations: %w", err)}
		}

		var migrations []migration.Migration
		for _, file := range files {
			mig, err := generator.ReadMigration(file)
			if err != nil {
				pool.Close()
				return errorMsg{err: fmt.Errorf("failed to read migration: %w", err)}
			}
			migrations = append(migrations, *mig)
		}

		status, err := executor.GetStatus(ctx, migrations)
		if err != nil {
			pool.Close()
			return errorMsg{err: fmt.Errorf("failed to get migration status: %w", err)}
		}

		return loadedMsg{migrations: migrations, status: status, pool: pool, executor: executor}
	}
}

func executeCmd(executor *migration.Executor, mig migration.Migration, action string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		if err := executor.Lock(ctx); err != nil {
			return executedMsg{version: mig.Version, err: fmt.Errorf("failed to acquire lock: %w", err)}
		}
		defer func() { _ = executor.Unlock(ctx) }()

		var err error
		if action == "up" {
			err = executor.Apply(ctx, mig, false)
		} else {
			err = executor.Rollback(ctx, mig, false)
		}
		return executedMsg{version: mig.Version, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case loadedMsg:
		m.migrations = msg.migrations
		m.status = msg.status
		m.pool = msg.pool
		m.executor = msg.executor

		items := make([]list.Item, len(msg.status))
		for i, s := range msg.status {
			appliedAt := ""
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			items[i] = item{
				version:   s.Version,
				name:      s.Name,
				status:    string(s.Status),
				appliedAt: appliedAt,
			}
		}
		m.list.SetItems(items)
		return m, nil

	case executedMsg:
		if msg.err != nil {
			m.mode = modeError
			m.err = msg.err
			return m, nil
		}
		m.mode = modeComplete
		return m, nil

	case errorMsg:
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.pool != nil {
				m.pool.Close()
			}
			return m, tea.Quit

		case "enter", " ":
			idx := m.list.Index()
			if idx < 0 || idx >= len(m.status) {
				return m, nil
			}
			record := m.status[idx]
			if m.action == "up" && record.Status != migration.StatusPending {
				return m, nil
			}
			if m.action == "down" && record.Status != migration.StatusApplied {
				return m, nil
			}
			m.confirmTarget = idx
			m.confirmYes = false
			m.mode = modeConfirm
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case modeConfirm:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.mode = modeList
			return m, nil
		case "left", "h":
			m.confirmYes = true
			return m, nil
		case "right", "l":
			m.confirmYes = false
			return m, nil
		case "enter":
			if !m.confirmYes {
				m.mode = modeList
				return m, nil
			}
			m.mode = modeExecuting
			return m, executeCmd(m.executor, m.migrations[m.confirmTarget], m.action)
		}

	case modeComplete, modeError:
		switch msg.String() {
		case "ctrl+c", "q", "enter":
			if m.pool != nil {
				m.pool.Close()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	switch m.mode {
	case modeList:
		help := helpStyle.Render(
			formatKey("↑/↓", "navigate") + " • " +
				formatKey("enter", "execute") + " • " +
				formatKey("q", "quit"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help)

	case modeConfirm:
		record := m.status[m.confirmTarget]
		return m.centered(m.confirmView(record))

	case modeExecuting:
		record := m.status[m.confirmTarget]
		return m.centered(boxStyle.Render(
			titleStyle.Render("Executing") + "\n\n" +
				infoStyle.Render(fmt.Sprintf("%s %s - %s", m.action, record.Version, record.Name)),
		))

	case modeComplete:
		return m.centered(boxStyle.Render(
			titleStyle.Render("Migration Complete") + "\n\n" +
				successStyle.Render("✓ "+m.status[m.confirmTarget].Version) + "\n\n" +
				helpStyle.Render(formatKey("enter/q", "exit")),
		))

	case modeError:
		return m.centered(errorBoxStyle.Render(
			titleStyle.Render("Migration Failed") + "\n\n" +
				m.err.Error() + "\n\n" +
				helpStyle.Render(formatKey("enter/q", "exit")),
		))
	}
	return ""
}

func (m Model) confirmView(record migration.MigrationRecord) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Confirm Migration %s", strings.ToUpper(m.action))))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Are you sure you want to %s migration:\n%s - %s", m.action, record.Version, record.Name))
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")
	if m.confirmYes {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(formatKey("←/→", "navigate") + " • " + formatKey("enter", "confirm") + " • " + formatKey("esc/q", "cancel")))

	return boxStyle.Render(b.String())
}

func (m Model) centered(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// item represents a migration in the list
type item struct {
	version   string
	name      string
	status    string
	appliedAt string
}

func (i item) FilterValue() string { return i.name }
func (i item) Title() string {
	return fmt.Sprintf("%s %s - %s", formatStatus(i.status), i.version, i.name)
}
func (i item) Description() string {
	if i.appliedAt != "" {
		return mutedStyle.Render("Applied: " + i.appliedAt)
	}
	return mutedStyle.Render("Not applied")
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 1 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	i, ok := li.(item)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}
	_, _ = fmt.Fprint(w, s)
}

// RunMigrateUI starts the interactive migration UI
func RunMigrateUI(action, dbURL, migrationsDir string) error {
	p := tea.NewProgram(NewModel(action, dbURL, migrationsDir))
	_, err := p.Run()
	return err
}
