package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/mdkaba/campusmind/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// ingestEventMsg carries one progress event from the pipeline.
type ingestEventMsg service.IngestEvent

// ingestDoneMsg carries the final result once the pipeline returns.
type ingestDoneMsg struct {
	result *service.IngestResult
	err    error
}

// ingestModel is the bubbletea model for ingestion progress.
type ingestModel struct {
	events   <-chan service.IngestEvent
	resultCh <-chan ingestDoneMsg
	cancel   context.CancelFunc

	progress progress.Model
	theme    Theme

	stage     string
	lastURL   string
	completed int
	total     int
	skipped   int

	result   *service.IngestResult
	err      error
	done     bool
	quitting bool
}

func newIngestModel(events <-chan service.IngestEvent, resultCh <-chan ingestDoneMsg, cancel context.CancelFunc) ingestModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return ingestModel{
		events:   events,
		resultCh: resultCh,
		cancel:   cancel,
		progress: prog,
		theme:    defaultTheme,
		stage:    "scrape",
	}
}

// Init starts listening for pipeline events.
func (m ingestModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m ingestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case ingestEventMsg:
		m.stage = msg.Stage
		m.completed = msg.Completed
		m.total = msg.Total
		if msg.URL != "" {
			m.lastURL = msg.URL
		}
		if msg.Err != nil {
			m.skipped++
		}
		return m, m.waitForEvent()

	case ingestDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m ingestModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m ingestModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.completed) / float64(m.total)
	}

	label := "scraping pages"
	unit := "pages"
	if m.stage == "index" {
		label = "indexing chunks"
		unit = "chunks"
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", label))
	counts := fmt.Sprintf("%d/%d %s", m.completed, m.total, unit)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")

	return fmt.Sprintf("%s %s %s\n%s\n", status, m.progress.ViewAs(pct), counts, hint)
}

func (m ingestModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nIngestion aborted. Chunks already indexed are kept.\n")
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Ingestion failed: %s\n", m.err))
	}

	if m.result != nil {
		r := m.result
		output := m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Pages scraped:  %d\n", r.PagesScraped)
		if r.PagesFailed > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("  Pages failed:   %d\n", r.PagesFailed))
		}
		output += fmt.Sprintf("  Chunks indexed: %d\n", r.ChunksIndexed)
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// waitForEvent blocks on the event channel; once the pipeline closes it,
// the final result is read instead.
func (m ingestModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return ingestEventMsg(ev)
		}
		return <-m.resultCh
	}
}

// RunIngestProgress runs ingestion with the interactive progress UI.
func RunIngestProgress(svc *service.IngestService, urls []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan service.IngestEvent, 16)
	resultCh := make(chan ingestDoneMsg, 1)

	go func() {
		result, err := svc.Ingest(ctx, urls, events)
		resultCh <- ingestDoneMsg{result: result, err: err}
	}()

	p := tea.NewProgram(newIngestModel(events, resultCh, cancel))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(ingestModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}
	return nil
}
