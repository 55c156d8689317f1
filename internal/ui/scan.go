package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/dupescan/internal/dedup"
	pr "github.com/fenilsonani/dupescan/internal/progress"
	"github.com/fenilsonani/dupescan/internal/ui/styles"
	"github.com/fenilsonani/dupescan/pkg/utils"
)

// ProgressMsg wraps a progress update for the bubbletea loop
type ProgressMsg pr.Update

// CompleteMsg carries the finished result
type CompleteMsg struct {
	Result *dedup.Result
	Err    error
}

// ScanModel drives the interactive scan view: spinner and progress bar
// while the grouper runs, a styled group browser once it finishes.
type ScanModel struct {
	spinner  spinner.Model
	bar      progress.Model
	updates  <-chan pr.Update
	done     <-chan CompleteMsg
	latest   pr.Update
	result   *dedup.Result
	err      error
	scanning bool
	offset   int
	height   int
	start    time.Time
}

// NewScanModel creates the interactive model. updates and done are fed by
// the caller running the grouper in its own goroutine.
func NewScanModel(updates <-chan pr.Update, done <-chan CompleteMsg) *ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &ScanModel{
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient()),
		updates:  updates,
		done:     done,
		scanning: true,
		height:   24,
		start:    time.Now(),
	}
}

// Init starts the spinner and the channel pumps
func (m *ScanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate(), m.waitForDone())
}

func (m *ScanModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		if u, ok := <-m.updates; ok {
			return ProgressMsg(u)
		}
		return nil
	}
}

func (m *ScanModel) waitForDone() tea.Cmd {
	return func() tea.Msg {
		return CompleteMsg(<-m.done)
	}
}

// Update handles messages
func (m *ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.result != nil && m.offset < len(m.result.Groups)-1 {
				m.offset++
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		m.latest = pr.Update(msg)
		return m, m.waitForUpdate()

	case CompleteMsg:
		m.scanning = false
		m.result = msg.Result
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// View renders the scan view
func (m *ScanModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("dupescan"))
	b.WriteString("\n\n")

	if m.scanning {
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" %s ", m.latest.Phase))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.start).Round(time.Second))))
		b.WriteString("\n\n")

		if m.latest.Total > 0 {
			percent := float64(m.latest.Processed) / float64(m.latest.Total)
			b.WriteString(m.bar.ViewAs(percent))
			b.WriteString("\n\n")
		}
		if m.latest.CurrentPath != "" {
			b.WriteString(styles.FilePathStyle.Render(truncate(m.latest.CurrentPath, 70)))
			b.WriteString("\n")
		}
		b.WriteString(styles.HelpStyle.Render("\nq: abort (partial results are kept)"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("scan interrupted: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.result == nil || len(m.result.Groups) == 0 {
		b.WriteString(styles.SuccessStyle.Render("No duplicates found."))
		b.WriteString(styles.HelpStyle.Render("\n\nq: quit"))
		return b.String()
	}

	b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("%d duplicate groups, %s reclaimable",
		len(m.result.Groups), utils.FormatBytes(m.result.WastedSize))))
	b.WriteString("\n\n")

	visible := m.height - 8
	if visible < 1 {
		visible = 1
	}
	for i := m.offset; i < len(m.result.Groups) && i < m.offset+visible; i++ {
		group := m.result.Groups[i]
		b.WriteString(styles.FileSizeStyle.Render(fmt.Sprintf("[%s x%d] ", utils.FormatBytes(group.Size), len(group.Files))))
		b.WriteString(styles.FilePathStyle.Render(group.Files[0].Path))
		b.WriteString("\n")
		for _, file := range group.Files[1:] {
			b.WriteString(styles.DimStyle.Render("  = " + file.Path))
			b.WriteString("\n")
		}
	}

	b.WriteString(styles.HelpStyle.Render("\nj/k: scroll  q: quit"))
	return b.String()
}
