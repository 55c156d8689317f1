package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/fenilsonani/dupescan/internal/progress"
	"github.com/fenilsonani/dupescan/pkg/utils"
)

// LiveProgress renders a single status line that is rewritten in place,
// for non-interactive runs on a terminal.
type LiveProgress struct {
	mu         sync.Mutex
	termWidth  int
	enabled    bool
	lastUpdate time.Time
	startTime  time.Time
}

// NewLiveProgress creates a live progress display. It disables itself when
// stdout is not a terminal.
func NewLiveProgress() *LiveProgress {
	width := 80
	enabled := term.IsTerminal(int(os.Stdout.Fd()))
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	return &LiveProgress{
		termWidth: width,
		enabled:   enabled,
		startTime: time.Now(),
	}
}

// Update rewrites the status line. Updates are throttled to avoid flicker.
func (lp *LiveProgress) Update(u progress.Update) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled {
		return
	}

	now := time.Now()
	if now.Sub(lp.lastUpdate) < 100*time.Millisecond && u.Phase != progress.PhaseComplete {
		return
	}
	lp.lastUpdate = now

	line := fmt.Sprintf("%s | %d/%d files | %d groups | %s | %s",
		u.Phase, u.Processed, u.Total, u.GroupsFound,
		utils.FormatBytes(u.WastedSize),
		time.Since(lp.startTime).Round(time.Second))
	fmt.Printf("\r\033[K%s", truncate(line, lp.termWidth-1))
}

// Finish clears the status line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled {
		return
	}
	fmt.Print("\r\033[K")
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
