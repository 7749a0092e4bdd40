// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	width           int
	maxProgress     int
	currentProgress int
	startTime       time.Time
	bar             strings.Builder
}

// NewManualProgressBar returns a new ManualProgressBar that is width
// characters wide, reaches 100% after max calls to Increment, and
// writes to out
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	p.Add(1)
}

// Add adds n to the internal progress counter, saturating at the
// maximum progress
func (p *ManualProgressBar) Add(n int) {
	p.currentProgress += n
	if p.currentProgress > p.maxProgress {
		p.currentProgress = p.maxProgress
	}
}

// Fraction returns the fraction of progress made, in [0, 1]
func (p *ManualProgressBar) Fraction() float64 {
	return float64(p.currentProgress) / float64(p.maxProgress)
}

// String returns the progress bar without elapsed time
func (p *ManualProgressBar) String() string {
	filled := int(p.Fraction() * float64(p.width))
	return "|" + strings.Repeat("█", filled) +
		strings.Repeat(" ", p.width-filled) +
		fmt.Sprintf("| [%.2f%%]", p.Fraction()*100)
}

// Display overwrites the current terminal line with the progress bar
// and the time elapsed since the bar was created
func (p *ManualProgressBar) Display() error {
	p.bar.Reset()
	p.bar.WriteString("\r\033[K")
	p.bar.WriteString(p.String())
	fmt.Fprintf(&p.bar, " elapsed: %v",
		time.Since(p.startTime).Truncate(time.Second))

	_, err := io.WriteString(p.out, p.bar.String())
	return err
}

// Close moves the output past the progress bar
func (p *ManualProgressBar) Close() error {
	_, err := io.WriteString(p.out, "\n")
	return err
}
