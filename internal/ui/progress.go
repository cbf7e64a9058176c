package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	progressBarWidthConstant           = 30
	progressFilledCellConstant         = "█"
	progressEmptyCellConstant          = "░"
	progressLineTemplateConstant       = "[%s] %.1f%% (%d/%d) - %s"
	progressStatusSuffixConstant       = " - "
	progressNewCommitsTemplateConstant = " (+%d)"
	carriageReturnConstant             = "\r"
	lineFeedConstant                   = "\n"
	percentageScaleConstant            = 100.0
)

// ProgressRenderer draws a single-line progress bar for batches and inspections.
// On a terminal the line is redrawn in place; elsewhere each event gets its own line.
type ProgressRenderer struct {
	writer        io.Writer
	interactive   bool
	colors        palette
	mutex         sync.Mutex
	lastLineWidth int
}

// NewProgressRenderer renders to writer, detecting whether it is a terminal.
func NewProgressRenderer(writer io.Writer) *ProgressRenderer {
	interactive := IsTerminal(writer)
	return NewProgressRendererWithMode(writer, interactive, interactive)
}

// NewProgressRendererWithMode renders to writer with explicit redraw and color modes.
func NewProgressRendererWithMode(writer io.Writer, interactive bool, colorsEnabled bool) *ProgressRenderer {
	return &ProgressRenderer{writer: writer, interactive: interactive, colors: newPalette(colorsEnabled)}
}

// TaskCompleted implements batch.ProgressObserver.
func (renderer *ProgressRenderer) TaskCompleted(event batch.ProgressEvent) {
	result := event.Result
	statusText := renderer.colors.icon(result.Succeeded()) + " " + string(result.Status)
	if result.NewCommitCount > 0 && result.Kind == batch.OperationUpdate {
		statusText += fmt.Sprintf(progressNewCommitsTemplateConstant, result.NewCommitCount)
	}
	renderer.render(event.Completed, event.Total, result.Reference.Identifier, statusText)
}

// StepCompleted implements workspace.StepObserver.
func (renderer *ProgressRenderer) StepCompleted(event workspace.StepEvent) {
	renderer.render(event.Completed, event.Total, event.Identifier, event.Status)
}

func (renderer *ProgressRenderer) render(completed int, total int, identifier string, statusText string) {
	if renderer == nil || renderer.writer == nil || total <= 0 {
		return
	}

	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()

	line := FormatProgressLine(completed, total, identifier, statusText)
	if !renderer.interactive {
		fmt.Fprint(renderer.writer, line+lineFeedConstant)
		flushWriter(renderer.writer)
		return
	}

	lineWidth := utf8.RuneCountInString(line)
	padding := ""
	if renderer.lastLineWidth > lineWidth {
		padding = strings.Repeat(" ", renderer.lastLineWidth-lineWidth)
	}
	renderer.lastLineWidth = lineWidth

	output := carriageReturnConstant + line + padding
	if completed >= total {
		output += lineFeedConstant
		renderer.lastLineWidth = 0
	}
	fmt.Fprint(renderer.writer, output)
	flushWriter(renderer.writer)
}

// FormatProgressLine builds the progress bar text for completed of total.
func FormatProgressLine(completed int, total int, identifier string, statusText string) string {
	if total <= 0 {
		return ""
	}
	if completed > total {
		completed = total
	}
	filledCells := progressBarWidthConstant * completed / total
	bar := strings.Repeat(progressFilledCellConstant, filledCells) + strings.Repeat(progressEmptyCellConstant, progressBarWidthConstant-filledCells)
	percentage := percentageScaleConstant * float64(completed) / float64(total)

	line := fmt.Sprintf(progressLineTemplateConstant, bar, percentage, completed, total, identifier)
	if len(statusText) > 0 {
		line += progressStatusSuffixConstant + statusText
	}
	return line
}
