package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	successIconConstant = "✓"
	failureIconConstant = "✗"
)

// IsTerminal reports whether writer is a file attached to a terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

type palette struct {
	success *color.Color
	failure *color.Color
	muted   *color.Color
}

func newPalette(colorsEnabled bool) palette {
	configured := palette{
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		muted:   color.New(color.Faint),
	}
	for _, candidate := range []*color.Color{configured.success, configured.failure, configured.muted} {
		if colorsEnabled {
			candidate.EnableColor()
		} else {
			candidate.DisableColor()
		}
	}
	return configured
}

func (colors palette) icon(succeeded bool) string {
	if succeeded {
		return colors.success.Sprint(successIconConstant)
	}
	return colors.failure.Sprint(failureIconConstant)
}

type flusher interface {
	Flush() error
}

func flushWriter(writer io.Writer) {
	if flushable, ok := writer.(flusher); ok {
		_ = flushable.Flush()
	}
}
