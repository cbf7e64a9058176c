package ui

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrInputClosed indicates the input ended before a response was read.
var ErrInputClosed = errors.New("input closed")

// Prompter reads line-oriented responses from an io.Reader.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter constructs a prompter from the provided reader and writer.
func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(input), writer: output}
}

// Ask writes the prompt and returns the trimmed response line.
func (prompter *Prompter) Ask(prompt string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", readError
		}
		if len(response) == 0 {
			return "", ErrInputClosed
		}
	}
	return strings.TrimSpace(response), nil
}

// Confirm interprets y/yes and n/no responses; an empty response selects defaultValue.
func (prompter *Prompter) Confirm(prompt string, defaultValue bool) (bool, error) {
	response, askError := prompter.Ask(prompt)
	if askError != nil {
		return false, askError
	}
	switch strings.ToLower(response) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultValue, nil
	}
}

// AskPositiveInteger returns the parsed response, or defaultValue when it is empty or not a positive integer.
func (prompter *Prompter) AskPositiveInteger(prompt string, defaultValue int) (int, error) {
	response, askError := prompter.Ask(prompt)
	if askError != nil {
		return 0, askError
	}
	parsedValue, parseError := strconv.Atoi(response)
	if parseError != nil || parsedValue < 1 {
		return defaultValue, nil
	}
	return parsedValue, nil
}
