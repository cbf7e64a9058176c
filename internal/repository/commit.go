package repository

import (
	"strings"
	"time"
)

const shortHashLengthConstant = 7

// Commit describes a single commit read from a working copy.
type Commit struct {
	Hash    string
	Author  string
	Date    time.Time
	Message string
}

// ShortHash returns the abbreviated commit hash.
func (commit Commit) ShortHash() string {
	if len(commit.Hash) <= shortHashLengthConstant {
		return commit.Hash
	}
	return commit.Hash[:shortHashLengthConstant]
}

// Subject returns the first line of the commit message.
func (commit Commit) Subject() string {
	subject, _, _ := strings.Cut(strings.TrimSpace(commit.Message), "\n")
	return strings.TrimSpace(subject)
}

// Truncate shortens text to at most limit runes.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if limit < 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
