package repository

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	identifierSeparatorConstant            = "/"
	currentDirectorySegmentConstant        = "."
	parentDirectorySegmentConstant         = ".."
	localDirectorySeparatorConstant        = "_"
	invalidIdentifierErrorTemplateConstant = "invalid repository identifier %q: %w"
)

var (
	// ErrIdentifierFormat indicates an identifier that is not of the form owner/name.
	ErrIdentifierFormat = errors.New("expected owner/name")
	// ErrIdentifierWhitespace indicates an identifier containing whitespace.
	ErrIdentifierWhitespace = errors.New("identifier must not contain whitespace")
)

// Reference binds a repository identifier to its working copy location.
// Malformed identifiers keep an empty LocalPath so nothing is ever resolved for them.
type Reference struct {
	Identifier string
	LocalPath  string
	Exists     bool
}

// ValidateIdentifier checks that identifier is of the form owner/name.
func ValidateIdentifier(identifier string) error {
	if strings.IndexFunc(identifier, unicode.IsSpace) >= 0 {
		return fmt.Errorf(invalidIdentifierErrorTemplateConstant, identifier, ErrIdentifierWhitespace)
	}
	owner, name, found := strings.Cut(identifier, identifierSeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, identifierSeparatorConstant) {
		return fmt.Errorf(invalidIdentifierErrorTemplateConstant, identifier, ErrIdentifierFormat)
	}
	if isDirectorySegment(owner) || isDirectorySegment(name) {
		return fmt.Errorf(invalidIdentifierErrorTemplateConstant, identifier, ErrIdentifierFormat)
	}
	return nil
}

func isDirectorySegment(segment string) bool {
	return segment == currentDirectorySegmentConstant || segment == parentDirectorySegmentConstant
}

// LocalDirectoryName derives the working copy directory name, e.g. owner_name.
func LocalDirectoryName(identifier string) string {
	return strings.ReplaceAll(identifier, identifierSeparatorConstant, localDirectorySeparatorConstant)
}

// NewReference validates identifier and resolves its working copy under repositoriesDirectory.
// Existence is left unset; ListLoader.Resolve populates it.
func NewReference(identifier string, repositoriesDirectory string) (Reference, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if validationError := ValidateIdentifier(trimmedIdentifier); validationError != nil {
		return Reference{}, validationError
	}
	return Reference{
		Identifier: trimmedIdentifier,
		LocalPath:  filepath.Join(repositoriesDirectory, LocalDirectoryName(trimmedIdentifier)),
	}, nil
}
