package repository

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/samber/lo"
)

const (
	caseInsensitivePrefixConstant       = "(?i)"
	invalidPatternErrorTemplateConstant = "%w %q: %v"
)

// ErrInvalidPattern indicates a filter pattern that is not a valid regular expression.
var ErrInvalidPattern = errors.New("invalid filter pattern")

// Filter keeps references whose identifier matches pattern, ignoring case.
// An invalid pattern yields the unfiltered references together with an ErrInvalidPattern error.
func Filter(references []Reference, pattern string) ([]Reference, error) {
	expression, compileError := regexp.Compile(caseInsensitivePrefixConstant + pattern)
	if compileError != nil {
		return references, fmt.Errorf(invalidPatternErrorTemplateConstant, ErrInvalidPattern, pattern, compileError)
	}
	return lo.Filter(references, func(reference Reference, _ int) bool {
		return expression.MatchString(reference.Identifier)
	}), nil
}
