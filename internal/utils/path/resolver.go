package pathutils

import (
	"path/filepath"
	"strings"
)

// PathResolver normalizes configured file and directory locations.
type PathResolver struct {
	homeExpander *HomeExpander
}

// NewPathResolver constructs a PathResolver. A nil expander uses the operating system home directory.
func NewPathResolver(homeExpander *HomeExpander) *PathResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &PathResolver{homeExpander: homeExpander}
}

// Resolve trims whitespace, expands a leading tilde, and cleans the path. Empty input stays empty.
func (resolver *PathResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	return filepath.Clean(resolver.homeExpander.Expand(trimmedPath))
}

// ResolveWithin resolves candidatePath and, when it is relative, anchors it under baseDirectory.
func (resolver *PathResolver) ResolveWithin(baseDirectory string, candidatePath string) string {
	resolvedPath := resolver.Resolve(candidatePath)
	if len(resolvedPath) == 0 || filepath.IsAbs(resolvedPath) {
		return resolvedPath
	}
	resolvedBase := resolver.Resolve(baseDirectory)
	if len(resolvedBase) == 0 {
		return resolvedPath
	}
	return filepath.Join(resolvedBase, resolvedPath)
}
