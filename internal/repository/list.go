package repository

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	listCommentPrefixConstant          = "#"
	yamlExtensionConstant              = ".yaml"
	ymlExtensionConstant               = ".yml"
	listReadErrorTemplateConstant      = "unable to read repository list %s: %w"
	listParseErrorTemplateConstant     = "unable to parse repository list %s: %w"
	invalidIdentifierWarningConstant   = "repository identifier is malformed; operations on it will fail"
	duplicateIdentifierWarningConstant = "repository shares a working copy with an earlier entry and was skipped"
	listLoadedMessageConstant          = "repository list loaded"
	logFieldIdentifierConstant         = "repository"
	logFieldConflictingIdentifierConst = "conflicting_repository"
	logFieldListPathConstant           = "list_path"
	logFieldRepositoryCountConstant    = "repository_count"
	logFieldValidationErrorConstant    = "validation_error"
	logFieldLocalPathConstant          = "local_path"
)

type listDocument struct {
	Repositories []string `yaml:"repositories"`
}

// ListLoader reads repository lists and resolves them into references.
type ListLoader struct {
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewListLoader constructs a ListLoader. Nil dependencies fall back to the OS filesystem and a no-op logger.
func NewListLoader(fileSystem FileSystem, logger *zap.Logger) *ListLoader {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListLoader{fileSystem: fileSystem, logger: logger}
}

// Load reads listPath and returns one reference per distinct working copy, in file order.
// Files ending in .yaml or .yml are read as a document with a repositories sequence;
// anything else is read as one identifier per line with # comments.
func (loader *ListLoader) Load(listPath string, repositoriesDirectory string) ([]Reference, error) {
	contents, readError := loader.fileSystem.ReadFile(listPath)
	if readError != nil {
		return nil, fmt.Errorf(listReadErrorTemplateConstant, listPath, readError)
	}

	identifiers, parseError := parseIdentifiers(listPath, contents)
	if parseError != nil {
		return nil, fmt.Errorf(listParseErrorTemplateConstant, listPath, parseError)
	}

	references := make([]Reference, 0, len(identifiers))
	for _, identifier := range identifiers {
		if validationError := ValidateIdentifier(identifier); validationError != nil {
			loader.logger.Warn(invalidIdentifierWarningConstant,
				zap.String(logFieldIdentifierConstant, identifier),
				zap.String(logFieldValidationErrorConstant, validationError.Error()),
			)
			references = append(references, Reference{Identifier: identifier})
			continue
		}
		references = append(references, Reference{
			Identifier: identifier,
			LocalPath:  filepath.Join(repositoriesDirectory, LocalDirectoryName(identifier)),
		})
	}

	distinctReferences := lo.UniqBy(references, workingCopyKey)
	if len(distinctReferences) != len(references) {
		loader.reportCollisions(references, distinctReferences)
	}

	resolvedReferences := loader.Refresh(distinctReferences)

	loader.logger.Debug(listLoadedMessageConstant,
		zap.String(logFieldListPathConstant, listPath),
		zap.Int(logFieldRepositoryCountConstant, len(resolvedReferences)),
	)

	return resolvedReferences, nil
}

// Resolve builds a validated reference for a single identifier.
func (loader *ListLoader) Resolve(identifier string, repositoriesDirectory string) (Reference, error) {
	reference, referenceError := NewReference(identifier, repositoriesDirectory)
	if referenceError != nil {
		return Reference{}, referenceError
	}
	reference.Exists = DirectoryExists(loader.fileSystem, reference.LocalPath)
	return reference, nil
}

// Refresh returns copies of references with their existence flags recomputed.
func (loader *ListLoader) Refresh(references []Reference) []Reference {
	return lo.Map(references, func(reference Reference, _ int) Reference {
		reference.Exists = len(reference.LocalPath) > 0 && DirectoryExists(loader.fileSystem, reference.LocalPath)
		return reference
	})
}

// workingCopyKey groups references sharing a working copy; malformed entries only collide with themselves.
func workingCopyKey(reference Reference) string {
	if len(reference.LocalPath) == 0 {
		return reference.Identifier
	}
	return reference.LocalPath
}

func (loader *ListLoader) reportCollisions(references []Reference, distinctReferences []Reference) {
	firstOwner := lo.SliceToMap(distinctReferences, func(reference Reference) (string, string) {
		return workingCopyKey(reference), reference.Identifier
	})
	seen := make(map[string]bool, len(references))
	for _, reference := range references {
		key := workingCopyKey(reference)
		if !seen[key] {
			seen[key] = true
			continue
		}
		loader.logger.Warn(duplicateIdentifierWarningConstant,
			zap.String(logFieldIdentifierConstant, reference.Identifier),
			zap.String(logFieldConflictingIdentifierConst, firstOwner[key]),
			zap.String(logFieldLocalPathConstant, reference.LocalPath),
		)
	}
}

func parseIdentifiers(listPath string, contents []byte) ([]string, error) {
	extension := strings.ToLower(filepath.Ext(listPath))
	if extension == yamlExtensionConstant || extension == ymlExtensionConstant {
		document := listDocument{}
		if unmarshalError := yaml.Unmarshal(contents, &document); unmarshalError != nil {
			return nil, unmarshalError
		}
		return lo.FilterMap(document.Repositories, func(identifier string, _ int) (string, bool) {
			trimmed := strings.TrimSpace(identifier)
			return trimmed, len(trimmed) > 0
		}), nil
	}

	identifiers := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, listCommentPrefixConstant) {
			continue
		}
		identifiers = append(identifiers, line)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return identifiers, nil
}
