package repository_test

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	testListSubtestTemplateConstant = "%d_%s"
	testRepositoriesDirectoryName   = "repos"
	testTextListFileName            = "repos.txt"
	testYAMLListFileName            = "repos.yaml"
	testFirstIdentifierConstant     = "octo/alpha"
	testSecondIdentifierConstant    = "octo/beta"
	testMalformedIdentifierConstant = "not-an-identifier"
)

func TestListLoaderLoad(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fileName            string
		contents            string
		existingDirectories []string
		expectedIdentifiers []string
		expectedExisting    []string
		expectedWarnings    int
	}{
		{
			name:                "text_list_skips_blank_and_comment_lines",
			fileName:            testTextListFileName,
			contents:            "# header\n\n" + testFirstIdentifierConstant + "\n  " + testSecondIdentifierConstant + "  \n",
			expectedIdentifiers: []string{testFirstIdentifierConstant, testSecondIdentifierConstant},
			expectedExisting:    []string{},
		},
		{
			name:                "yaml_list_reads_repositories_sequence",
			fileName:            testYAMLListFileName,
			contents:            "repositories:\n  - " + testFirstIdentifierConstant + "\n  - \"\"\n  - " + testSecondIdentifierConstant + "\n",
			expectedIdentifiers: []string{testFirstIdentifierConstant, testSecondIdentifierConstant},
			expectedExisting:    []string{},
		},
		{
			name:                "duplicates_share_a_working_copy_and_collapse",
			fileName:            testTextListFileName,
			contents:            testFirstIdentifierConstant + "\n" + testSecondIdentifierConstant + "\n" + testFirstIdentifierConstant + "\n",
			expectedIdentifiers: []string{testFirstIdentifierConstant, testSecondIdentifierConstant},
			expectedExisting:    []string{},
			expectedWarnings:    1,
		},
		{
			name:                "existing_working_copies_are_flagged",
			fileName:            testTextListFileName,
			contents:            testFirstIdentifierConstant + "\n" + testSecondIdentifierConstant + "\n",
			existingDirectories: []string{"octo_beta"},
			expectedIdentifiers: []string{testFirstIdentifierConstant, testSecondIdentifierConstant},
			expectedExisting:    []string{testSecondIdentifierConstant},
		},
		{
			name:                "malformed_identifiers_are_kept_with_a_warning",
			fileName:            testTextListFileName,
			contents:            testMalformedIdentifierConstant + "\n",
			expectedIdentifiers: []string{testMalformedIdentifierConstant},
			expectedExisting:    []string{},
			expectedWarnings:    1,
		},
		{
			name:                "directory_entries_never_resolve_to_a_working_copy",
			fileName:            testTextListFileName,
			contents:            "..\n.\n" + testFirstIdentifierConstant + "\n",
			existingDirectories: []string{"octo_alpha"},
			expectedIdentifiers: []string{"..", ".", testFirstIdentifierConstant},
			expectedExisting:    []string{testFirstIdentifierConstant},
			expectedWarnings:    2,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testListSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			workingDirectory := testInstance.TempDir()
			repositoriesDirectory := filepath.Join(workingDirectory, testRepositoriesDirectoryName)
			for _, directoryName := range testCase.existingDirectories {
				require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoriesDirectory, directoryName), 0o755))
			}

			listPath := filepath.Join(workingDirectory, testCase.fileName)
			require.NoError(testInstance, os.WriteFile(listPath, []byte(testCase.contents), 0o600))

			observerCore, observedLogs := observer.New(zap.WarnLevel)
			loader := repository.NewListLoader(repository.OSFileSystem{}, zap.New(observerCore))

			references, loadError := loader.Load(listPath, repositoriesDirectory)
			require.NoError(testInstance, loadError)

			identifiers := lo.Map(references, func(reference repository.Reference, _ int) string { return reference.Identifier })
			require.Equal(testInstance, testCase.expectedIdentifiers, identifiers)

			existing := lo.FilterMap(references, func(reference repository.Reference, _ int) (string, bool) {
				return reference.Identifier, reference.Exists
			})
			require.Equal(testInstance, testCase.expectedExisting, existing)

			for _, reference := range references {
				if repository.ValidateIdentifier(reference.Identifier) != nil {
					require.Empty(testInstance, reference.LocalPath)
					continue
				}
				require.Equal(testInstance, filepath.Join(repositoriesDirectory, repository.LocalDirectoryName(reference.Identifier)), reference.LocalPath)
			}
			require.Equal(testInstance, testCase.expectedWarnings, observedLogs.Len())
		})
	}
}

func TestListLoaderLoadMissingFile(testInstance *testing.T) {
	loader := repository.NewListLoader(nil, nil)

	references, loadError := loader.Load(filepath.Join(testInstance.TempDir(), testTextListFileName), testRepositoriesDirectoryName)
	require.Error(testInstance, loadError)
	require.ErrorIs(testInstance, loadError, fs.ErrNotExist)
	require.Nil(testInstance, references)
}

func TestListLoaderResolveValidatesIdentifier(testInstance *testing.T) {
	repositoriesDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoriesDirectory, "octo_alpha"), 0o755))

	loader := repository.NewListLoader(nil, nil)

	reference, resolveError := loader.Resolve(" "+testFirstIdentifierConstant+" ", repositoriesDirectory)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testFirstIdentifierConstant, reference.Identifier)
	require.True(testInstance, reference.Exists)

	_, invalidError := loader.Resolve(testMalformedIdentifierConstant, repositoriesDirectory)
	require.ErrorIs(testInstance, invalidError, repository.ErrIdentifierFormat)
}
