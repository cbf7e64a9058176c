package gitclient

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/execshell"
	"github.com/temirov/reposcloner/internal/repository"
)

const (
	// DefaultCloneURLTemplate resolves identifiers against GitHub over HTTPS.
	DefaultCloneURLTemplate = "https://github.com/%s.git"

	cloneURLPlaceholderConstant       = "%s"
	defaultRemovalAttemptsConstant    = 5
	defaultRemovalDelayConstant       = 2 * time.Second
	repositoriesDirectoryPermissions  = 0o755
	headReferenceConstant             = "HEAD"
	originRemoteNameConstant          = "origin"
	remoteBranchTemplateConstant      = "%s/%s"
	revisionRangeTemplateConstant     = "%s..%s"
	commitLimitFlagTemplateConstant   = "--max-count=%d"
	authorFlagTemplateConstant        = "--author=%s"
	gitCloneSubcommandConstant        = "clone"
	gitPullSubcommandConstant         = "pull"
	gitFetchSubcommandConstant        = "fetch"
	gitResetSubcommandConstant        = "reset"
	gitConfigSubcommandConstant       = "config"
	gitRevParseSubcommandConstant     = "rev-parse"
	gitRevListSubcommandConstant      = "rev-list"
	gitQuietFlagConstant              = "--quiet"
	gitHardFlagConstant               = "--hard"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitCountFlagConstant              = "--count"
	longPathsConfigKeyConstant        = "core.longpaths"
	quotePathConfigKeyConstant        = "core.quotepath"
	configEnabledValueConstant        = "true"
	configDisabledValueConstant       = "false"
	detachedHeadBranchConstant        = "HEAD"
	parentDirectoryErrorTemplate      = "unable to create %s: %w"
	cloneErrorTemplateConstant        = "clone of %s failed: %w"
	configureErrorTemplateConstant    = "unable to configure %s: %w"
	notClonedErrorTemplateConstant    = "%w: %s"
	updateErrorTemplateConstant       = "failed to update %s: %w"
	detachedHeadErrorTemplateConstant = "%s is in a detached HEAD state and cannot be force-updated"
	removalErrorTemplateConstant      = "unable to delete %s after %d attempts; make sure no other process is using its files, or delete it manually: %w"
	revisionErrorTemplateConstant     = "unable to resolve %s in %s: %w"
	commitCountParseErrorTemplate     = "unexpected commit count %q: %w"
	pullFailedMessageConstant         = "pull failed; forcing update from remote"
	partialCloneCleanupFailedMessage  = "unable to remove incomplete clone"
	preexistingPathKeptMessage        = "clone failed over a path that already existed; leaving it in place"
	clonedRevisionUnknownMessage      = "unable to read revision of new clone"
	unresolvedReferenceTemplate       = "%w for %s"
	removalAttemptFailedMessage       = "unable to delete working copy; retrying"
	logFieldRepositoryConstant        = "repository"
	logFieldPathConstant              = "path"
	logFieldAttemptConstant           = "attempt"
)

var (
	// ErrGitExecutorNotConfigured indicates the client was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New("git executor not configured")
	// ErrDetachedHead indicates a working copy that has no branch to reset to.
	ErrDetachedHead = errors.New("detached HEAD")
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Options configures a Client.
type Options struct {
	CloneURLTemplate string
	RemovalAttempts  int
	RemovalDelay     time.Duration
	Logger           *zap.Logger
}

// Client performs repository operations by driving git.
type Client struct {
	executor         GitExecutor
	fileSystem       repository.FileSystem
	cloneURLTemplate string
	removalAttempts  int
	removalDelay     time.Duration
	logger           *zap.Logger
}

// NewClient constructs a Client. A nil filesystem falls back to the OS filesystem.
func NewClient(executor GitExecutor, fileSystem repository.FileSystem, options Options) (*Client, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		fileSystem = repository.OSFileSystem{}
	}
	client := &Client{
		executor:         executor,
		fileSystem:       fileSystem,
		cloneURLTemplate: strings.TrimSpace(options.CloneURLTemplate),
		removalAttempts:  options.RemovalAttempts,
		removalDelay:     options.RemovalDelay,
		logger:           options.Logger,
	}
	if len(client.cloneURLTemplate) == 0 {
		client.cloneURLTemplate = DefaultCloneURLTemplate
	}
	if client.removalAttempts < 1 {
		client.removalAttempts = defaultRemovalAttemptsConstant
	}
	if client.removalDelay < 0 {
		client.removalDelay = defaultRemovalDelayConstant
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	return client, nil
}

// CloneURL resolves the remote URL for identifier.
func (client *Client) CloneURL(identifier string) string {
	return strings.Replace(client.cloneURLTemplate, cloneURLPlaceholderConstant, identifier, 1)
}

// Clone creates the working copy unless it already exists.
func (client *Client) Clone(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if referenceError := checkReference(reference); referenceError != nil {
		return batch.OperationReport{}, referenceError
	}
	if repository.DirectoryExists(client.fileSystem, reference.LocalPath) {
		return batch.OperationReport{Status: batch.StatusAlreadyCloned}, nil
	}
	return client.cloneFresh(executionContext, reference, batch.StatusCloned)
}

// Reclone deletes the working copy, retrying while it is in use, and clones it again.
func (client *Client) Reclone(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if referenceError := checkReference(reference); referenceError != nil {
		return batch.OperationReport{}, referenceError
	}
	if repository.DirectoryExists(client.fileSystem, reference.LocalPath) {
		if removalError := client.removeWorkingCopy(executionContext, reference); removalError != nil {
			return batch.OperationReport{}, removalError
		}
	}
	return client.cloneFresh(executionContext, reference, batch.StatusRecloned)
}

// Update pulls the current branch. When the pull fails the branch is fetched and
// hard-reset to its remote counterpart, discarding local changes.
func (client *Client) Update(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if referenceError := checkReference(reference); referenceError != nil {
		return batch.OperationReport{}, referenceError
	}
	if !repository.DirectoryExists(client.fileSystem, reference.LocalPath) {
		return batch.OperationReport{}, batch.Permanent(fmt.Errorf(notClonedErrorTemplateConstant, batch.ErrNotCloned, reference.LocalPath))
	}

	oldRevision, oldRevisionError := client.resolveRevision(executionContext, reference.LocalPath, headReferenceConstant)
	if oldRevisionError != nil {
		return batch.OperationReport{}, oldRevisionError
	}

	status := batch.StatusUpdated
	_, pullError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant, gitQuietFlagConstant},
		WorkingDirectory: reference.LocalPath,
	})
	if pullError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return batch.OperationReport{}, contextError
		}
		client.logger.Info(pullFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, reference.Identifier),
			zap.Error(pullError),
		)
		if forceError := client.forceUpdate(executionContext, reference.LocalPath); forceError != nil {
			return batch.OperationReport{}, fmt.Errorf(updateErrorTemplateConstant, reference.Identifier, forceError)
		}
		status = batch.StatusUpdatedForced
	}

	newRevision, newRevisionError := client.resolveRevision(executionContext, reference.LocalPath, headReferenceConstant)
	if newRevisionError != nil {
		return batch.OperationReport{}, newRevisionError
	}

	if oldRevision == newRevision {
		return batch.OperationReport{Status: batch.StatusNoChanges, OldRevision: oldRevision, NewRevision: newRevision}, nil
	}

	newCommits, logError := client.readLog(executionContext, reference.LocalPath, fmt.Sprintf(revisionRangeTemplateConstant, oldRevision, newRevision))
	if logError != nil {
		// Histories that were rewritten upstream have no readable range; the update still happened.
		newCommits = nil
	}

	return batch.OperationReport{
		Status:      status,
		OldRevision: oldRevision,
		NewRevision: newRevision,
		NewCommits:  newCommits,
	}, nil
}

// LastCommit returns the commit at HEAD.
func (client *Client) LastCommit(executionContext context.Context, reference repository.Reference) (repository.Commit, error) {
	commits, logError := client.readLog(executionContext, reference.LocalPath, fmt.Sprintf(commitLimitFlagTemplateConstant, 1))
	if logError != nil {
		return repository.Commit{}, logError
	}
	if len(commits) == 0 {
		return repository.Commit{}, ErrNoCommits
	}
	return commits[0], nil
}

// History returns up to limit commits, newest first.
func (client *Client) History(executionContext context.Context, reference repository.Reference, limit int) ([]repository.Commit, error) {
	arguments := []string{}
	if limit > 0 {
		arguments = append(arguments, fmt.Sprintf(commitLimitFlagTemplateConstant, limit))
	}
	return client.readLog(executionContext, reference.LocalPath, arguments...)
}

// SearchQuery narrows a commit message search.
type SearchQuery struct {
	Text      string
	Author    string
	ScanLimit int
}

// SearchCommits scans the most recent commits and keeps those whose message contains
// the query text, ignoring case. A non-empty author restricts the scan to matching authors.
func (client *Client) SearchCommits(executionContext context.Context, reference repository.Reference, query SearchQuery) ([]repository.Commit, error) {
	arguments := []string{}
	if query.ScanLimit > 0 {
		arguments = append(arguments, fmt.Sprintf(commitLimitFlagTemplateConstant, query.ScanLimit))
	}
	if author := strings.TrimSpace(query.Author); len(author) > 0 {
		arguments = append(arguments, fmt.Sprintf(authorFlagTemplateConstant, author))
	}

	commits, logError := client.readLog(executionContext, reference.LocalPath, arguments...)
	if logError != nil {
		return nil, logError
	}

	needle := strings.ToLower(query.Text)
	matches := make([]repository.Commit, 0, len(commits))
	for _, commit := range commits {
		if strings.Contains(strings.ToLower(commit.Message), needle) {
			matches = append(matches, commit)
		}
	}
	return matches, nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (client *Client) CommitCount(executionContext context.Context, reference repository.Reference) (int, error) {
	executionResult, countError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevListSubcommandConstant, gitCountFlagConstant, headReferenceConstant},
		WorkingDirectory: reference.LocalPath,
	})
	if countError != nil {
		return 0, countError
	}
	trimmedCount := strings.TrimSpace(executionResult.StandardOutput)
	commitCount, parseError := strconv.Atoi(trimmedCount)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseErrorTemplate, trimmedCount, parseError)
	}
	return commitCount, nil
}

func (client *Client) cloneFresh(executionContext context.Context, reference repository.Reference, status batch.Status) (batch.OperationReport, error) {
	parentDirectory := filepath.Dir(reference.LocalPath)
	if mkdirError := client.fileSystem.MkdirAll(parentDirectory, repositoriesDirectoryPermissions); mkdirError != nil {
		return batch.OperationReport{}, fmt.Errorf(parentDirectoryErrorTemplate, parentDirectory, mkdirError)
	}

	_, preexistingError := client.fileSystem.Stat(reference.LocalPath)
	pathPreexisted := preexistingError == nil

	_, cloneError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, gitQuietFlagConstant, client.CloneURL(reference.Identifier), reference.LocalPath},
	})
	if cloneError != nil {
		if pathPreexisted {
			client.logger.Warn(preexistingPathKeptMessage,
				zap.String(logFieldRepositoryConstant, reference.Identifier),
				zap.String(logFieldPathConstant, reference.LocalPath),
			)
		} else if removalError := client.fileSystem.RemoveAll(reference.LocalPath); removalError != nil {
			client.logger.Warn(partialCloneCleanupFailedMessage,
				zap.String(logFieldPathConstant, reference.LocalPath),
				zap.Error(removalError),
			)
		}
		return batch.OperationReport{}, fmt.Errorf(cloneErrorTemplateConstant, reference.Identifier, cloneError)
	}

	for _, setting := range [][]string{
		{longPathsConfigKeyConstant, configEnabledValueConstant},
		{quotePathConfigKeyConstant, configDisabledValueConstant},
	} {
		_, configError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        append([]string{gitConfigSubcommandConstant}, setting...),
			WorkingDirectory: reference.LocalPath,
		})
		if configError != nil {
			return batch.OperationReport{}, fmt.Errorf(configureErrorTemplateConstant, reference.Identifier, configError)
		}
	}

	newRevision, revisionError := client.resolveRevision(executionContext, reference.LocalPath, headReferenceConstant)
	if revisionError != nil {
		// Empty repositories have no HEAD yet.
		client.logger.Debug(clonedRevisionUnknownMessage,
			zap.String(logFieldRepositoryConstant, reference.Identifier),
			zap.Error(revisionError),
		)
	}
	return batch.OperationReport{Status: status, NewRevision: newRevision}, nil
}

// checkReference rejects references that do not name a single working copy below the repositories directory.
func checkReference(reference repository.Reference) error {
	if validationError := repository.ValidateIdentifier(reference.Identifier); validationError != nil {
		return batch.Permanent(validationError)
	}
	if len(reference.LocalPath) == 0 {
		return batch.Permanent(fmt.Errorf(unresolvedReferenceTemplate, batch.ErrWorkingCopyUnresolved, reference.Identifier))
	}
	return nil
}

func (client *Client) forceUpdate(executionContext context.Context, workingDirectory string) error {
	if _, fetchError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitQuietFlagConstant, originRemoteNameConstant},
		WorkingDirectory: workingDirectory,
	}); fetchError != nil {
		return fetchError
	}

	branchResult, branchError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, headReferenceConstant},
		WorkingDirectory: workingDirectory,
	})
	if branchError != nil {
		return branchError
	}
	branchName := strings.TrimSpace(branchResult.StandardOutput)
	if len(branchName) == 0 || branchName == detachedHeadBranchConstant {
		return fmt.Errorf("%w: "+detachedHeadErrorTemplateConstant, ErrDetachedHead, workingDirectory)
	}

	_, resetError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitResetSubcommandConstant, gitHardFlagConstant, fmt.Sprintf(remoteBranchTemplateConstant, originRemoteNameConstant, branchName)},
		WorkingDirectory: workingDirectory,
	})
	return resetError
}

func (client *Client) resolveRevision(executionContext context.Context, workingDirectory string, revision string) (string, error) {
	executionResult, revParseError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, revision},
		WorkingDirectory: workingDirectory,
	})
	if revParseError != nil {
		return "", fmt.Errorf(revisionErrorTemplateConstant, revision, workingDirectory, revParseError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (client *Client) removeWorkingCopy(executionContext context.Context, reference repository.Reference) error {
	var removalError error
	for attempt := 1; attempt <= client.removalAttempts; attempt++ {
		removalError = client.fileSystem.RemoveAll(reference.LocalPath)
		if removalError == nil {
			return nil
		}
		if attempt == client.removalAttempts {
			break
		}
		client.logger.Warn(removalAttemptFailedMessage,
			zap.String(logFieldPathConstant, reference.LocalPath),
			zap.Int(logFieldAttemptConstant, attempt),
			zap.Error(removalError),
		)
		timer := time.NewTimer(client.removalDelay)
		select {
		case <-executionContext.Done():
			timer.Stop()
			return executionContext.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf(removalErrorTemplateConstant, reference.LocalPath, client.removalAttempts, removalError)
}
