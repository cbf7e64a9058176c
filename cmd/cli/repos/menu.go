package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/ui"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	menuUseConstant                = "menu"
	menuShortDescription           = "Run the interactive menu"
	menuLongDescription            = "menu repeatedly offers every repository operation by number until Exit is chosen or input ends."
	menuTitleConstant              = "REPOSITORY CLONER & UPDATER"
	menuSeparatorConstant          = "============================================================"
	menuEntryTemplateConstant      = "%d. %s\n"
	menuPromptTemplateConstant     = "\nSelect an option (1-%d): "
	menuInvalidChoiceTemplate      = "Invalid choice. Please select a number from 1-%d.\n"
	menuGoodbyeConstant            = "\nGoodbye!\n"
	menuErrorTemplateConstant      = "Error: %v\n"
	menuHandlerFailedMessage       = "menu operation failed"
	menuParallelPromptTemplate     = "Use parallel processing? (y/n, default=%s): "
	menuAvailableHeaderConstant    = "\nAvailable repositories:\n"
	menuHistorySelectPrompt        = "\nSelect repository number: "
	menuHistoryLimitPromptTemplate = "Limit number of commits (press Enter for %d): "
	menuRecloneSelectPrompt        = "\nSelect repository number to reclone: "
	menuInvalidNumberConstant      = "Invalid number.\n"
	menuInvalidInputConstant       = "Invalid input.\n"
	menuFilterPrompt               = "Enter regex pattern to filter repositories: "
	menuFilterMissingConstant      = "No pattern provided.\n"
	menuFilterAdoptPrompt          = "Use filtered repositories for next operation? (y/n): "
	menuFilterAdoptedTemplate      = "Now working with %d filtered repositories.\n"
	menuSearchPrompt               = "Enter search query: "
	menuSearchAuthorPrompt         = "Filter by author (press Enter for any): "
	menuSearchMissingConstant      = "No search query provided.\n"
	menuYesDefaultLabelConstant    = "y"
	menuNoDefaultLabelConstant     = "n"
	menuLogFieldOperationConstant  = "menu_option"
	menuCurrentDirectoryConstant   = "."
)

// MenuCommand identifies one numbered entry of the interactive menu.
type MenuCommand int

// Menu entries in display order.
const (
	MenuCommandClone MenuCommand = iota + 1
	MenuCommandUpdate
	MenuCommandSummaries
	MenuCommandHistory
	MenuCommandReclone
	MenuCommandExport
	MenuCommandStatistics
	MenuCommandFilter
	MenuCommandSearch
	MenuCommandExit
)

var menuLabels = map[MenuCommand]string{
	MenuCommandClone:      "Clone all repositories (only if not cloned)",
	MenuCommandUpdate:     "Update all repositories",
	MenuCommandSummaries:  "Show last commit summary for all repositories",
	MenuCommandHistory:    "View commit history for a selected repository",
	MenuCommandReclone:    "Reclone a specific repository",
	MenuCommandExport:     "Export commit summaries to JSON",
	MenuCommandStatistics: "Show repository statistics",
	MenuCommandFilter:     "Filter repositories by name pattern",
	MenuCommandSearch:     "Search in commit messages across repositories",
	MenuCommandExit:       "Exit",
}

type menuHandler func(state *menuState) error

var menuHandlers = map[MenuCommand]menuHandler{
	MenuCommandClone:      (*menuState).clone,
	MenuCommandUpdate:     (*menuState).update,
	MenuCommandSummaries:  (*menuState).summaries,
	MenuCommandHistory:    (*menuState).history,
	MenuCommandReclone:    (*menuState).reclone,
	MenuCommandExport:     (*menuState).export,
	MenuCommandStatistics: (*menuState).statistics,
	MenuCommandFilter:     (*menuState).filter,
	MenuCommandSearch:     (*menuState).search,
}

// ParseMenuCommand maps the text typed at the menu prompt to a MenuCommand.
func ParseMenuCommand(input string) (MenuCommand, bool) {
	number, parseError := strconv.Atoi(strings.TrimSpace(input))
	if parseError != nil {
		return 0, false
	}
	menuCommand := MenuCommand(number)
	if _, known := menuLabels[menuCommand]; !known {
		return 0, false
	}
	return menuCommand, true
}

// String returns the menu label.
func (menuCommand MenuCommand) String() string {
	return menuLabels[menuCommand]
}

// MenuCommandBuilder assembles the interactive menu command.
type MenuCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the menu command.
func (builder *MenuCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   menuUseConstant,
		Short: menuShortDescription,
		Long:  menuLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.Run(command)
		},
	}
	return command, nil
}

// Run drives the menu using the command's input and output streams.
func (builder *MenuCommandBuilder) Run(command *cobra.Command) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}

	state := &menuState{
		command:    command,
		session:    activeSession,
		prompter:   ui.NewPrompter(command.InOrStdin(), command.OutOrStdout()),
		references: references,
	}
	return state.loop()
}

type menuState struct {
	command    *cobra.Command
	session    *session
	prompter   *ui.Prompter
	references []repository.Reference
}

func (state *menuState) loop() error {
	for {
		if contextError := commandContext(state.command).Err(); contextError != nil {
			return contextError
		}

		state.references = state.session.service.Refresh(state.references)
		state.printMenu()

		choice, askError := state.prompter.Ask(fmt.Sprintf(menuPromptTemplateConstant, MenuCommandExit))
		if errors.Is(askError, ui.ErrInputClosed) {
			return nil
		}
		if askError != nil {
			return askError
		}

		menuCommand, valid := ParseMenuCommand(choice)
		if !valid {
			state.session.printf(menuInvalidChoiceTemplate, MenuCommandExit)
			continue
		}
		if menuCommand == MenuCommandExit {
			state.session.printf(menuGoodbyeConstant)
			return nil
		}

		handlerError := menuHandlers[menuCommand](state)
		switch {
		case handlerError == nil:
		case errors.Is(handlerError, ui.ErrInputClosed):
			return nil
		case errors.Is(handlerError, context.Canceled):
			return handlerError
		default:
			state.session.logger.Warn(menuHandlerFailedMessage, zap.String(menuLogFieldOperationConstant, menuCommand.String()), zap.Error(handlerError))
			state.session.printf(menuErrorTemplateConstant, handlerError)
		}
	}
}

func (state *menuState) printMenu() {
	state.session.printf("\n%s\n%s\n%s\n", menuSeparatorConstant, menuTitleConstant, menuSeparatorConstant)
	for menuCommand := MenuCommandClone; menuCommand <= MenuCommandExit; menuCommand++ {
		state.session.printf(menuEntryTemplateConstant, menuCommand, menuCommand)
	}
	state.session.printf("%s\n", menuSeparatorConstant)
}

func (state *menuState) clone() error {
	return state.runBatch(batch.OperationClone)
}

func (state *menuState) update() error {
	return state.runBatch(batch.OperationUpdate)
}

func (state *menuState) runBatch(kind batch.OperationKind) error {
	autoParallel := state.session.service.Configuration().AutoParallel
	defaultLabel := menuNoDefaultLabelConstant
	if autoParallel {
		defaultLabel = menuYesDefaultLabelConstant
	}
	parallel, confirmError := state.prompter.Confirm(fmt.Sprintf(menuParallelPromptTemplate, defaultLabel), autoParallel)
	if confirmError != nil {
		return confirmError
	}
	return state.session.runBatch(state.command, kind, batchCommandDescriptions[kind].announcement, state.references, parallel)
}

func (state *menuState) summaries() error {
	state.session.summaries(state.command, state.references)
	return nil
}

func (state *menuState) history() error {
	reference, selected, selectError := state.selectReference(menuHistorySelectPrompt)
	if selectError != nil || !selected {
		return selectError
	}
	defaultLimit := state.session.service.Configuration().DefaultCommitLimit
	limit, limitError := state.prompter.AskPositiveInteger(fmt.Sprintf(menuHistoryLimitPromptTemplate, defaultLimit), defaultLimit)
	if limitError != nil {
		return limitError
	}
	return state.session.history(state.command, reference.Identifier, limit)
}

func (state *menuState) reclone() error {
	reference, selected, selectError := state.selectReference(menuRecloneSelectPrompt)
	if selectError != nil || !selected {
		return selectError
	}
	recloneError := state.session.reclone(state.command, reference.Identifier)
	if errors.Is(recloneError, ErrRecloneFailed) {
		return nil
	}
	return recloneError
}

func (state *menuState) export() error {
	return state.session.export(state.command, state.references, menuCurrentDirectoryConstant)
}

func (state *menuState) statistics() error {
	state.session.statistics(state.command, state.references)
	return nil
}

func (state *menuState) filter() error {
	pattern, askError := state.prompter.Ask(menuFilterPrompt)
	if askError != nil {
		return askError
	}
	if len(pattern) == 0 {
		state.session.printf(menuFilterMissingConstant)
		return nil
	}

	matches, filterError := state.session.filter(state.references, pattern)
	if filterError != nil || len(matches) == 0 {
		return filterError
	}

	adopt, confirmError := state.prompter.Confirm(menuFilterAdoptPrompt, false)
	if confirmError != nil {
		return confirmError
	}
	if adopt {
		state.references = matches
		state.session.printf(menuFilterAdoptedTemplate, len(matches))
	}
	return nil
}

func (state *menuState) search() error {
	query, askError := state.prompter.Ask(menuSearchPrompt)
	if askError != nil {
		return askError
	}
	if len(query) == 0 {
		state.session.printf(menuSearchMissingConstant)
		return nil
	}
	author, authorError := state.prompter.Ask(menuSearchAuthorPrompt)
	if authorError != nil {
		return authorError
	}
	return state.session.search(state.command, state.references, workspace.SearchQuery{Text: query, Author: author})
}

func (state *menuState) selectReference(prompt string) (repository.Reference, bool, error) {
	state.session.printf(menuAvailableHeaderConstant)
	state.session.reporter.RepositoryChoices(state.references)

	response, askError := state.prompter.Ask(prompt)
	if askError != nil {
		return repository.Reference{}, false, askError
	}
	number, parseError := strconv.Atoi(response)
	if parseError != nil {
		state.session.printf(menuInvalidInputConstant)
		return repository.Reference{}, false, nil
	}
	if number < 1 || number > len(state.references) {
		state.session.printf(menuInvalidNumberConstant)
		return repository.Reference{}, false, nil
	}
	return state.references[number-1], true, nil
}
