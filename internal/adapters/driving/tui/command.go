package tui

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// CommandKind identifies a console command.
type CommandKind int

// Console commands.
const (
	CommandQuery CommandKind = iota
	CommandSearch
	CommandLoad
	CommandHealth
	CommandHelp
	CommandExit
	CommandClear
)

// Command is one parsed console line.
type Command struct {
	Kind CommandKind

	// Arg is the question, control id or path.
	Arg string

	// ControlID is detected inside query text.
	ControlID string

	// Version is set by query9 and query8.
	Version domain.ReleaseVersion
}

// ParseCommand parses a console line.
// A line that does not start with a known command word is treated as a question.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("%w: empty line", ErrMissingArgument)
	}

	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "exit", "quit":
		return Command{Kind: CommandExit}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "health":
		return Command{Kind: CommandHealth}, nil
	case "clear":
		return Command{Kind: CommandClear}, nil
	case "query":
		return queryCommand(word, rest, domain.ReleaseUnknown)
	case "query9":
		return queryCommand(word, rest, domain.Release9)
	case "query8":
		return queryCommand(word, rest, domain.Release8)
	case "search":
		if rest == "" {
			return Command{}, fmt.Errorf("%w: search <stig_id>", ErrMissingArgument)
		}
		return Command{Kind: CommandSearch, Arg: rest}, nil
	case "load":
		if rest == "" {
			return Command{}, fmt.Errorf("%w: load <file_path>", ErrMissingArgument)
		}
		return Command{Kind: CommandLoad, Arg: rest}, nil
	}

	return queryCommand("query", line, domain.ReleaseUnknown)
}

func queryCommand(word, question string, version domain.ReleaseVersion) (Command, error) {
	if question == "" {
		return Command{}, fmt.Errorf("%w: %s <question>", ErrMissingArgument, strings.ToLower(word))
	}
	return Command{
		Kind:      CommandQuery,
		Arg:       question,
		ControlID: domain.DetectControlID(question),
		Version:   version,
	}, nil
}
