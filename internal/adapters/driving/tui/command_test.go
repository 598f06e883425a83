package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "query",
			line: "query how do I enable FIPS?",
			want: Command{Kind: CommandQuery, Arg: "how do I enable FIPS?"},
		},
		{
			name: "query9 sets version",
			line: "query9 audit rules",
			want: Command{Kind: CommandQuery, Arg: "audit rules", Version: domain.Release9},
		},
		{
			name: "query8 sets version",
			line: "QUERY8 audit rules",
			want: Command{Kind: CommandQuery, Arg: "audit rules", Version: domain.Release8},
		},
		{
			name: "control id detected",
			line: "query what does rhel-08-010010 require?",
			want: Command{
				Kind:      CommandQuery,
				Arg:       "what does rhel-08-010010 require?",
				ControlID: "RHEL-08-010010",
			},
		},
		{
			name: "bare text is a question",
			line: "  is telnet allowed  ",
			want: Command{Kind: CommandQuery, Arg: "is telnet allowed"},
		},
		{
			name: "search",
			line: "search RHEL-09-2110",
			want: Command{Kind: CommandSearch, Arg: "RHEL-09-2110"},
		},
		{
			name: "load keeps spaces in path",
			line: "load /tmp/my stigs/rhel9.xml",
			want: Command{Kind: CommandLoad, Arg: "/tmp/my stigs/rhel9.xml"},
		},
		{name: "health", line: "health", want: Command{Kind: CommandHealth}},
		{name: "help", line: "help", want: Command{Kind: CommandHelp}},
		{name: "exit", line: "exit", want: Command{Kind: CommandExit}},
		{name: "quit", line: "quit", want: Command{Kind: CommandExit}},
		{name: "clear", line: "clear", want: Command{Kind: CommandClear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_MissingArgument(t *testing.T) {
	for _, line := range []string{"", "   ", "query", "query9 ", "search", "load"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseCommand(line)
			assert.ErrorIs(t, err, ErrMissingArgument)
		})
	}
}
