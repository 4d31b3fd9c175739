package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello!", "Hello!"},
		{"think block", "<think>plan</think>Hello!", "Hello!"},
		{"multiline think", "<think>\nstep 1\n\nstep 2\n</think>\n\nThe answer is 4.", "The answer is 4."},
		{"two blocks non-greedy", "<think>a</think>keep<think>b</think> me", "keep me"},
		{"unterminated kept", "<think>still thinking", "<think>still thinking"},
		{"stray close kept", "done</think>", "done</think>"},
		{"blank runs collapse", "A\n\n\n\nB", "A\n\nB"},
		{"whitespace-only lines collapse", "A\n  \t\n \nB", "A\n\nB"},
		{"single newline kept", "A\nB", "A\nB"},
		{"trim", "  \n Hi \n\n", "Hi"},
		{"only think", "<think>x</think>", ""},
		{"block rejoined after removal", "<th<think></think>ink>secret</think>visible", "visible"},
		{"nested opening tags", "<think>a<think>b</think>c</think>d", "c</think>d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"<think>x</think>\n\n\n  Answer\n \n\nmore  ",
		"<think>open only\n\n\nrest",
		"a\r\n\r\n\r\nb",
		" \t\n",
		"<think>a</think><think>b</think>c",
		"<th<think></think>ink>secret</think>visible",
		"<<think></think>think>x</<think>y</think>think>\n\n\nz",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}
