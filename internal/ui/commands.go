package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type command struct {
	name string
	arg  string
}

type commandInfo struct {
	name  string
	usage string
	help  string
}

var commands = []commandInfo{
	{"/help", "/help", "Display this help message"},
	{"/bye", "/bye", "Exit the application (also /quit, /exit)"},
	{"/debug", "/debug", "Toggle the debug console"},
	{"/prompts", "/prompts", "Pick one of the accounting prompts"},
	{"/prompt", "/prompt <n>", "Put accounting prompt n in the input box"},
	{"/departments", "/departments [query]", "List departments, optionally filtered"},
	{"/refresh", "/refresh", "Ask the backend to refresh its credentials"},
}

var aliases = map[string]string{
	"/quit": "/bye",
	"/exit": "/bye",
}

// parseCommand recognises a slash command. Anything else, including unknown slash
// words, is a chat message.
func parseCommand(input string) (command, bool) {
	text := strings.TrimSpace(input)
	if !strings.HasPrefix(text, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(text, " ")
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	for _, c := range commands {
		if c.name == name {
			return command{name: name, arg: strings.TrimSpace(arg)}, true
		}
	}
	return command{}, false
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Here are some commands you can use:")
	for _, c := range commands {
		fmt.Fprintf(&b, "\n- %s: %s", c.usage, c.help)
	}
	return b.String()
}

// promptIndex parses the argument of /prompt, counting from 1.
func promptIndex(arg string, count int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > count {
		return 0, errors.Errorf("usage: /prompt <n> with n between 1 and %d", count)
	}
	return n, nil
}
