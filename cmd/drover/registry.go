package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name     string
	Desc     string
	Category string
	Run      func(cfg *Config, args []string) int
}

// commands is the registry of all available commands.
var commands = map[string]CommandInfo{
	// Navigation
	"goto": {Name: "goto", Desc: "Navigate to a URL", Category: "Navigate", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover goto <url>")
		}
		return cmdGoto(cfg, args[0])
	}},
	"back":    {Name: "back", Desc: "Go back in history", Category: "Navigate", Run: func(cfg *Config, args []string) int { return cmdBack(cfg) }},
	"forward": {Name: "forward", Desc: "Go forward in history", Category: "Navigate", Run: func(cfg *Config, args []string) int { return cmdForward(cfg) }},
	"reload":  {Name: "reload", Desc: "Reload the page", Category: "Navigate", Run: func(cfg *Config, args []string) int { return cmdReload(cfg) }},

	// Find
	"find": {Name: "find", Desc: "Find the first matching element", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover find <locator>")
		}
		return cmdFind(cfg, args[0])
	}},
	"findall": {Name: "findall", Desc: "List every matching element", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover findall <locator>")
		}
		return cmdFindAll(cfg, args[0])
	}},
	"count": {Name: "count", Desc: "Count matching elements", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover count <locator>")
		}
		return cmdCount(cfg, args[0])
	}},
	"text": {Name: "text", Desc: "Get element text", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover text <locator>")
		}
		return cmdText(cfg, args[0])
	}},
	"attr": {Name: "attr", Desc: "Get element attribute", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 2 {
			return cmdMissingArg(cfg, "usage: drover attr <locator> <attribute>")
		}
		return cmdAttr(cfg, args[0], args[1])
	}},
	"tag": {Name: "tag", Desc: "Get element tag name", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover tag <locator>")
		}
		return cmdTag(cfg, args[0])
	}},
	"enabled": {Name: "enabled", Desc: "Check if element is enabled", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover enabled <locator>")
		}
		return cmdEnabled(cfg, args[0])
	}},
	"selected": {Name: "selected", Desc: "Check if element is selected", Category: "Find", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover selected <locator>")
		}
		return cmdSelected(cfg, args[0])
	}},

	// Interact
	"click": {Name: "click", Desc: "Click an element", Category: "Interact", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover click <locator>")
		}
		return cmdClick(cfg, args[0])
	}},
	"submit": {Name: "submit", Desc: "Submit the form containing an element", Category: "Interact", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover submit <locator>")
		}
		return cmdSubmit(cfg, args[0])
	}},
	"clear": {Name: "clear", Desc: "Clear an input's value", Category: "Interact", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover clear <locator>")
		}
		return cmdClear(cfg, args[0])
	}},
	"type": {Name: "type", Desc: "Send keystrokes to an element", Category: "Interact", Run: func(cfg *Config, args []string) int {
		if len(args) < 2 {
			return cmdMissingArg(cfg, "usage: drover type <locator> <text>")
		}
		return cmdType(cfg, args[0], strings.Join(args[1:], " "))
	}},
	"toggle": {Name: "toggle", Desc: "Toggle a checkbox or option", Category: "Interact", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover toggle <locator>")
		}
		return cmdToggle(cfg, args[0])
	}},

	// Select lists
	"options": {Name: "options", Desc: "List a select's options", Category: "Select lists", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover options <locator>")
		}
		return cmdOptions(cfg, args[0])
	}},
	"chosen": {Name: "chosen", Desc: "List a select's selected options", Category: "Select lists", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover chosen <locator>")
		}
		return cmdChosen(cfg, args[0])
	}},
	"select":   {Name: "select", Desc: "Select an option by index, value, or text", Category: "Select lists", Run: func(cfg *Config, args []string) int { return cmdSelect(cfg, args, true) }},
	"deselect": {Name: "deselect", Desc: "Deselect an option by index, value, or text", Category: "Select lists", Run: func(cfg *Config, args []string) int { return cmdSelect(cfg, args, false) }},
	"deselect-all": {Name: "deselect-all", Desc: "Clear a multi-select's selection", Category: "Select lists", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover deselect-all <locator>")
		}
		return cmdDeselectAll(cfg, args[0])
	}},

	// Cookies
	"cookies": {Name: "cookies", Desc: "List all cookies", Category: "Cookies", Run: func(cfg *Config, args []string) int { return cmdCookies(cfg) }},
	"cookie-get": {Name: "cookie-get", Desc: "Get a cookie by name", Category: "Cookies", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover cookie-get <name>")
		}
		return cmdCookieGet(cfg, args[0])
	}},
	"cookie-set": {Name: "cookie-set", Desc: "Add or overwrite a cookie", Category: "Cookies", Run: func(cfg *Config, args []string) int { return cmdCookieSet(cfg, args) }},
	"cookie-delete": {Name: "cookie-delete", Desc: "Delete a cookie by name", Category: "Cookies", Run: func(cfg *Config, args []string) int {
		if len(args) < 1 {
			return cmdMissingArg(cfg, "usage: drover cookie-delete <name>")
		}
		return cmdCookieDelete(cfg, args[0])
	}},
	"cookie-clear": {Name: "cookie-clear", Desc: "Delete all cookies", Category: "Cookies", Run: func(cfg *Config, args []string) int { return cmdCookieClear(cfg) }},

	// Utility
	"browsers": {Name: "browsers", Desc: "List registered browser types", Category: "Utility", Run: func(cfg *Config, args []string) int { return cmdBrowsers(cfg) }},
}

func init() {
	commands["help"] = CommandInfo{Name: "help", Desc: "Show help", Category: "Utility", Run: func(cfg *Config, args []string) int { return cmdHelp(cfg, args) }}
}

// cmdMissingArg prints a usage message and returns ExitError.
func cmdMissingArg(cfg *Config, usage string) int {
	fmt.Fprintln(cfg.Stderr, usage)
	return ExitError
}

// categoryOrder defines the display order for command categories.
var categoryOrder = []string{
	"Navigate",
	"Find",
	"Interact",
	"Select lists",
	"Cookies",
	"Utility",
}

// commandsByCategory returns commands grouped by category, with sorted names within each category.
func commandsByCategory() []struct {
	Category string
	Commands []CommandInfo
} {
	grouped := make(map[string][]CommandInfo)
	for _, cmd := range commands {
		grouped[cmd.Category] = append(grouped[cmd.Category], cmd)
	}

	var result []struct {
		Category string
		Commands []CommandInfo
	}

	for _, cat := range categoryOrder {
		cmds := grouped[cat]
		if len(cmds) == 0 {
			continue
		}
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		result = append(result, struct {
			Category string
			Commands []CommandInfo
		}{Category: cat, Commands: cmds})
	}

	return result
}

// printUsage prints the usage message with commands grouped by category.
func printUsage(cfg *Config, fs *flag.FlagSet) {
	fmt.Fprintln(cfg.Stderr, "usage: drover [flags] <command>")
	fmt.Fprintln(cfg.Stderr)

	for _, group := range commandsByCategory() {
		fmt.Fprintf(cfg.Stderr, "  %s:\n", group.Category)
		names := make([]string, len(group.Commands))
		for i, cmd := range group.Commands {
			names[i] = cmd.Name
		}
		fmt.Fprintf(cfg.Stderr, "    %s\n", strings.Join(names, ", "))
		fmt.Fprintln(cfg.Stderr)
	}

	fmt.Fprintln(cfg.Stderr, "flags:")
	fs.PrintDefaults()
}

func cmdHelp(cfg *Config, args []string) int {
	fmt.Fprintln(cfg.Stdout, "drover - drive a browser from the command line")
	fmt.Fprintln(cfg.Stdout)

	for _, group := range commandsByCategory() {
		fmt.Fprintf(cfg.Stdout, "%s:\n", group.Category)
		for _, cmd := range group.Commands {
			fmt.Fprintf(cfg.Stdout, "  %-14s %s\n", cmd.Name, cmd.Desc)
		}
		fmt.Fprintln(cfg.Stdout)
	}

	fmt.Fprintln(cfg.Stdout, "Locators are written <strategy>=<value>, e.g. id=login,")
	fmt.Fprintln(cfg.Stdout, "link=Sign in, xpath=//h1. A bare value is a CSS selector.")
	return ExitSuccess
}
