package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/tomyan/drover"
)

func selectFor(ctx context.Context, sess drover.Session, arg string) (*drover.Select, error) {
	el, err := requireElement(ctx, sess, arg)
	if err != nil {
		return nil, err
	}
	return drover.NewSelect(ctx, el)
}

// optionJSON is the wire shape of one option. The index is 1-based to match
// the select and deselect commands.
type optionJSON struct {
	Index    int    `json:"index"`
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

func optionsJSON(opts []drover.Option) []optionJSON {
	out := make([]optionJSON, len(opts))
	for i, o := range opts {
		out[i] = optionJSON{Index: o.Index + 1, Value: o.Value, Text: o.Text, Selected: o.Selected}
	}
	return out
}

// OptionsResult is returned by the options and chosen commands.
type OptionsResult struct {
	Multiple bool         `json:"multiple"`
	Options  []optionJSON `json:"options"`
}

func cmdOptions(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		sel, err := selectFor(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		multiple, err := sel.IsMultiple(ctx)
		if err != nil {
			return nil, err
		}
		opts, err := sel.Options(ctx)
		if err != nil {
			return nil, err
		}
		return OptionsResult{Multiple: multiple, Options: optionsJSON(opts)}, nil
	})
}

func cmdChosen(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		sel, err := selectFor(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		multiple, err := sel.IsMultiple(ctx)
		if err != nil {
			return nil, err
		}
		opts, err := sel.SelectedOptions(ctx)
		if err != nil {
			return nil, err
		}
		return OptionsResult{Multiple: multiple, Options: optionsJSON(opts)}, nil
	})
}

// SelectionResult is returned by select, deselect, and deselect-all.
type SelectionResult struct {
	Selected []optionJSON `json:"selected"`
}

// cmdSelect implements both select and deselect. Exactly one of --index,
// --value, or --text picks the target option; --index is 1-based.
func cmdSelect(cfg *Config, args []string, selecting bool) int {
	name := "select"
	if !selecting {
		name = "deselect"
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	index := fs.Int("index", 0, "Option position, counting from 1")
	value := fs.String("value", "", "Option value attribute")
	text := fs.String("text", "", "Option visible text")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitError
	}

	remaining := fs.Args()
	if len(remaining) < 1 {
		fmt.Fprintf(cfg.Stderr, "usage: drover %s [--index <n> | --value <v> | --text <t>] <locator>\n", name)
		return ExitError
	}

	picks := 0
	for _, set := range []bool{*index != 0, *value != "", *text != ""} {
		if set {
			picks++
		}
	}
	if picks != 1 {
		fmt.Fprintf(cfg.Stderr, "error: exactly one of --index, --value, --text is required\n")
		return ExitError
	}

	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		sel, err := selectFor(ctx, sess, remaining[0])
		if err != nil {
			return nil, err
		}

		switch {
		case *index != 0 && selecting:
			err = sel.SelectByIndex(ctx, *index)
		case *index != 0:
			err = sel.DeselectByIndex(ctx, *index)
		case *value != "" && selecting:
			err = sel.SelectByValue(ctx, *value)
		case *value != "":
			err = sel.DeselectByValue(ctx, *value)
		case selecting:
			err = sel.SelectByText(ctx, *text)
		default:
			err = sel.DeselectByText(ctx, *text)
		}
		if err != nil {
			return nil, err
		}

		chosen, err := sel.SelectedOptions(ctx)
		if err != nil {
			return nil, err
		}
		return SelectionResult{Selected: optionsJSON(chosen)}, nil
	})
}

func cmdDeselectAll(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		sel, err := selectFor(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := sel.DeselectAll(ctx); err != nil {
			return nil, err
		}
		return SelectionResult{Selected: []optionJSON{}}, nil
	})
}
