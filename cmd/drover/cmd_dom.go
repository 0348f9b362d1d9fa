package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomyan/drover"
)

// parseLocator turns a CLI locator argument into a drover.Locator. The
// accepted form is <strategy>=<value>; a bare value is a CSS selector.
func parseLocator(arg string) (drover.Locator, error) {
	prefix, value, found := strings.Cut(arg, "=")
	if !found {
		return drover.ByCSSSelector(arg), nil
	}
	switch prefix {
	case "id":
		return drover.ByID(value), nil
	case "name":
		return drover.ByName(value), nil
	case "tag":
		return drover.ByTagName(value), nil
	case "class":
		return drover.ByClassName(value), nil
	case "css":
		return drover.ByCSSSelector(value), nil
	case "xpath":
		return drover.ByXPath(value), nil
	case "link":
		return drover.ByLinkText(value), nil
	case "partial-link":
		return drover.ByPartialLinkText(value), nil
	default:
		// "div[x=y]" style CSS selectors contain '=' too.
		return drover.ByCSSSelector(arg), nil
	}
}

// requireElement finds exactly one element or fails. CLI commands address a
// single element, so a miss is an error at this level even though the
// library reports it as an absent result.
func requireElement(ctx context.Context, sess drover.Session, arg string) (*drover.Element, error) {
	by, err := parseLocator(arg)
	if err != nil {
		return nil, err
	}
	el, ok, err := drover.FindOne(ctx, sess, by)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no element matches %s", by)
	}
	return el, nil
}

// FoundResult is returned by the find command.
type FoundResult struct {
	Found    bool   `json:"found"`
	Strategy string `json:"strategy,omitempty"`
	Value    string `json:"value,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func cmdFind(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		by, err := parseLocator(arg)
		if err != nil {
			return nil, err
		}
		el, ok, err := drover.FindOne(ctx, sess, by)
		if err != nil {
			return nil, err
		}
		result := FoundResult{Found: ok, Strategy: string(by.Strategy), Value: by.Value}
		if ok {
			if tag, err := el.TagName(ctx); err == nil {
				result.Tag = tag
			}
		}
		return result, nil
	})
}

// matchJSON is the wire shape of one findall match.
type matchJSON struct {
	Tag  string `json:"tag"`
	Text string `json:"text,omitempty"`
}

// FindAllResult is returned by the findall command.
type FindAllResult struct {
	Count   int         `json:"count"`
	Matches []matchJSON `json:"matches"`
}

func cmdFindAll(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		by, err := parseLocator(arg)
		if err != nil {
			return nil, err
		}
		els, err := drover.FindAll(ctx, sess, by)
		if err != nil {
			return nil, err
		}
		matches := make([]matchJSON, 0, len(els))
		for _, el := range els {
			var m matchJSON
			if tag, err := el.TagName(ctx); err == nil {
				m.Tag = tag
			}
			if text, err := el.Text(ctx); err == nil {
				m.Text = text
			}
			matches = append(matches, m)
		}
		return FindAllResult{Count: len(matches), Matches: matches}, nil
	})
}

// CountResult is returned by the count command.
type CountResult struct {
	Count int `json:"count"`
}

func cmdCount(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		by, err := parseLocator(arg)
		if err != nil {
			return nil, err
		}
		els, err := drover.FindAll(ctx, sess, by)
		if err != nil {
			return nil, err
		}
		return CountResult{Count: len(els)}, nil
	})
}

// TextResult is returned by the text command.
type TextResult struct {
	Text string `json:"text"`
}

func cmdText(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return nil, err
		}
		return TextResult{Text: text}, nil
	})
}

// AttrResult is returned by the attr command.
type AttrResult struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func cmdAttr(cfg *Config, arg, name string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		value, err := el.Attribute(ctx, name)
		if err != nil {
			return nil, err
		}
		return AttrResult{Name: name, Value: value}, nil
	})
}

// TagResult is returned by the tag command.
type TagResult struct {
	Tag string `json:"tag"`
}

func cmdTag(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		tag, err := el.TagName(ctx)
		if err != nil {
			return nil, err
		}
		return TagResult{Tag: tag}, nil
	})
}

// EnabledResult is returned by the enabled command.
type EnabledResult struct {
	Enabled bool `json:"enabled"`
}

func cmdEnabled(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		enabled, err := el.Enabled(ctx)
		if err != nil {
			return nil, err
		}
		return EnabledResult{Enabled: enabled}, nil
	})
}

// SelectedResult is returned by the selected command.
type SelectedResult struct {
	Selected bool `json:"selected"`
}

func cmdSelected(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		selected, err := el.Selected(ctx)
		if err != nil {
			return nil, err
		}
		return SelectedResult{Selected: selected}, nil
	})
}

// ClickResult is returned by the click and toggle commands.
type ClickResult struct {
	Clicked bool `json:"clicked"`
}

func cmdClick(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := el.Click(ctx); err != nil {
			return nil, err
		}
		return ClickResult{Clicked: true}, nil
	})
}

func cmdToggle(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := el.Toggle(ctx); err != nil {
			return nil, err
		}
		selected, err := el.Selected(ctx)
		if err != nil {
			return nil, err
		}
		return SelectedResult{Selected: selected}, nil
	})
}

// SubmitResult is returned by the submit command.
type SubmitResult struct {
	Submitted bool `json:"submitted"`
}

func cmdSubmit(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := el.Submit(ctx); err != nil {
			return nil, err
		}
		return SubmitResult{Submitted: true}, nil
	})
}

// ClearResult is returned by the clear command.
type ClearResult struct {
	Cleared bool `json:"cleared"`
}

func cmdClear(cfg *Config, arg string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := el.Clear(ctx); err != nil {
			return nil, err
		}
		return ClearResult{Cleared: true}, nil
	})
}

// TypeResult is returned by the type command.
type TypeResult struct {
	Typed string `json:"typed"`
}

func cmdType(cfg *Config, arg, text string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		el, err := requireElement(ctx, sess, arg)
		if err != nil {
			return nil, err
		}
		if err := el.SendKeys(ctx, text); err != nil {
			return nil, err
		}
		return TypeResult{Typed: text}, nil
	})
}
