package drover

import (
	"context"
	"fmt"
	"strings"
)

// Option is a point-in-time view of one <option> inside a select list.
// Index is 0-based. Options are not materialized entities: every query
// re-reads live state from the session.
type Option struct {
	Index    int
	Value    string
	Text     string
	Selected bool
}

// Select is a capability view over an element known to be a <select>
// control. It carries no state of its own; all queries and mutations
// recompute from the live session.
//
// Public indices are 1-based to match how users count visible rows. The
// conversion to the 0-based internal convention happens at the public entry
// points and nowhere else.
type Select struct {
	el *Element
}

// NewSelect wraps el after verifying that it really is a <select>. Wrapping
// anything else fails with ErrNotSelect.
func NewSelect(ctx context.Context, el *Element) (*Select, error) {
	tag, err := el.TagName(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tag, "select") {
		return nil, fmt.Errorf("%w: got <%s>", ErrNotSelect, tag)
	}
	return &Select{el: el}, nil
}

// Element returns the underlying select element.
func (s *Select) Element() *Element { return s.el }

// IsMultiple reports whether the list allows multiple selections.
func (s *Select) IsMultiple(ctx context.Context) (bool, error) {
	v, err := s.el.Attribute(ctx, "multiple")
	if err != nil {
		return false, err
	}
	return v != "" && v != "false", nil
}

// Options returns a snapshot of every option in the list.
func (s *Select) Options(ctx context.Context) ([]Option, error) {
	els, err := s.optionElements(ctx)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, els)
}

// SelectedOptions returns a snapshot of the currently selected options.
func (s *Select) SelectedOptions(ctx context.Context) ([]Option, error) {
	all, err := s.Options(ctx)
	if err != nil {
		return nil, err
	}
	selected := make([]Option, 0, len(all))
	for _, o := range all {
		if o.Selected {
			selected = append(selected, o)
		}
	}
	return selected, nil
}

// FirstSelected returns the first selected option. A select list is
// expected to have a selection under HTML semantics, so an empty selection
// is exceptional here and fails with ErrNoSelection — unlike element
// search, where absence is an ordinary result.
func (s *Select) FirstSelected(ctx context.Context) (Option, error) {
	all, err := s.Options(ctx)
	if err != nil {
		return Option{}, err
	}
	for _, o := range all {
		if o.Selected {
			return o, nil
		}
	}
	return Option{}, ErrNoSelection
}

// SelectByIndex selects the option at the given 1-based position.
// Index 0, negative indices, and positions past the end of the list fail
// with ErrOptionNotFound.
func (s *Select) SelectByIndex(ctx context.Context, index int) error {
	el, err := s.optionAt(ctx, index)
	if err != nil {
		return err
	}
	return s.setSelected(ctx, el, true)
}

// DeselectByIndex deselects the option at the given 1-based position.
// Valid only on a multi-select list.
func (s *Select) DeselectByIndex(ctx context.Context, index int) error {
	if err := s.requireMultiple(ctx, "deselect by index"); err != nil {
		return err
	}
	el, err := s.optionAt(ctx, index)
	if err != nil {
		return err
	}
	return s.setSelected(ctx, el, false)
}

// SelectByValue selects every option whose value attribute equals value.
func (s *Select) SelectByValue(ctx context.Context, value string) error {
	return s.applyByMatch(ctx, true, fmt.Sprintf("value %q", value), func(ctx context.Context, el *Element) (bool, error) {
		v, err := el.Attribute(ctx, "value")
		return v == value, err
	})
}

// DeselectByValue deselects every option whose value attribute equals
// value. Valid only on a multi-select list.
func (s *Select) DeselectByValue(ctx context.Context, value string) error {
	if err := s.requireMultiple(ctx, "deselect by value"); err != nil {
		return err
	}
	return s.applyByMatch(ctx, false, fmt.Sprintf("value %q", value), func(ctx context.Context, el *Element) (bool, error) {
		v, err := el.Attribute(ctx, "value")
		return v == value, err
	})
}

// SelectByText selects every option whose visible text equals text.
func (s *Select) SelectByText(ctx context.Context, text string) error {
	return s.applyByMatch(ctx, true, fmt.Sprintf("text %q", text), func(ctx context.Context, el *Element) (bool, error) {
		t, err := el.Text(ctx)
		return strings.TrimSpace(t) == strings.TrimSpace(text), err
	})
}

// DeselectByText deselects every option whose visible text equals text.
// Valid only on a multi-select list.
func (s *Select) DeselectByText(ctx context.Context, text string) error {
	if err := s.requireMultiple(ctx, "deselect by text"); err != nil {
		return err
	}
	return s.applyByMatch(ctx, false, fmt.Sprintf("text %q", text), func(ctx context.Context, el *Element) (bool, error) {
		t, err := el.Text(ctx)
		return strings.TrimSpace(t) == strings.TrimSpace(text), err
	})
}

// DeselectAll clears the selection. Valid only on a multi-select list:
// deselecting the sole option of a single-select list is not representable,
// so that case fails with ErrInvalidState.
func (s *Select) DeselectAll(ctx context.Context) error {
	if err := s.requireMultiple(ctx, "deselect all"); err != nil {
		return err
	}
	els, err := s.optionElements(ctx)
	if err != nil {
		return err
	}
	for _, el := range els {
		if err := s.setSelected(ctx, el, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Select) optionElements(ctx context.Context) ([]*Element, error) {
	return s.el.FindAll(ctx, ByTagName("option"))
}

// optionAt converts the public 1-based index to the 0-based internal one
// and returns the option element at that position.
func (s *Select) optionAt(ctx context.Context, index int) (*Element, error) {
	if index < 1 {
		return nil, fmt.Errorf("%w: index %d (indices are 1-based)", ErrOptionNotFound, index)
	}
	els, err := s.optionElements(ctx)
	if err != nil {
		return nil, err
	}
	internal := index - 1
	if internal >= len(els) {
		return nil, fmt.Errorf("%w: index %d of %d options", ErrOptionNotFound, index, len(els))
	}
	return els[internal], nil
}

func (s *Select) requireMultiple(ctx context.Context, op string) error {
	multiple, err := s.IsMultiple(ctx)
	if err != nil {
		return err
	}
	if !multiple {
		return fmt.Errorf("%w: %s on a single-select list", ErrInvalidState, op)
	}
	return nil
}

// applyByMatch selects or deselects every option accepted by match, in
// document order. A mutation that matches nothing is a caller error and
// fails with ErrOptionNotFound.
func (s *Select) applyByMatch(ctx context.Context, selected bool, what string, match func(context.Context, *Element) (bool, error)) error {
	els, err := s.optionElements(ctx)
	if err != nil {
		return err
	}
	matched := false
	for _, el := range els {
		ok, err := match(ctx, el)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		matched = true
		if err := s.setSelected(ctx, el, selected); err != nil {
			return err
		}
	}
	if !matched {
		return fmt.Errorf("%w: no option with %s", ErrOptionNotFound, what)
	}
	return nil
}

// setSelected clicks the option if and only if its live state differs from
// the desired one.
func (s *Select) setSelected(ctx context.Context, el *Element, want bool) error {
	cur, err := el.Selected(ctx)
	if err != nil {
		return err
	}
	if cur == want {
		return nil
	}
	return el.Click(ctx)
}

func (s *Select) describe(ctx context.Context, els []*Element) ([]Option, error) {
	opts := make([]Option, 0, len(els))
	for i, el := range els {
		value, err := el.Attribute(ctx, "value")
		if err != nil {
			return nil, err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return nil, err
		}
		selected, err := el.Selected(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Option{
			Index:    i,
			Value:    value,
			Text:     strings.TrimSpace(text),
			Selected: selected,
		})
	}
	return opts, nil
}
