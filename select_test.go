package drover_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/internal/sessiontest"
)

const selectPage = `<!DOCTYPE html>
<html><body>
	<select id="single" name="fruit">
		<option value="apple">Apple</option>
		<option value="pear" selected>Pear</option>
		<option value="plum">Plum</option>
	</select>
	<select id="multi" name="toppings" multiple>
		<option value="ham">Ham</option>
		<option value="egg" selected>Egg</option>
		<option value="cheese" selected>Cheese</option>
		<option value="egg">Extra Egg</option>
	</select>
	<div id="not-a-select">plain</div>
</body></html>`

func newSelect(t *testing.T, sess drover.Session, id string) *drover.Select {
	t.Helper()
	sel, err := drover.NewSelect(context.Background(), findOne(t, sess, drover.ByID(id)))
	require.NoError(t, err)
	return sel
}

func selectedValues(t *testing.T, sel *drover.Select) []string {
	t.Helper()
	opts, err := sel.SelectedOptions(context.Background())
	require.NoError(t, err)
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	return values
}

func TestNewSelectRejectsOtherElements(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, selectPage)

	_, err := drover.NewSelect(context.Background(), findOne(t, sess, drover.ByID("not-a-select")))
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrNotSelect)
	assert.ErrorContains(t, err, "<div>")
}

func TestSelectIsMultiple(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)

	multiple, err := newSelect(t, sess, "single").IsMultiple(ctx)
	require.NoError(t, err)
	assert.False(t, multiple)

	multiple, err = newSelect(t, sess, "multi").IsMultiple(ctx)
	require.NoError(t, err)
	assert.True(t, multiple)
}

func TestSelectOptionsSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)

	opts, err := newSelect(t, sess, "single").Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, drover.Option{Index: 0, Value: "apple", Text: "Apple"}, opts[0])
	assert.Equal(t, drover.Option{Index: 1, Value: "pear", Text: "Pear", Selected: true}, opts[1])
}

func TestSelectByIndexIsOneBased(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "single")

	require.NoError(t, sel.SelectByIndex(ctx, 1))
	assert.Equal(t, []string{"apple"}, selectedValues(t, sel))

	require.NoError(t, sel.SelectByIndex(ctx, 3))
	assert.Equal(t, []string{"plum"}, selectedValues(t, sel), "single-select keeps exactly one selection")
}

func TestSelectByIndexOutOfRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "single")

	for _, index := range []int{0, -1, 4} {
		err := sel.SelectByIndex(ctx, index)
		require.Error(t, err, "index %d", index)
		assert.ErrorIs(t, err, drover.ErrOptionNotFound)
	}
	// The failed attempts must not have disturbed the selection.
	assert.Equal(t, []string{"pear"}, selectedValues(t, sel))
}

func TestSelectByValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "multi")

	require.NoError(t, sel.SelectByValue(ctx, "egg"))
	assert.Equal(t, []string{"egg", "cheese", "egg"}, selectedValues(t, sel),
		"every option with the value is selected, in document order")

	err := sel.SelectByValue(ctx, "anchovy")
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrOptionNotFound)
}

func TestSelectByText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "single")

	require.NoError(t, sel.SelectByText(ctx, "Plum"))
	assert.Equal(t, []string{"plum"}, selectedValues(t, sel))

	first, err := sel.FirstSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Plum", first.Text)
	assert.Equal(t, 2, first.Index)
}

func TestSelectIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "multi")

	require.NoError(t, sel.SelectByValue(ctx, "cheese"))
	require.NoError(t, sel.SelectByValue(ctx, "cheese"))
	assert.Equal(t, []string{"egg", "cheese"}, selectedValues(t, sel),
		"re-selecting a selected option must not toggle it off")
}

func TestDeselectRequiresMultiple(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "single")

	for name, op := range map[string]func() error{
		"deselect all":      func() error { return sel.DeselectAll(ctx) },
		"deselect by index": func() error { return sel.DeselectByIndex(ctx, 2) },
		"deselect by value": func() error { return sel.DeselectByValue(ctx, "pear") },
		"deselect by text":  func() error { return sel.DeselectByText(ctx, "Pear") },
	} {
		err := op()
		require.Error(t, err, name)
		assert.ErrorIs(t, err, drover.ErrInvalidState, name)
	}
	assert.Equal(t, []string{"pear"}, selectedValues(t, sel))
}

func TestDeselectAllThenSelectByValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "multi")

	require.NoError(t, sel.DeselectAll(ctx))
	assert.Empty(t, selectedValues(t, sel))

	_, err := sel.FirstSelected(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrNoSelection)

	require.NoError(t, sel.SelectByValue(ctx, "ham"))
	assert.Equal(t, []string{"ham"}, selectedValues(t, sel))
}

func TestDeselectByIndexAndValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, selectPage)
	sel := newSelect(t, sess, "multi")

	require.NoError(t, sel.DeselectByIndex(ctx, 2))
	assert.Equal(t, []string{"cheese"}, selectedValues(t, sel))

	require.NoError(t, sel.DeselectByValue(ctx, "cheese"))
	assert.Empty(t, selectedValues(t, sel))

	err := sel.DeselectByValue(ctx, "anchovy")
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrOptionNotFound)
}
