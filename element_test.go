package drover_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/internal/sessiontest"
)

const formPage = `<!DOCTYPE html>
<html><body>
	<form id="f" action="/submit">
		<input type="text" name="user" value="alice">
		<input type="checkbox" name="tos">
		<input type="checkbox" name="news" checked>
		<input type="text" name="frozen" disabled>
		<button type="submit">Go</button>
	</form>
	<a href="/next" id="next">Next</a>
</body></html>`

func findOne(t *testing.T, sess drover.Session, by drover.Locator) *drover.Element {
	t.Helper()
	el, ok, err := drover.FindOne(context.Background(), sess, by)
	require.NoError(t, err)
	require.True(t, ok, "expected %s to match", by)
	return el
}

func TestElementSendKeysAppends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	input := findOne(t, sess, drover.ByName("user"))

	require.NoError(t, input.SendKeys(ctx, "-smith"))
	v, err := input.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Equal(t, "alice-smith", v, "send keys must not clear existing content")
}

func TestElementClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	input := findOne(t, sess, drover.ByName("user"))

	require.NoError(t, input.Clear(ctx))
	v, err := input.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestElementToggleInvolution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	box := findOne(t, sess, drover.ByName("tos"))

	sel, err := box.Selected(ctx)
	require.NoError(t, err)
	require.False(t, sel)

	require.NoError(t, box.Toggle(ctx))
	sel, err = box.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, sel)

	require.NoError(t, box.Toggle(ctx))
	sel, err = box.Selected(ctx)
	require.NoError(t, err)
	assert.False(t, sel, "toggling twice must restore the original state")
}

func TestElementToggleRejectsPlainElements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	link := findOne(t, sess, drover.ByID("next"))

	err := link.Toggle(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrCommandFailed)
}

func TestElementEnabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)

	enabled, err := findOne(t, sess, drover.ByName("user")).Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = findOne(t, sess, drover.ByName("frozen")).Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestElementAttributeAbsentIsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	input := findOne(t, sess, drover.ByName("user"))

	v, err := input.Attribute(ctx, "placeholder")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestElementBooleanAttributePresence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	box := findOne(t, sess, drover.ByName("news"))

	v, err := box.Attribute(ctx, "checked")
	require.NoError(t, err)
	assert.Equal(t, "true", v, "a value-less boolean attribute must be distinguishable from absence")
}

func TestElementSubmit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	input := findOne(t, sess, drover.ByName("user"))

	require.NoError(t, input.Submit(ctx))
	assert.Equal(t, []string{"/submit"}, sess.Submitted)

	err := findOne(t, sess, drover.ByID("next")).Submit(ctx)
	require.Error(t, err, "submit outside a form must fail")
	assert.ErrorIs(t, err, drover.ErrCommandFailed)
}

func TestElementStaleAfterNavigation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	sess.RegisterPage("app://other", `<html><body><p>other</p></body></html>`)
	input := findOne(t, sess, drover.ByName("user"))

	require.NoError(t, sess.NavigateTo(ctx, "app://other"))

	_, err := input.Text(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrCommandFailed)
	assert.ErrorContains(t, err, "stale")
}

func TestElementClickRecorded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := sessiontest.MustNew(t, formPage)
	link := findOne(t, sess, drover.ByID("next"))

	require.NoError(t, link.Click(ctx))
	require.Len(t, sess.Clicked, 1)
	assert.Equal(t, link.ID(), sess.Clicked[0])
}
