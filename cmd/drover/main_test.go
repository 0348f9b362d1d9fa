package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/internal/sessiontest"
)

const testPage = `<!DOCTYPE html>
<html><body>
	<h1 id="title">Welcome</h1>
	<a href="/in">Sign in</a>
	<form action="/search">
		<input type="text" name="q" value="">
		<input type="checkbox" name="safe">
	</form>
	<select id="pick" multiple>
		<option value="a" selected>Alpha</option>
		<option value="b">Beta</option>
		<option value="c">Gamma</option>
	</select>
</body></html>`

// keepAlive lets one fake session serve a whole test: the CLI closes its
// session after every command, which would otherwise kill shared state.
type keepAlive struct {
	drover.Session
}

func (keepAlive) Close(ctx context.Context) error { return nil }

// testConfig returns a Config whose registry hands out the given session.
func testConfig(t *testing.T, sess drover.Session) *Config {
	t.Helper()
	reg := drover.NewRegistry()
	reg.Register("fake", func(ctx context.Context, opts drover.Options) (drover.Session, error) {
		return keepAlive{sess}, nil
	})
	return &Config{
		Browser:  "fake",
		Host:     "localhost",
		Port:     9222,
		Timeout:  5 * time.Second,
		Output:   "json",
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
		Sessions: reg,
	}
}

func stdout(cfg *Config) string { return cfg.Stdout.(*bytes.Buffer).String() }
func stderr(cfg *Config) string { return cfg.Stderr.(*bytes.Buffer).String() }

// runJSON runs one command against the session and decodes its JSON output.
func runJSON(t *testing.T, sess drover.Session, args ...string) map[string]interface{} {
	t.Helper()
	cfg := testConfig(t, sess)
	if code := run(args, cfg); code != ExitSuccess {
		t.Fatalf("run(%v) = %d, stderr: %s", args, code, stderr(cfg))
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(stdout(cfg)), &result); err != nil {
		t.Fatalf("parsing output %q: %v", stdout(cfg), err)
	}
	return result
}

func TestRun_NoArgs(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{}, cfg); code != ExitError {
		t.Errorf("expected exit code %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr(cfg), "usage:") {
		t.Errorf("expected usage message in stderr, got: %s", stderr(cfg))
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{"teleport"}, cfg); code != ExitError {
		t.Errorf("expected exit code %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr(cfg), "unknown command") {
		t.Errorf("expected 'unknown command' in stderr, got: %s", stderr(cfg))
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{"-h"}, cfg); code != ExitSuccess {
		t.Errorf("expected exit code %d, got %d", ExitSuccess, code)
	}
}

func TestRun_UnknownBrowser(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{"--browser", "netscape", "find", "id=title"}, cfg); code != ExitConnFailed {
		t.Errorf("expected exit code %d, got %d", ExitConnFailed, code)
	}
}

func TestCmdFind(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "find", "id=title")
	if result["found"] != true {
		t.Errorf("found = %v, want true", result["found"])
	}
	if result["tag"] != "h1" {
		t.Errorf("tag = %v, want h1", result["tag"])
	}

	result = runJSON(t, sess, "find", "id=no-such")
	if result["found"] != false {
		t.Errorf("found = %v, want false for a clean miss", result["found"])
	}
}

func TestCmdFindLocatorForms(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	for _, arg := range []string{"link=Sign in", "partial-link=Sign", "name=q", "tag=h1", "h1#title"} {
		result := runJSON(t, sess, "find", arg)
		if result["found"] != true {
			t.Errorf("find %q: found = %v, want true", arg, result["found"])
		}
	}
}

func TestCmdFindAll(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "findall", "tag=option")
	if result["count"] != float64(3) {
		t.Errorf("count = %v, want 3", result["count"])
	}
	matches := result["matches"].([]interface{})
	first := matches[0].(map[string]interface{})
	if first["tag"] != "option" || first["text"] != "Alpha" {
		t.Errorf("first match = %v", first)
	}

	result = runJSON(t, sess, "findall", "tag=video")
	if result["count"] != float64(0) {
		t.Errorf("count = %v, want 0 for no matches", result["count"])
	}
}

func TestCmdCount(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "count", "tag=option")
	if result["count"] != float64(3) {
		t.Errorf("count = %v, want 3", result["count"])
	}
	result = runJSON(t, sess, "count", "tag=table")
	if result["count"] != float64(0) {
		t.Errorf("count = %v, want 0", result["count"])
	}
}

func TestCmdTextOutputText(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{"--output", "text", "text", "id=title"}, cfg); code != ExitSuccess {
		t.Fatalf("run = %d, stderr: %s", code, stderr(cfg))
	}
	if got := stdout(cfg); got != "Welcome\n" {
		t.Errorf("stdout = %q, want %q", got, "Welcome\n")
	}
}

func TestCmdTextMissingElement(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, sessiontest.MustNew(t, testPage))
	if code := run([]string{"text", "id=ghost"}, cfg); code != ExitError {
		t.Errorf("expected exit code %d for missing element, got %d", ExitError, code)
	}
	if !strings.Contains(stderr(cfg), "no element matches") {
		t.Errorf("stderr = %q", stderr(cfg))
	}
}

func TestCmdTypeAndClear(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	runJSON(t, sess, "type", "name=q", "hello world")
	result := runJSON(t, sess, "attr", "name=q", "value")
	if result["value"] != "hello world" {
		t.Errorf("value = %v after type", result["value"])
	}

	runJSON(t, sess, "clear", "name=q")
	result = runJSON(t, sess, "attr", "name=q", "value")
	if result["value"] != "" {
		t.Errorf("value = %v after clear", result["value"])
	}
}

func TestCmdToggle(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "toggle", "name=safe")
	if result["selected"] != true {
		t.Errorf("selected = %v after first toggle", result["selected"])
	}
	result = runJSON(t, sess, "toggle", "name=safe")
	if result["selected"] != false {
		t.Errorf("selected = %v after second toggle", result["selected"])
	}
}

func TestCmdSelectByIndex(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "select", "--index", "2", "id=pick")
	selected := result["selected"].([]interface{})
	if len(selected) != 2 {
		t.Fatalf("selected %d options, want 2", len(selected))
	}
	second := selected[1].(map[string]interface{})
	if second["value"] != "b" || second["index"] != float64(2) {
		t.Errorf("second selection = %v, want value b at index 2", second)
	}
}

func TestCmdSelectRequiresExactlyOnePicker(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	for _, args := range [][]string{
		{"select", "id=pick"},
		{"select", "--index", "1", "--value", "a", "id=pick"},
	} {
		cfg := testConfig(t, sess)
		if code := run(args, cfg); code != ExitError {
			t.Errorf("run(%v) = %d, want %d", args, code, ExitError)
		}
	}
}

func TestCmdDeselectAll(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "deselect-all", "id=pick")
	if len(result["selected"].([]interface{})) != 0 {
		t.Errorf("selected = %v after deselect-all", result["selected"])
	}

	result = runJSON(t, sess, "chosen", "id=pick")
	if len(result["options"].([]interface{})) != 0 {
		t.Errorf("chosen = %v after deselect-all", result["options"])
	}
}

func TestCmdOptions(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "options", "id=pick")
	if result["multiple"] != true {
		t.Errorf("multiple = %v, want true", result["multiple"])
	}
	opts := result["options"].([]interface{})
	if len(opts) != 3 {
		t.Fatalf("%d options, want 3", len(opts))
	}
	first := opts[0].(map[string]interface{})
	if first["index"] != float64(1) {
		t.Errorf("first option index = %v, want 1", first["index"])
	}
}

func TestCmdCookieRoundTrip(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	runJSON(t, sess, "cookie-set", "--domain", "example.test", "flavor", "ginger")

	result := runJSON(t, sess, "cookie-get", "flavor")
	if result["found"] != true || result["value"] != "ginger" {
		t.Errorf("cookie-get = %v", result)
	}
	if result["path"] != "/" {
		t.Errorf("path = %v, want default /", result["path"])
	}

	runJSON(t, sess, "cookie-delete", "flavor")
	result = runJSON(t, sess, "cookie-get", "flavor")
	if result["found"] != false {
		t.Errorf("cookie still present after delete: %v", result)
	}
}

func TestCmdNavigation(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)
	sess.RegisterPage("app://two", `<html><body><h1 id="title">Second</h1></body></html>`)

	runJSON(t, sess, "goto", "app://two")
	result := runJSON(t, sess, "text", "id=title")
	if result["text"] != "Second" {
		t.Errorf("text = %v after goto", result["text"])
	}

	runJSON(t, sess, "back")
	result = runJSON(t, sess, "text", "id=title")
	if result["text"] != "Welcome" {
		t.Errorf("text = %v after back", result["text"])
	}

	runJSON(t, sess, "forward")
	result = runJSON(t, sess, "text", "id=title")
	if result["text"] != "Second" {
		t.Errorf("text = %v after forward", result["text"])
	}
}

func TestCmdBrowsers(t *testing.T) {
	t.Parallel()
	sess := sessiontest.MustNew(t, testPage)

	result := runJSON(t, sess, "browsers")
	browsers := result["browsers"].([]interface{})
	if len(browsers) != 1 || browsers[0] != "fake" {
		t.Errorf("browsers = %v, want [fake]", browsers)
	}
}
