// Package sessiontest provides an in-memory drover.Session backed by a
// goquery document, so the core's behavior can be tested without a browser.
// Selection and cookie state mutate in place; navigation swaps the document
// and invalidates outstanding element handles, mimicking staleness.
//
// XPath locators are not supported here; the cdp package covers those.
package sessiontest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomyan/drover"
)

// StartURL is the address the initial document is registered under.
const StartURL = "sessiontest://start"

// Session is a fake drover.Session over a parsed HTML document.
type Session struct {
	doc     *goquery.Document
	pages   map[string]string
	history []string
	histIdx int

	handles map[drover.ElementID]*goquery.Selection
	stale   map[drover.ElementID]bool
	nextID  int

	cookies map[string]drover.Cookie
	closed  bool

	// CloseErr, when set, is returned by Close to simulate a teardown
	// failure.
	CloseErr error
	// FailWith, when set, makes every search fail with this error,
	// simulating a transport fault.
	FailWith error
	// Clicked records the handles that received a click that had no
	// state-changing interpretation (links, buttons, plain elements).
	Clicked []drover.ElementID
	// Submitted records the action attribute of each submitted form.
	Submitted []string
}

// New parses html into a fresh session.
func New(html string) (*Session, error) {
	s := &Session{
		pages:   map[string]string{StartURL: html},
		history: []string{StartURL},
		handles: make(map[drover.ElementID]*goquery.Selection),
		stale:   make(map[drover.ElementID]bool),
		cookies: make(map[string]drover.Cookie),
	}
	if err := s.load(html); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for tests.
func MustNew(t *testing.T, html string) *Session {
	t.Helper()
	s, err := New(html)
	if err != nil {
		t.Fatalf("parsing test document: %v", err)
	}
	return s
}

// RegisterPage makes html reachable via NavigateTo(url).
func (s *Session) RegisterPage(url, html string) {
	s.pages[url] = html
}

// URL returns the current page address.
func (s *Session) URL() string {
	return s.history[s.histIdx]
}

func (s *Session) load(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	s.doc = doc

	// The old document is gone; every outstanding handle is now stale.
	for id := range s.handles {
		s.stale[id] = true
	}
	s.handles = make(map[drover.ElementID]*goquery.Selection)
	return nil
}

func (s *Session) cmdErr(op, msg string) error {
	return &drover.CommandError{Op: op, Message: msg}
}

func (s *Session) check(op string) error {
	if s.closed {
		return &drover.CommandError{Op: op, Message: "session closed", Err: drover.ErrConnectionClosed}
	}
	return nil
}

func (s *Session) node(op string, id drover.ElementID) (*goquery.Selection, error) {
	if err := s.check(op); err != nil {
		return nil, err
	}
	if s.stale[id] {
		return nil, s.cmdErr(op, fmt.Sprintf("stale element reference: %s", id))
	}
	sel, ok := s.handles[id]
	if !ok {
		return nil, s.cmdErr(op, fmt.Sprintf("unknown element handle: %s", id))
	}
	return sel, nil
}

func (s *Session) handle(sel *goquery.Selection) drover.ElementID {
	s.nextID++
	id := drover.ElementID(strconv.Itoa(s.nextID))
	s.handles[id] = sel
	return id
}

// --- Navigation ---

func (s *Session) NavigateTo(ctx context.Context, url string) error {
	if err := s.check("navigate"); err != nil {
		return err
	}
	html, ok := s.pages[url]
	if !ok {
		return s.cmdErr("navigate", fmt.Sprintf("net::ERR_NAME_NOT_RESOLVED: %s", url))
	}
	if err := s.load(html); err != nil {
		return s.cmdErr("navigate", err.Error())
	}
	s.history = append(s.history[:s.histIdx+1], url)
	s.histIdx = len(s.history) - 1
	return nil
}

func (s *Session) Back(ctx context.Context) error {
	if err := s.check("back"); err != nil {
		return err
	}
	if s.histIdx == 0 {
		return s.cmdErr("back", "no history entry")
	}
	s.histIdx--
	return s.load(s.pages[s.history[s.histIdx]])
}

func (s *Session) Forward(ctx context.Context) error {
	if err := s.check("forward"); err != nil {
		return err
	}
	if s.histIdx >= len(s.history)-1 {
		return s.cmdErr("forward", "no history entry")
	}
	s.histIdx++
	return s.load(s.pages[s.history[s.histIdx]])
}

func (s *Session) Refresh(ctx context.Context) error {
	if err := s.check("refresh"); err != nil {
		return err
	}
	return s.load(s.pages[s.history[s.histIdx]])
}

// --- Search ---

func (s *Session) FindElement(ctx context.Context, by drover.Locator) (drover.ElementID, error) {
	matches, err := s.search(s.doc.Selection, by)
	if err != nil {
		return "", err
	}
	if matches.Length() == 0 {
		return "", fmt.Errorf("%w: %s", drover.ErrNoSuchElement, by)
	}
	return s.handle(matches.Eq(0)), nil
}

func (s *Session) FindElements(ctx context.Context, by drover.Locator) ([]drover.ElementID, error) {
	return s.findAllFrom(s.doc.Selection, by)
}

func (s *Session) FindFromElement(ctx context.Context, root drover.ElementID, by drover.Locator) ([]drover.ElementID, error) {
	rootSel, err := s.node("find", root)
	if err != nil {
		return nil, err
	}
	return s.findAllFrom(rootSel, by)
}

func (s *Session) findAllFrom(root *goquery.Selection, by drover.Locator) ([]drover.ElementID, error) {
	matches, err := s.search(root, by)
	if err != nil {
		return nil, err
	}
	ids := make([]drover.ElementID, 0, matches.Length())
	matches.Each(func(i int, sel *goquery.Selection) {
		ids = append(ids, s.handle(sel))
	})
	return ids, nil
}

func (s *Session) search(root *goquery.Selection, by drover.Locator) (*goquery.Selection, error) {
	if err := s.check("find"); err != nil {
		return nil, err
	}
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	if by.Value == "" {
		return nil, s.cmdErr("find", "empty locator value")
	}

	switch by.Strategy {
	case drover.StrategyID:
		return root.Find(fmt.Sprintf(`[id=%q]`, by.Value)), nil
	case drover.StrategyName:
		return root.Find(fmt.Sprintf(`[name=%q]`, by.Value)), nil
	case drover.StrategyClassName:
		return root.Find(fmt.Sprintf(`[class~=%q]`, by.Value)), nil
	case drover.StrategyTagName, drover.StrategyCSSSelector:
		return root.Find(by.Value), nil
	case drover.StrategyLinkText:
		return root.Find("a").FilterFunction(func(i int, sel *goquery.Selection) bool {
			return strings.TrimSpace(sel.Text()) == by.Value
		}), nil
	case drover.StrategyPartialLinkText:
		return root.Find("a").FilterFunction(func(i int, sel *goquery.Selection) bool {
			return strings.Contains(strings.TrimSpace(sel.Text()), by.Value)
		}), nil
	default:
		return nil, s.cmdErr("find", fmt.Sprintf("strategy %q not supported by sessiontest", by.Strategy))
	}
}

// --- Element commands ---

func (s *Session) Click(ctx context.Context, id drover.ElementID) error {
	sel, err := s.node("click", id)
	if err != nil {
		return err
	}

	switch goquery.NodeName(sel) {
	case "option":
		s.clickOption(sel)
	case "input":
		switch sel.AttrOr("type", "text") {
		case "checkbox":
			toggleAttr(sel, "checked")
		case "radio":
			s.clickRadio(sel)
		default:
			s.Clicked = append(s.Clicked, id)
		}
	default:
		s.Clicked = append(s.Clicked, id)
	}
	return nil
}

func (s *Session) clickOption(sel *goquery.Selection) {
	parent := sel.Closest("select")
	if _, multiple := parent.Attr("multiple"); multiple {
		toggleAttr(sel, "selected")
		return
	}
	// Single-select: clicking selects exclusively; clicking the current
	// selection keeps it.
	parent.Find("option").RemoveAttr("selected")
	sel.SetAttr("selected", "selected")
}

func (s *Session) clickRadio(sel *goquery.Selection) {
	if name, ok := sel.Attr("name"); ok {
		s.doc.Find(fmt.Sprintf(`input[type="radio"][name=%q]`, name)).RemoveAttr("checked")
	}
	sel.SetAttr("checked", "checked")
}

func (s *Session) Submit(ctx context.Context, id drover.ElementID) error {
	sel, err := s.node("submit", id)
	if err != nil {
		return err
	}
	form := sel
	if goquery.NodeName(sel) != "form" {
		form = sel.Closest("form")
	}
	if form.Length() == 0 {
		return s.cmdErr("submit", "element is not inside a form")
	}
	s.Submitted = append(s.Submitted, form.AttrOr("action", ""))
	return nil
}

func (s *Session) Clear(ctx context.Context, id drover.ElementID) error {
	sel, err := s.node("clear", id)
	if err != nil {
		return err
	}
	sel.SetAttr("value", "")
	return nil
}

func (s *Session) TagName(ctx context.Context, id drover.ElementID) (string, error) {
	sel, err := s.node("tag name", id)
	if err != nil {
		return "", err
	}
	return goquery.NodeName(sel), nil
}

// booleanAttrs mirrors the cdp session: presence of these is reported as
// "true" so it can be told from absence.
var booleanAttrs = map[string]bool{
	"async": true, "autofocus": true, "checked": true, "disabled": true,
	"hidden": true, "multiple": true, "readonly": true, "required": true,
	"selected": true,
}

func (s *Session) Attribute(ctx context.Context, id drover.ElementID, name string) (string, error) {
	sel, err := s.node("attribute", id)
	if err != nil {
		return "", err
	}
	v, ok := sel.Attr(name)
	if !ok {
		return "", nil
	}
	if v == "" && booleanAttrs[name] {
		return "true", nil
	}
	return v, nil
}

func (s *Session) Text(ctx context.Context, id drover.ElementID) (string, error) {
	sel, err := s.node("text", id)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sel.Text()), nil
}

func (s *Session) Enabled(ctx context.Context, id drover.ElementID) (bool, error) {
	sel, err := s.node("enabled", id)
	if err != nil {
		return false, err
	}
	_, disabled := sel.Attr("disabled")
	return !disabled, nil
}

func (s *Session) Selected(ctx context.Context, id drover.ElementID) (bool, error) {
	sel, err := s.node("selected", id)
	if err != nil {
		return false, err
	}
	switch goquery.NodeName(sel) {
	case "option":
		_, ok := sel.Attr("selected")
		return ok, nil
	case "input":
		_, ok := sel.Attr("checked")
		return ok, nil
	}
	return false, nil
}

func (s *Session) Toggle(ctx context.Context, id drover.ElementID) error {
	sel, err := s.node("toggle", id)
	if err != nil {
		return err
	}
	switch goquery.NodeName(sel) {
	case "option":
		s.clickOption(sel)
		return nil
	case "input":
		switch sel.AttrOr("type", "text") {
		case "checkbox":
			toggleAttr(sel, "checked")
			return nil
		case "radio":
			s.clickRadio(sel)
			return nil
		}
	}
	return s.cmdErr("toggle", fmt.Sprintf("cannot toggle a <%s>", goquery.NodeName(sel)))
}

func (s *Session) SendKeys(ctx context.Context, id drover.ElementID, text string) error {
	sel, err := s.node("send keys", id)
	if err != nil {
		return err
	}
	sel.SetAttr("value", sel.AttrOr("value", "")+text)
	return nil
}

func toggleAttr(sel *goquery.Selection, name string) {
	if _, ok := sel.Attr(name); ok {
		sel.RemoveAttr(name)
	} else {
		sel.SetAttr(name, name)
	}
}

// --- Cookies ---

func (s *Session) AddCookie(ctx context.Context, c drover.Cookie) error {
	if err := s.check("add cookie"); err != nil {
		return err
	}
	s.cookies[c.Name] = c
	return nil
}

func (s *Session) Cookies(ctx context.Context) ([]drover.Cookie, error) {
	if err := s.check("cookies"); err != nil {
		return nil, err
	}
	// Map iteration order keeps the result order unspecified.
	all := make([]drover.Cookie, 0, len(s.cookies))
	for _, c := range s.cookies {
		all = append(all, c)
	}
	return all, nil
}

func (s *Session) DeleteCookie(ctx context.Context, name string) error {
	if err := s.check("delete cookie"); err != nil {
		return err
	}
	delete(s.cookies, name)
	return nil
}

func (s *Session) DeleteAllCookies(ctx context.Context) error {
	if err := s.check("delete all cookies"); err != nil {
		return err
	}
	s.cookies = make(map[string]drover.Cookie)
	return nil
}

// --- Lifecycle ---

func (s *Session) Close(ctx context.Context) error {
	s.closed = true
	return s.CloseErr
}

var _ drover.Session = (*Session)(nil)
