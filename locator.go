package drover

import "fmt"

// Strategy identifies how a Locator's value should be interpreted when
// searching for elements.
type Strategy string

// Locator strategies.
const (
	StrategyID              Strategy = "id"
	StrategyLinkText        Strategy = "link text"
	StrategyPartialLinkText Strategy = "partial link text"
	StrategyName            Strategy = "name"
	StrategyTagName         Strategy = "tag name"
	StrategyXPath           Strategy = "xpath"
	StrategyClassName       Strategy = "class name"
	StrategyCSSSelector     Strategy = "css selector"
)

// Locator is a (strategy, value) pair describing how to find an element.
// It is a pure value: it carries no behavior and is passed opaquely to a
// Session, which decides how to execute it. New strategies are additive and
// do not require changes to callers.
type Locator struct {
	Strategy Strategy
	Value    string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// ByID locates an element by its id attribute.
func ByID(id string) Locator { return Locator{StrategyID, id} }

// ByLinkText locates an anchor by its exact rendered text.
func ByLinkText(text string) Locator { return Locator{StrategyLinkText, text} }

// ByPartialLinkText locates an anchor whose rendered text contains the
// given substring.
func ByPartialLinkText(text string) Locator { return Locator{StrategyPartialLinkText, text} }

// ByName locates an element by its name attribute.
func ByName(name string) Locator { return Locator{StrategyName, name} }

// ByTagName locates an element by tag name.
func ByTagName(tag string) Locator { return Locator{StrategyTagName, tag} }

// ByXPath locates an element by an XPath expression.
func ByXPath(expr string) Locator { return Locator{StrategyXPath, expr} }

// ByClassName locates an element carrying the given class.
func ByClassName(class string) Locator { return Locator{StrategyClassName, class} }

// ByCSSSelector locates an element by a CSS selector.
func ByCSSSelector(sel string) Locator { return Locator{StrategyCSSSelector, sel} }
