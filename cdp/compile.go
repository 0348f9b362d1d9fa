package cdp

import (
	"fmt"
	"strings"

	"github.com/tomyan/drover"
)

// query is a compiled locator: exactly one of css or xpath is set. CSS
// strategies dispatch through DOM.querySelector; the text-matching
// strategies and raw XPath have no CSS equivalent and evaluate as XPath in
// the page.
type query struct {
	css   string
	xpath string
}

func compileLocator(by drover.Locator) (query, error) {
	if by.Value == "" {
		return query{}, fmt.Errorf("empty locator value for strategy %q", by.Strategy)
	}

	switch by.Strategy {
	case drover.StrategyID:
		return query{css: "[id=" + cssString(by.Value) + "]"}, nil
	case drover.StrategyName:
		return query{css: "[name=" + cssString(by.Value) + "]"}, nil
	case drover.StrategyClassName:
		return query{css: "[class~=" + cssString(by.Value) + "]"}, nil
	case drover.StrategyTagName:
		return query{css: by.Value}, nil
	case drover.StrategyCSSSelector:
		return query{css: by.Value}, nil
	case drover.StrategyXPath:
		return query{xpath: by.Value}, nil
	case drover.StrategyLinkText:
		return query{xpath: ".//a[normalize-space(.)=" + xpathString(by.Value) + "]"}, nil
	case drover.StrategyPartialLinkText:
		return query{xpath: ".//a[contains(normalize-space(.)," + xpathString(by.Value) + ")]"}, nil
	default:
		return query{}, fmt.Errorf("unknown locator strategy %q", by.Strategy)
	}
}

// cssString quotes a value for use inside a CSS attribute selector.
func cssString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// xpathString quotes a value as an XPath string literal. XPath 1.0 has no
// escape syntax, so a value containing both quote kinds is built with
// concat().
func xpathString(v string) string {
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	var parts []string
	for i, piece := range strings.Split(v, `"`) {
		if i > 0 {
			parts = append(parts, `'"'`)
		}
		if piece != "" {
			parts = append(parts, `"`+piece+`"`)
		}
	}
	return "concat(" + strings.Join(parts, ",") + ")"
}
