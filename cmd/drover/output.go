package main

import (
	"encoding/json"
	"fmt"
)

// TextValuer is implemented by result types that have an obvious plain-text representation.
type TextValuer interface {
	TextValue() string
}

// Implement TextValuer for scalar-ish result types.

func (r TextResult) TextValue() string     { return r.Text }
func (r AttrResult) TextValue() string     { return r.Value }
func (r TagResult) TextValue() string      { return r.Tag }
func (r CountResult) TextValue() string    { return fmt.Sprintf("%d", r.Count) }
func (r FoundResult) TextValue() string    { return fmt.Sprintf("%t", r.Found) }
func (r EnabledResult) TextValue() string  { return fmt.Sprintf("%t", r.Enabled) }
func (r SelectedResult) TextValue() string { return fmt.Sprintf("%t", r.Selected) }
func (r CookieResult) TextValue() string   { return r.Value }

func outputResult(cfg *Config, v interface{}) int {
	switch cfg.Output {
	case "json":
		enc := json.NewEncoder(cfg.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(cfg.Stderr, "error: %v\n", err)
			return ExitError
		}
	case "ndjson":
		enc := json.NewEncoder(cfg.Stdout)
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(cfg.Stderr, "error: %v\n", err)
			return ExitError
		}
	case "text":
		if tv, ok := v.(TextValuer); ok {
			fmt.Fprintln(cfg.Stdout, tv.TextValue())
		} else {
			// Fall back to JSON for complex types
			enc := json.NewEncoder(cfg.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(v); err != nil {
				fmt.Fprintf(cfg.Stderr, "error: %v\n", err)
				return ExitError
			}
		}
	default:
		fmt.Fprintf(cfg.Stderr, "error: unknown output format: %s\n", cfg.Output)
		return ExitError
	}
	return ExitSuccess
}
