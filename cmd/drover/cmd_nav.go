package main

import (
	"context"

	"github.com/tomyan/drover"
)

// GotoResult is returned by the goto command.
type GotoResult struct {
	URL    string `json:"url"`
	Loaded bool   `json:"loaded"`
}

func cmdGoto(cfg *Config, url string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := sess.NavigateTo(ctx, url); err != nil {
			return nil, err
		}
		return GotoResult{URL: url, Loaded: true}, nil
	})
}

// BackResult is returned by the back command.
type BackResult struct {
	Success bool `json:"success"`
}

func cmdBack(cfg *Config) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := sess.Back(ctx); err != nil {
			return nil, err
		}
		return BackResult{Success: true}, nil
	})
}

// ForwardResult is returned by the forward command.
type ForwardResult struct {
	Success bool `json:"success"`
}

func cmdForward(cfg *Config) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := sess.Forward(ctx); err != nil {
			return nil, err
		}
		return ForwardResult{Success: true}, nil
	})
}

// ReloadResult is returned by the reload command.
type ReloadResult struct {
	Reloaded bool `json:"reloaded"`
}

func cmdReload(cfg *Config) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := sess.Refresh(ctx); err != nil {
			return nil, err
		}
		return ReloadResult{Reloaded: true}, nil
	})
}

// BrowsersResult is returned by the browsers command.
type BrowsersResult struct {
	Browsers []string `json:"browsers"`
}

func cmdBrowsers(cfg *Config) int {
	return outputResult(cfg, BrowsersResult{Browsers: cfg.registry().Browsers()})
}
