package launcher

import (
	"context"
	"log/slog"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/cdp"
)

// Registry returns a session registry wired with the local browser
// factories: "chrome" and "chromium" launch a headless-capable browser and
// connect to it; "attach" connects to a browser already listening on the
// configured host and port.
//
// The registry is a plain value; callers may add their own factories or
// build a different one entirely.
func Registry() *drover.Registry {
	r := drover.NewRegistry()
	r.Register("chrome", launchFactory("chrome"))
	r.Register("chromium", launchFactory("chromium"))
	r.Register("attach", attachFactory)
	return r
}

func launchFactory(kind string) drover.SessionFactory {
	return func(ctx context.Context, opts drover.Options) (drover.Session, error) {
		inst, err := Launch(ctx, LaunchOptions{
			BinaryPath: opts.BinaryPath,
			Kind:       kind,
			Port:       opts.Port,
			Headless:   opts.Headless,
		})
		if err != nil {
			return nil, err
		}

		sess, err := cdp.Connect(ctx, "localhost", inst.Port, cdp.WithLogger(opts.Logger))
		if err != nil {
			inst.Stop()
			return nil, err
		}
		return &launchedSession{Session: sess, inst: inst, log: logger(opts)}, nil
	}
}

func attachFactory(ctx context.Context, opts drover.Options) (drover.Session, error) {
	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == 0 {
		port = 9222
	}
	return cdp.Connect(ctx, host, port, cdp.WithLogger(opts.Logger))
}

func logger(opts drover.Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// launchedSession ties a session to the browser process it launched. The
// session teardown error propagates; stopping the process afterwards is
// best effort and only logged, so a half-dead browser cannot mask the
// session's own close failure.
type launchedSession struct {
	drover.Session
	inst *Instance
	log  *slog.Logger
}

func (s *launchedSession) Close(ctx context.Context) error {
	err := s.Session.Close(ctx)
	if stopErr := s.inst.Stop(); stopErr != nil {
		s.log.Warn("stopping browser process", "pid", s.inst.PID, "err", stopErr)
	}
	return err
}
