// Package launcher discovers and launches a local Chrome or Chromium with a
// debugging port, and wires browser-type factories into a session registry.
package launcher

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// LaunchOptions configures a browser launch.
type LaunchOptions struct {
	BinaryPath string // browser binary (auto-detected if empty)
	Kind       string // "chrome" or "chromium"; steers auto-detection
	Port       int    // remote debugging port; 0 picks a free one
	Headless   bool
	DataDir    string // user data directory (temp dir created if empty)
}

// Instance is a running browser process.
type Instance struct {
	cmd      *exec.Cmd
	Port     int
	PID      int
	DataDir  string
	ownsData bool
}

var binaryNames = map[string][]string{
	"chrome":   {"google-chrome", "google-chrome-stable"},
	"chromium": {"chromium", "chromium-browser"},
}

var installPaths = map[string]map[string][]string{
	"darwin": {
		"chrome":   {"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
		"chromium": {"/Applications/Chromium.app/Contents/MacOS/Chromium"},
	},
	"linux": {
		"chrome":   {"/usr/bin/google-chrome", "/usr/bin/google-chrome-stable"},
		"chromium": {"/usr/bin/chromium", "/usr/bin/chromium-browser", "/snap/bin/chromium"},
	},
	"windows": {
		"chrome": {
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		},
		"chromium": {},
	},
}

// FindBinary locates a browser binary. An explicit path is returned as-is
// when it exists; otherwise PATH and known install locations are searched
// for the given kind ("chrome" or "chromium").
func FindBinary(kind, explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	for _, name := range binaryNames[kind] {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, p := range installPaths[runtime.GOOS][kind] {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// IsPortOpen checks if a TCP port is accepting connections.
func IsPortOpen(host string, port int) bool {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitForPort waits for a TCP port to become available.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
		case <-ticker.C:
			if IsPortOpen(host, port) {
				return nil
			}
		}
	}
}

// freePort asks the kernel for an unused TCP port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Launch starts a browser instance with the given options.
func Launch(ctx context.Context, opts LaunchOptions) (*Instance, error) {
	kind := opts.Kind
	if kind == "" {
		kind = "chrome"
	}
	binary := FindBinary(kind, opts.BinaryPath)
	if binary == "" {
		return nil, fmt.Errorf("%s not found", kind)
	}

	port := opts.Port
	if port == 0 {
		var err error
		port, err = freePort()
		if err != nil {
			return nil, err
		}
	}

	ownsData := false
	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = os.MkdirTemp("", "drover-browser-*")
		if err != nil {
			return nil, fmt.Errorf("creating temp dir: %w", err)
		}
		ownsData = true
	}

	args := []string{
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-sync",
		"--disable-translate",
		"--mute-audio",
		"--no-first-run",
		"--disable-default-apps",
		fmt.Sprintf("--remote-debugging-port=%d", port),
		fmt.Sprintf("--user-data-dir=%s", dataDir),
		"about:blank",
	}
	if opts.Headless {
		args = append([]string{"--headless"}, args...)
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		if ownsData {
			os.RemoveAll(dataDir)
		}
		return nil, fmt.Errorf("starting %s: %w", kind, err)
	}

	inst := &Instance{
		cmd:      cmd,
		Port:     port,
		PID:      cmd.Process.Pid,
		DataDir:  dataDir,
		ownsData: ownsData,
	}

	if err := WaitForPort(ctx, "localhost", port, 30*time.Second); err != nil {
		inst.Stop()
		return nil, fmt.Errorf("%s failed to start: %w", kind, err)
	}
	return inst, nil
}

// Stop terminates the browser process and cleans up its data directory.
func (inst *Instance) Stop() error {
	if inst.cmd != nil && inst.cmd.Process != nil {
		inst.cmd.Process.Kill()
		inst.cmd.Wait()
		inst.cmd = nil
	}
	if inst.ownsData && inst.DataDir != "" {
		time.Sleep(100 * time.Millisecond)
		os.RemoveAll(inst.DataDir)
		inst.DataDir = ""
	}
	return nil
}
