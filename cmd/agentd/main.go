// Command agentd is the desktop activity capture agent. It offers
// start/stop/status/serve/version subcommands in the style of a small ops
// CLI, adapted from the teacher's cmd/actionsum entrypoint: the same
// daemonize-via-re-exec pattern and signal handling, now wiring the
// scheduler/dispatcher/heartbeat/statusapi pipeline instead of a
// database-backed tracker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clepsy/deskagent/internal/config"
	"github.com/clepsy/deskagent/internal/daemon"
	"github.com/clepsy/deskagent/internal/dispatcher"
	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/health"
	"github.com/clepsy/deskagent/internal/heartbeat"
	"github.com/clepsy/deskagent/internal/idle"
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/scheduler"
	"github.com/clepsy/deskagent/internal/screenshot"
	"github.com/clepsy/deskagent/internal/statusapi"
	"github.com/clepsy/deskagent/internal/windowinfo"
	"github.com/clepsy/deskagent/internal/workerpool"
	"github.com/clepsy/deskagent/version"
)

const daemonChildEnvVar = "DESKAGENT_DAEMON_CHILD"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		runStart(false)
	case "serve":
		runStart(true)
	case "stop":
		runStop()
	case "status":
		runStatus()
	case "version":
		fmt.Println(version.String())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`agentd - desktop activity capture agent

Usage:
  agentd start     start the agent as a background daemon
  agentd serve     start the agent with the local status HTTP endpoint
  agentd stop      stop the running daemon
  agentd status    report whether the daemon is running
  agentd version   print the agent version
  agentd help      show this message`)
}

func runStart(serve bool) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	d := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := d.IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to check daemon status: %v\n", err)
		os.Exit(1)
	}
	if running {
		fmt.Printf("agentd already running (pid %d)\n", pid)
		return
	}

	if os.Getenv(daemonChildEnvVar) != "1" {
		daemonize(serve)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := d.Run(ctx, func(ctx context.Context) error {
		runAgent(ctx, cfg, serve)
		return nil
	}); err != nil {
		fmt.Fprintf(os.Stderr, "daemon exited with error: %v\n", err)
		os.Exit(1)
	}
}

// daemonize re-execs this binary in the background, matching the
// teacher's os.StartProcess + child-marker-env-var pattern.
func daemonize(serve bool) {
	executable, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve executable path: %v\n", err)
		os.Exit(1)
	}

	args := os.Args
	env := append(os.Environ(), daemonChildEnvVar+"=1")

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", os.DevNull, err)
		os.Exit(1)
	}
	defer devNull.Close()

	process, err := os.StartProcess(executable, args, &os.ProcAttr{
		Env:   env,
		Files: []*os.File{devNull, devNull, devNull},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("agentd started (pid %d)\n", process.Pid)
}

func runAgent(ctx context.Context, cfg *config.Config, serve bool) {
	snapshot := config.NewSnapshot(cfg)
	store := health.New()
	httpClient := &http.Client{}

	platform := platformprobe.Detect()
	display := platformprobe.DetectDisplayServer(platform)
	var compositor platformprobe.Compositor
	if display == platformprobe.DisplayServerWayland {
		compositor = platformprobe.DetectWaylandCompositor()
	}

	provider, err := windowinfo.New(platform, display, compositor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize window info provider: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

	pool := workerpool.New(2)
	defer pool.Close()
	idleDetector := idle.New(display, pool)
	shotter := screenshot.New(display, compositor)

	eventCh := make(chan events.Event, 16)

	sched := scheduler.New(snapshot, provider, idleDetector, shotter, eventCh)
	disp := dispatcher.New(snapshot, store)
	pinger := heartbeat.New(snapshot, store, httpClient)

	go disp.Run(ctx, eventCh)
	go pinger.Run(ctx)

	var srv *http.Server
	if serve {
		api := statusapi.New(store, sched)
		srv = &http.Server{Addr: "127.0.0.1:0", Handler: api.Routes()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "status api failed: %v\n", err)
			}
		}()
	}

	if err := sched.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler exited with error: %v\n", err)
	}

	if srv != nil {
		srv.Close()
	}
}

func runStop() {
	cfg := config.New()
	d := daemon.New(cfg.Daemon.PIDFile)
	if err := d.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop daemon: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("agentd stopped")
}

func runStatus() {
	cfg := config.New()
	d := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := d.IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to check daemon status: %v\n", err)
		os.Exit(1)
	}
	if running {
		fmt.Printf("agentd is running (pid %d)\n", pid)
	} else {
		fmt.Println("agentd is not running")
	}
}
