package pwatcher

import (
	"context"
	"os"

	"git.unix.lgbt/diamondburned/pwatcher/pwatcher/internal/host"
	"github.com/pkg/errors"
)

// Coordinator wires the configuration, the Supervisor and the Watcher
// together.
type Coordinator struct {
	Paths      Paths
	ConfigFile string

	j             Journaler
	sup           *Supervisor
	totalMemoryGB func() (int, error)
}

// NewCoordinator creates a Coordinator for the server described by paths.
func NewCoordinator(paths Paths, configFile string, j Journaler) *Coordinator {
	j = journalerOrNop(j)

	return &Coordinator{
		Paths:         paths,
		ConfigFile:    configFile,
		j:             j,
		sup:           NewSupervisor(j),
		totalMemoryGB: host.TotalMemoryGB,
	}
}

// Supervisor returns the Supervisor that owns the server process.
func (c *Coordinator) Supervisor() *Supervisor {
	return c.sup
}

// Plan is the configuration and heap size the server is launched with.
type Plan struct {
	Config  Config
	TotalGB int
	AllocGB int
}

// LaunchSpec builds the server command for the plan.
func (p Plan) LaunchSpec(paths Paths) LaunchSpec {
	return BuildLaunchSpec(p.AllocGB, p.Config, paths)
}

// Prepare loads the configuration and computes the heap size without starting
// anything. An unusable configuration file is journaled and replaced by
// defaults; only a failed memory probe is returned as an error.
func (c *Coordinator) Prepare() (Plan, error) {
	cfg, cfgErr := LoadConfig(c.ConfigFile)

	total, err := c.totalMemoryGB()
	if err != nil {
		return Plan{}, errors.Wrap(err, "failed to detect memory")
	}

	alloc, err := Allocate(total, cfg)
	if err != nil {
		return Plan{}, err
	}

	c.j.Write(&EventMemoryDetected{
		SystemGB:    total,
		AllocatedGB: alloc,
		Mode:        cfg.RAMMode,
	})

	loaded := &EventConfigLoaded{File: c.ConfigFile}
	if _, err := os.Stat(c.ConfigFile); err == nil {
		loaded.Found = true
	}
	if cfgErr != nil {
		loaded.Error = cfgErr.Error()
	}
	c.j.Write(loaded)

	return Plan{Config: cfg, TotalGB: total, AllocGB: alloc}, nil
}

// Run starts the server once, then restarts it on plugin changes until ctx is
// canceled. The server process is left running when Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	dir := c.Paths.PluginsDir()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create plugins directory")
	}

	plan, err := c.Prepare()
	if err != nil {
		return err
	}

	// A failed launch is already journaled, and the next plugin event will
	// try again.
	c.sup.Start(plan.LaunchSpec(c.Paths))

	w, err := NewWatcher(ctx, dir, plan.Config.IgnorePatterns, c.j)
	if err != nil {
		return err
	}

	c.j.Write(&EventWatcherStarted{Dir: dir})

	for {
		select {
		case <-ctx.Done():
			<-w.Done()
			c.j.Write(&EventWatcherStopped{Dir: dir})
			return nil

		case <-w.Events:
			c.sup.Start(plan.LaunchSpec(c.Paths))
		}
	}
}
