package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// WatchCmd re-runs expand whenever a manifest or the config file changes
var WatchCmd = &cobra.Command{
	Use:   "watch [manifest|dir]...",
	Short: "Re-run expand when manifests or config change",
	Long: `Run expand once, then again after every batch of changes to the
watched manifests or to the configuration file.

Changes are debounced (watch.debounce_ms) and re-runs are capped at
watch.max_runs_per_minute. Directories are watched without recursion.
Accepts the same flags as expand.

Examples:
  jsbind watch manifests/ --out-dir gen/
  jsbind watch --config jsbind.toml`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().AddFlagSet(ExpandCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	local := *cfg
	applyExpandFlags(cmd, &local)

	inputs := args
	if len(inputs) == 0 {
		inputs = local.Input.Manifests
	}
	if len(inputs) == 0 {
		return errors.WithHint(
			errors.Wrap(errors.ErrValidation, "nothing to watch"),
			"pass manifest files or directories, or set input.manifests in "+am.ConfigFileName)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.ComponentLogger("watch")
	out := runOutput{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr(), verbosity: verbosityOf(cmd)}
	if _, err := expandOnce(ctx, &local, inputs, out); err != nil {
		log.Warnw("Initial run failed", logger.FieldError, err)
	}

	w, err := am.NewWatcher(watchedConfig(), inputs, local.GetDebounce())
	if err != nil {
		return err
	}
	am.SetGlobalWatcher(w)
	defer am.SetGlobalWatcher(nil)

	runner := newRerunner(local.Watch.MaxRunsPerMinute, func(reloaded *am.Config) error {
		next := *reloaded
		applyExpandFlags(cmd, &next)
		_, err := expandOnce(ctx, &next, inputs, out)
		return err
	})
	w.OnChange(func(reloaded *am.Config, changed []string) error {
		log.Infow("Change detected, re-running",
			logger.FieldFiles, changed)
		return runner.run(ctx, reloaded)
	})
	w.Start()

	log.Infow("Watching for changes",
		logger.FieldCount, len(inputs))
	<-ctx.Done()
	return w.Stop()
}

// watchedConfig returns the config file to watch: --config, or jsbind.toml
// in the working directory when present
func watchedConfig() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	if _, err := os.Stat(am.ConfigFileName); err == nil {
		if abs, err := filepath.Abs(am.ConfigFileName); err == nil {
			return abs
		}
	}
	return ""
}

// rerunner serializes re-runs and holds them to a per-minute rate. A run
// that arrives over the rate waits for its turn instead of being dropped,
// so the last change is always expanded.
type rerunner struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	fn      func(cfg *am.Config) error
}

func newRerunner(perMinute int, fn func(cfg *am.Config) error) *rerunner {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return &rerunner{limiter: rate.NewLimiter(limit, 1), fn: fn}
}

func (r *rerunner) run(ctx context.Context, cfg *am.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "re-run cancelled")
	}
	return r.fn(cfg)
}
