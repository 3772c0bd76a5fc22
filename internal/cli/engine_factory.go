package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/cback"
	"github.com/aretw0/cback/internal/config"
	"github.com/aretw0/cback/pkg/adapters/process"
	"github.com/aretw0/cback/pkg/adapters/redis"
	"github.com/aretw0/cback/pkg/domain"
)

// lockPrefix namespaces cback keys in a shared Redis.
const lockPrefix = "cback:"

// loadConfig reads the configuration file. Any failure is a configuration error.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &ExitError{Code: ExitConfig, Err: err}
	}
	return cfg, nil
}

// createEngine initializes a cback engine from the configuration file.
// The returned close func releases the lock client, if any.
func createEngine(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*cback.Engine, func() error, error) {
	runner := process.NewRunner(process.WithBaseDir(cfg.Options.WorkingDir))

	// Built-ins without a configured command stay unavailable.
	reg := cback.DefaultRegistry(runner)
	commands, err := cfg.ActionCommands()
	if err != nil {
		return nil, nil, &ExitError{Code: ExitConfig, Err: err}
	}
	for name, c := range commands {
		argv, err := c.Argv()
		if err != nil {
			return nil, nil, &ExitError{Code: ExitConfig, Err: fmt.Errorf("action %s: %w", name, err)}
		}
		reg.Register(name, runner.CommandAction(argv, c.Environment))
	}

	opts := []cback.Option{
		cback.WithLogger(logger),
		cback.WithRegistry(reg),
		cback.WithCommandRunner(runner),
		cback.WithLifecycleHooks(hooks),
	}

	closer := func() error { return nil }
	if cfg.Lock != nil {
		locker := redis.NewLockerFromAddr(cfg.Lock.RedisAddr, cfg.Lock.Password, cfg.Lock.DB, lockPrefix, redis.WithWait(cfg.Lock.Wait))
		opts = append(opts, cback.WithLocker(locker, cfg.Lock.Key, cfg.Lock.TTL))
		closer = locker.Close
	}

	return cback.New(opts...), closer, nil
}
