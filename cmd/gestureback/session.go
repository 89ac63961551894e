package main

import (
	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/brokerclient"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/executor"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/launcher"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/lifecycle"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/outbuf"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/screen"
)

type terminator interface {
	screen.Terminator
	OnTeardown(f func())
}

// session holds the collaborators of one controller run.
type session struct {
	cfg        *config.App
	logger     *log.Logger
	broker     lib.PrivilegedExec
	local      lib.Spawner
	launcher   screen.Launcher
	terminator terminator
}

func newSession(cfg *config.App, logger *log.Logger) (*session, error) {
	runner.SetLogger(logger)
	outbuf.SetLogger(logger)
	lifecycle.SetLogger(logger)
	if cfg.Source != "" {
		logger.Info("loaded config", "path", cfg.Source)
	}

	client, err := brokerclient.Dial(cfg.Broker, logger)
	if err != nil {
		return nil, err
	}
	term := lifecycle.NewTerminator()
	term.OnTeardown(func() { _ = client.Close() })

	return &session{
		cfg:    cfg,
		logger: logger,
		broker: client,
		local:  runner.NewLocalSpawner(),
		launcher: launcher.New(launcher.Options{
			Executable: cfg.Companion.Executable,
			Args:       cfg.Companion.Args,
			StoreURL:   cfg.Companion.StoreURL,
			Logger:     logger,
		}),
		terminator: term,
	}, nil
}

func (s *session) controller(d screen.Dispatcher) *screen.Controller {
	return screen.NewController(screen.Options{
		Command:     s.cfg.Command,
		RequestCode: s.cfg.RequestCode,
		Timing:      screen.Timing(s.cfg.Timing),
		Broker:      s.broker,
		Executor: executor.New(executor.Options{
			Privileged: s.broker,
			Local:      s.local,
			Logger:     s.logger,
		}),
		Launcher:   s.launcher,
		Terminator: s.terminator,
		Dispatcher: d,
		Logger:     s.logger,
	})
}

var _ screen.Executor = (*executor.Executor)(nil)

func (s *session) logStart() {
	s.logger.Info("starting", "version", version, "command", s.cfg.Command, "broker", s.cfg.Broker.Address)
}
