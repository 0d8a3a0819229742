package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libcryptonote-go/cnutil"
	"github.com/bitfsorg/libcryptonote-go/config"
	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/logging"
	"github.com/bitfsorg/libcryptonote-go/pow"
	"github.com/bitfsorg/libcryptonote-go/store"
)

// env is the state shared by all commands of one run.
type env struct {
	cfg     config.Config
	profile *fork.Profile
	logger  zerolog.Logger
	util    *cnutil.Util
	closers []io.Closer
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

// openStore opens the template database of the data directory.
func (e *env) openStore() (*store.BoltTemplateStore, error) {
	s, err := store.OpenBoltTemplateStore(config.TemplateDBPath(e.cfg.DataDir), e.cfg.TemplateTTL)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, s)
	return s, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
	e.closers = nil
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "cnutil",
		Usage:     "Cryptonote block template utilities",
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "datadir",
				Usage:   "data directory holding the config file and template database",
				EnvVars: []string{"CNUTIL_DATADIR"},
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file (default <datadir>/config)",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "fork profile name, overrides the config file",
			},
			&cli.StringFlag{
				Name:  "loglevel",
				Usage: "debug, info, warn or error",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			if e, ok := c.App.Metadata["env"].(*env); ok {
				e.close()
			}
			return nil
		},
		Commands: []*cli.Command{
			profilesCommand(),
			convertBlobCommand(),
			blockIDCommand(),
			powHashCommand(),
			constructBlockCommand(),
			decodeTxCommand(),
			decodeAddressCommand(),
			mmParentCommand(),
			mmChildCommand(),
			nonceSizeCommand(),
			templateCommand(),
		},
	}
}

// setup loads the configuration, applies flag overrides and builds the
// logger and the library facade.
func setup(c *cli.Context) error {
	dataDir := c.String("datadir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	path := c.String("config")
	if path == "" {
		path = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound) && !c.IsSet("config"):
	case err != nil:
		return err
	}
	if c.IsSet("datadir") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if c.IsSet("profile") {
		cfg.Profile = c.String("profile")
	}
	if c.IsSet("loglevel") {
		cfg.LogLevel = c.String("loglevel")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	e := &env{cfg: cfg}
	e.profile, err = fork.ByName(cfg.Profile)
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		f, err := logging.OpenFile(filepath.Clean(cfg.LogFile))
		if err != nil {
			return err
		}
		e.closers = append(e.closers, f)
		e.logger, err = logging.New("cnutil", cfg.LogLevel, f)
		if err != nil {
			return err
		}
	} else if e.logger, err = logging.NewConsole("cnutil", cfg.LogLevel, c.App.ErrWriter); err != nil {
		return err
	}

	registry := pow.NewRegistry()
	if err := registry.Register(e.profile.ID, pow.KeccakDigester{}); err != nil {
		return err
	}
	e.util = cnutil.New(cnutil.WithLogger(e.logger), cnutil.WithRegistry(registry))
	e.logger.Debug().Str("profile", e.profile.Name).Str("datadir", cfg.DataDir).Msg("configuration loaded")

	c.App.Metadata["env"] = e
	return nil
}

// usageError reports a missing positional argument.
func usageError(c *cli.Context, want string) error {
	return fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, want)
}
