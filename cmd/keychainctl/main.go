// Command keychainctl inspects and manages keys in the n1 keychain.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/n1/keychain/internal/config"
	"github.com/n1/keychain/internal/log"
	"github.com/n1/keychain/internal/resources"
	"github.com/urfave/cli/v2"
)

const version = "0.1.0-dev"

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "keychainctl",
		Usage:   "manage symmetric keys in the platform keychain",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   config.DefaultPath(),
				EnvVars: []string{"N1_KEYCHAIN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Backing store (platform, memory, keyring, enclave, sqlite)",
				EnvVars: []string{"N1_KEYCHAIN_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite database",
				EnvVars: []string{"N1_KEYCHAIN_DB"},
			},
			&cli.StringFlag{
				Name:  "seal",
				Usage: "Seal key custody for the sqlite backend (keyring, none)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			putCmd,
			getCmd,
			deleteCmd,
			replaceCmd,
			namesCmd,
			infoCmd,
		},
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(config.ExpandPath(c.String("config")))
	if err != nil {
		return nil, err
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}
	if c.IsSet("seal") {
		cfg.Seal = c.String("seal")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	return cfg, nil
}

// withResources opens the shared resources for the duration of fn.
func withResources(c *cli.Context, fn func(r *resources.Core) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	r, err := resources.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open keychain: %w", err)
	}
	defer r.Close()
	return fn(r)
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Error().Err(err).Msg("keychainctl failed")
		os.Exit(1)
	}
}
