// Package config parses methaloxd's command-line flags (and an optional
// config file) via jessevdk/go-flags, following the long/description
// tag convention used throughout the decred/vhcwallet family of tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

// Config holds every setting methaloxd's boot sequence needs.
type Config struct {
	DataDir      string `long:"datadir" description:"Directory to store chain_state.bin and the default node key file"`
	RPCListen    string `long:"rpclisten" description:"JSON-RPC listen address" default:":9933"`
	LogLevel     string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`
	TickInterval int    `long:"tickinterval" description:"Block production tick interval, in seconds" default:"1"`
	NodeKeyFile  string `long:"nodekeyfile" description:"Path to this node's Ed25519+VRF seed file"`
	ConfigFile   string `long:"configfile" description:"Path to a config file" no-ini:"true"`
}

// Default returns a Config populated with the documented defaults, for use
// when no flags or config file are supplied (e.g. in tests).
func Default() *Config {
	return &Config{
		DataDir:      "./data",
		RPCListen:    ":9933",
		LogLevel:     "info",
		TickInterval: 1,
	}
}

// Load parses command-line arguments and then, if --configfile names a
// file, applies that file; values read from the file replace any the
// command line set for the same options. A named file that does not exist
// is ignored, and no config file is looked for when --configfile is unset.
func Load(args []string) (*Config, error) {
	cfg := Default()

	preParser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := preParser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := flags.NewIniParser(preParser).ParseFile(cfg.ConfigFile); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("parse config file %s: %w", cfg.ConfigFile, err)
			}
		}
	}

	if cfg.NodeKeyFile == "" {
		cfg.NodeKeyFile = filepath.Join(cfg.DataDir, "node.key")
	}
	return cfg, nil
}

// ChainStatePath is the fixed snapshot filename from spec §6, rooted at
// the configured data directory.
func (c *Config) ChainStatePath() string {
	return filepath.Join(c.DataDir, "chain_state.bin")
}
