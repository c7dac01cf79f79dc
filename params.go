package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rustnet/http-contract-tests/config"
	"github.com/rustnet/http-contract-tests/framework"

	"github.com/spf13/cobra"
)

type commandParams struct {
	configPath string
	envFile    string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	noColor    bool
	reportJSON string
	reportXLSX string
}

func (p *commandParams) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&p.configPath, "config", "c", config.DefaultPath, "harness config file (YAML)")
	fs.StringVar(&p.envFile, "env-file", ".env", "dotenv file loaded before the config is read")
	fs.Var(&p.filters.MustMatch, "run", "regex pattern(s) to select cases to run, matched against e.g. \"server/GET /\"")
	fs.Var(&p.filters.MustNotMatch, "skip", "regex pattern(s) to select cases not to run")
	fs.BoolVar(&p.debug, "debug", false, "show debug output for failed cases")
	fs.BoolVar(&p.debugAll, "debug-all", false, "show debug output for all cases and for the harness itself")
	fs.BoolVar(&p.noColor, "no-color", false, "disable colored output")
	fs.StringVar(&p.reportJSON, "report-json", "", "write a JSON report to this file")
	fs.StringVar(&p.reportXLSX, "report-xlsx", "", "write an xlsx report to this file")
}

// loadConfig reads the config file. The default file is optional; one named explicitly with
// --config must exist. Report flags override the file.
func (p *commandParams) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(p.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.Defaults()
	}
	if p.reportJSON != "" {
		cfg.Report.JSON = p.reportJSON
	}
	if p.reportXLSX != "" {
		cfg.Report.XLSX = p.reportXLSX
	}
	// Artifacts are checked from here but run from the configured working directory.
	for _, path := range []*string{&cfg.Server.Artifact, &cfg.Client.Artifact} {
		abs, err := filepath.Abs(*path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", *path, err)
		}
		*path = abs
	}
	return cfg, nil
}
