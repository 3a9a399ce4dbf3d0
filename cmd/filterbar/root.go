package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"filterbar/internal/config"
	"filterbar/internal/debug"
	appErrors "filterbar/internal/errors"
	"filterbar/internal/ui/theme"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configDir  string
	dbPath     string
	schemaPath string
	debug      bool
	theme      string
}

// flagKeys maps persistent flags onto the config keys they override.
var flagKeys = map[string]string{
	"db":     config.KeyDatabasePath,
	"schema": config.KeySchemaPath,
	"debug":  config.KeyDebug,
	"theme":  config.KeyTheme,
}

// Execute runs the command line.
func Execute() error {
	defer debug.Close()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "filterbar",
		Short: "Build structured filters with an autocompleting filter bar",
		Long: "filterbar builds field/operator/value filters interactively, saves them by name\n" +
			"and renders them as text, JSON, SQL or CEL.",
		Example:       "  filterbar seed\n  filterbar run --name triage\n  filterbar show triage --output sql",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configDir, "config-dir", "", "directory holding the user config.yaml (default ~/"+config.DirName+")")
	pf.StringVar(&opts.dbPath, "db", "", "sqlite database path (default ~/"+config.DirName+"/filterbar.db)")
	pf.StringVar(&opts.schemaPath, "schema", "", "YAML schema file (default: built-in demo schema)")
	pf.BoolVar(&opts.debug, "debug", false, "write a debug log to ~/"+config.DirName+"/debug.log")
	pf.StringVar(&opts.theme, "theme", "", "color theme: "+strings.Join(theme.Available(), ", "))

	cmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newSaveCmd(),
		newDeleteCmd(),
		newSeedCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration, applies flag overrides and starts the debug
// log.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var initOpts []config.Option
	if o.configDir != "" {
		path, err := config.UserConfigPath(o.configDir)
		if err != nil {
			return err
		}
		initOpts = append(initOpts, config.WithUserConfig(path))
	}
	if err := config.Initialize(initOpts...); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}

	overrides := map[string]any{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if f.Value.Type() == "bool" {
			overrides[key] = f.Value.String() == "true"
			return
		}
		overrides[key] = f.Value.String()
	})
	if err := config.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}

	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		return fmt.Errorf("start debug log: %w", err)
	}
	debug.Logger().V(1).Info("command started", "command", cmd.Name())

	if name := strings.TrimSpace(config.GetString(config.KeyTheme)); name != "" && !theme.Set(name) {
		return appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("unknown theme %q (available: %s)", name, strings.Join(theme.Available(), ", ")), nil)
	}
	return nil
}
