// Package app builds cobra commands from option groups and wires flag,
// environment and configuration file sources together through viper.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/cli/globalflag"
	"k8s.io/component-base/term"

	"github.com/autopeer-io/livemapper/pkg/version"
)

// RunFunc is the application body, invoked once options are loaded and validated.
type RunFunc func() error

// NamedFlagSetOptions is implemented by the top-level options of a command.
type NamedFlagSetOptions interface {
	// Flags returns the option groups keyed by section name.
	Flags() cliflag.NamedFlagSets

	// Complete fills in fields derived from other fields.
	Complete() error

	// Validate checks all option groups and aggregates the problems found.
	Validate() error
}

// App is a command line application.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	args        cobra.PositionalArgs
	noConfig    bool

	configFile   string
	envFile      string
	printVersion bool

	cmd *cobra.Command
}

// NewApp creates an App and builds its cobra command.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		envFile:   defaultEnvFile,
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()

	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the command and exits the process with status 1 on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:          a.name,
		Short:        a.shortDesc,
		Long:         a.description,
		SilenceUsage: true,
		Args:         a.args,
		RunE:         a.runCommand,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var fss cliflag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}

	global := fss.FlagSet("global")
	if !a.noConfig {
		global.StringVarP(&a.configFile, "config", "c", a.configFile, "Read configuration from the specified file (yaml, json or toml).")
		global.StringVar(&a.envFile, "env-file", a.envFile, "Dotenv file loaded into the environment when present. Variables already set win.")
	}
	global.BoolVar(&a.printVersion, "version", false, "Print version information and quit.")
	globalflag.AddGlobalFlags(global, cmd.Name())

	fs := cmd.Flags()
	for _, name := range fss.Order {
		fs.AddFlagSet(fss.FlagSets[name])
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, fss, cols)

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if a.printVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().Text())
		return nil
	}

	if !a.noConfig && a.options != nil {
		if err := loadEnvFile(a.envFile); err != nil {
			return err
		}
		if err := loadConfig(cmd.Flags(), a.configFile, a.options); err != nil {
			return err
		}
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return fmt.Errorf("failed to complete options: %w", err)
		}
		if err := a.options.Validate(); err != nil {
			return fmt.Errorf("invalid options: %w", err)
		}
	}

	if a.runFunc != nil {
		return a.runFunc()
	}
	return nil
}
