// Package cmd implements the permhelper CLI commands.
//
// The root command dispatches to subcommands (status, has, request,
// settings, catalog, watch) that run the permission service against the
// simulated device described in permhelper.yaml.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	// Flags binds the command's flags. Optional.
	Flags func(fs *pflag.FlagSet)
	Run   func(env *Env, args []string) error
}

var rootCmd = &Command{
	Name:  "permhelper",
	Short: "permhelper - query and request permissions on a simulated device",
	Long: `permhelper runs the permission service against a simulated device.

The device (platform, OS version, current authorization states and the
answers the simulated user gives to prompts) is read from permhelper.yaml.

Use "permhelper <command> --help" for more information about a command.`,
	Usage: "permhelper [global flags] <command> [flags] [args]",
}

// Commands registered with the CLI, in registration order.
var (
	commands    = make(map[string]*Command)
	subCommands []*Command
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	subCommands = append(subCommands, cmd)
}

type globalOptions struct {
	configPath  string
	catalogPath string
	platform    string
	osVersion   string
	quiet      bool
	noColor    bool
	help       bool
	version    bool
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts globalOptions
	global := pflag.NewFlagSet(rootCmd.Name, pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	global.StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "device description file")
	global.StringVar(&opts.catalogPath, "catalog", "", "load the permission catalog from a file instead of the built-in one")
	global.StringVar(&opts.platform, "platform", "", "override the device platform (iOS or Android)")
	global.StringVar(&opts.osVersion, "os-version", "", "override the device OS version")
	global.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress advisories")
	global.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	global.BoolVarP(&opts.help, "help", "h", false, "show help")
	global.BoolVarP(&opts.version, "version", "v", false, "show version information")
	if err := global.Parse(args); err != nil {
		return err
	}
	if opts.noColor {
		color.NoColor = true
	}

	rest := global.Args()
	switch {
	case opts.version:
		fmt.Fprintf(stdout, "permhelper version %s (built %s)\n", Version, BuildTime)
		return nil
	case opts.help, len(rest) == 0, rest[0] == "help":
		printHelp(stdout, global)
		return nil
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		printHelp(stderr, global)
		return fmt.Errorf("unknown command: %s", rest[0])
	}

	fs := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.Flags != nil {
		cmd.Flags(fs)
	}
	help := fs.BoolP("help", "h", false, "show help")
	if err := fs.Parse(rest[1:]); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if *help {
		printCommandHelp(stdout, cmd, fs)
		return nil
	}

	env, err := newEnv(opts, stdout, stderr)
	if err != nil {
		return err
	}
	defer env.Close()
	return cmd.Run(env, fs.Args())
}

func printHelp(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, rootCmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range subCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  permhelper status CAMERA WHEN_IN_USE_LOCATION")
	fmt.Fprintln(w, "  permhelper request --timeout 10s ALWAYS_LOCATION")
	fmt.Fprintln(w, "  permhelper --os-version 9.3 catalog")
}

func printCommandHelp(w io.Writer, cmd *Command, fs *pflag.FlagSet) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	if usages := fs.FlagUsages(); usages != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, usages)
	}
}
