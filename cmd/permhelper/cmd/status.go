package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

func init() {
	var all bool
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show permission statuses",
		Long: `Show the current status of one or more permissions.

Each status is one of undetermined, restricted, denied or granted. Names the
platform does not need are reported as granted; names it cannot control are
reported as denied.`,
		Usage: "permhelper status [--all] <PERMISSION>...",
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVarP(&all, "all", "a", false, "show every permission in the catalog")
		},
		Run: func(env *Env, args []string) error {
			names, err := namesOrAll(env, args, all)
			if err != nil {
				return err
			}
			return printStatuses(env, names)
		},
	})

	RegisterCommand(&Command{
		Name:  "has",
		Short: "Report whether permissions are granted",
		Long: `Report whether each permission is currently granted.

Exits with an error if any permission is not granted.`,
		Usage: "permhelper has <PERMISSION>...",
		Run:   runHas,
	})
}

func namesOrAll(env *Env, args []string, all bool) ([]string, error) {
	if all {
		var names []string
		for _, n := range env.Service.Catalog().Names() {
			names = append(names, string(n))
		}
		return names, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one permission name is required")
	}
	return args, nil
}

func printStatuses(env *Env, names []string) error {
	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		status, err := env.Service.GetPermissionStatus(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, colorStatus(status))
	}
	return tw.Flush()
}

func runHas(env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one permission name is required")
	}
	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	var missing []string
	for _, name := range args {
		has, err := env.Service.HasPermission(name)
		if err != nil {
			return err
		}
		if !has {
			missing = append(missing, name)
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, colorBool(has))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("not granted: %v", missing)
	}
	return nil
}

// statusLine is shared by commands that print a single result.
func statusLine(name string, status permissions.Status) string {
	return fmt.Sprintf("%s: %s", name, colorStatus(status))
}
