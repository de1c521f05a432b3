package cmd

import (
	"fmt"

	"github.com/fatih/color"
)

func init() {
	RegisterCommand(&Command{
		Name:  "settings",
		Short: "Open the app's system settings page",
		Long: `Open the app's page in the system settings, where the user can change
permissions by hand.

Reports "unavailable" when the device OS is too old for settings
navigation or the device cannot open it. No permission state changes.`,
		Usage: "permhelper settings",
		Run: func(env *Env, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if env.Service.OpenSettings() {
				fmt.Fprintln(env.Out, color.GreenString("opened"))
			} else {
				fmt.Fprintln(env.Out, color.YellowString("unavailable"))
			}
			return nil
		},
	})
}
