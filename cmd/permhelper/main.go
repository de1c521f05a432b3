// Command permhelper queries and requests permissions on a simulated device.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/go-drift/permissions-helper/cmd/permhelper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
