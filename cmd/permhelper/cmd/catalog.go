package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

func init() {
	RegisterCommand(&Command{
		Name:  "catalog",
		Short: "List the permission catalog",
		Long: `List every permission name with its tier, capability and delivery form
for the device OS version. Version-gated names show the OS version they
require.`,
		Usage: "permhelper catalog",
		Run:   runCatalog,
	})
}

func runCatalog(env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	catalog := env.Service.Catalog()

	version := catalog.OSVersion()
	if version == "" {
		version = "latest"
	}
	fmt.Fprintf(env.Out, "Platform: %s %s\n", catalog.Platform(), version)
	if catalog.SettingsSupported() {
		fmt.Fprintln(env.Out, "Settings: available")
	} else {
		fmt.Fprintf(env.Out, "Settings: requires %s\n", catalog.SettingsMinOSVersion())
	}
	fmt.Fprintln(env.Out)

	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTIER\tCAPABILITY\tDELIVERY\tNOTES")
	for _, name := range catalog.Names() {
		e, err := catalog.Resolve(string(name))
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Name, e.Tier, dash(string(e.Capability)), dash(string(e.Delivery)), entryNotes(catalog, e))
	}
	return tw.Flush()
}

func entryNotes(catalog *permissions.Catalog, e permissions.Entry) string {
	var notes []string
	if e.MergedInto != "" {
		notes = append(notes, "reported as "+string(e.MergedInto))
	}
	if group := catalog.Synonyms(e.Name); len(group) > 1 {
		var others []string
		for _, n := range group {
			if n != e.Name {
				others = append(others, string(n))
			}
		}
		notes = append(notes, "synonym of "+strings.Join(others, ", "))
	}
	if e.VersionGated {
		notes = append(notes, "requires "+e.MinOSVersion)
	}
	return dash(strings.Join(notes, "; "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
