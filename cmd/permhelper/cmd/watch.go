package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/config"
	"github.com/go-drift/permissions-helper/pkg/permissions"
)

func init() {
	var all bool
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Follow the device file and print status changes",
		Long: `Watch the device file and print permission statuses every time it
changes. Editing device.states.location posts a location authorization
change to the simulated device, and the change is printed.

Stops on Ctrl+C. Without names, the location permissions are shown.`,
		Usage: "permhelper watch [--all] [PERMISSION]...",
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVarP(&all, "all", "a", false, "show every permission in the catalog")
		},
		Run: func(env *Env, args []string) error {
			names := args
			switch {
			case all:
				names, _ = namesOrAll(env, nil, true)
			case len(names) == 0:
				names = []string{string(permissions.AlwaysLocation), string(permissions.WhenInUseLocation)}
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, env, names)
		},
	})
}

func runWatch(ctx context.Context, env *Env, names []string) error {
	if _, err := os.Stat(env.ConfigPath); err != nil {
		return fmt.Errorf("watch needs a device file: %w", err)
	}

	var mu sync.Mutex
	show := func(header string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(env.Out, header)
		if err := printStatuses(env, names); err != nil {
			env.Logger.WithError(err).Error("status failed")
		}
	}

	unsubscribe := env.Device.SubscribeLocationChanges(func(state permissions.NativeState) {
		mu.Lock()
		fmt.Fprintf(env.Out, "location authorization changed: %s\n", state)
		mu.Unlock()
	})
	defer unsubscribe()

	show("initial:")
	return env.Device.Watch(ctx, env.ConfigPath, func(*config.Config) {
		show("reloaded:")
	})
}
