package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

func init() {
	var timeout time.Duration
	RegisterCommand(&Command{
		Name:  "request",
		Short: "Request permissions",
		Long: `Request one or more permissions from the simulated user.

Requests run concurrently. Permissions already decided are answered without
a prompt. Camera, photos, contacts and microphone prompts are answered at
once from device.prompts; location prompts are answered through a location
authorization change, and wait forever if device.prompts has no location
answer unless --timeout is set.`,
		Usage: "permhelper request [--timeout DURATION] <PERMISSION>...",
		Flags: func(fs *pflag.FlagSet) {
			fs.DurationVarP(&timeout, "timeout", "t", 0, "give up waiting after this long (0 waits forever)")
		},
		Run: func(env *Env, args []string) error {
			return runRequest(env, args, timeout)
		},
	})
}

func runRequest(env *Env, names []string, timeout time.Duration) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one permission name is required")
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	results := make([]permissions.Status, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			status, err := env.Service.Request(ctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		fmt.Fprintln(env.Out, statusLine(name, results[i]))
	}
	return nil
}
