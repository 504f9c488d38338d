// Package cli implements fleetctl, the operator command line for the fleet
// daemon. Every command is a single gRPC call to the DeviceManagement service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fleet-core/internal/rpc"
)

// DefaultTimeout bounds each RPC.
const DefaultTimeout = 5 * time.Second

// DeviceManager is the set of operations the commands call.
// *rpc.Client and *fleet.Service both implement it.
type DeviceManager = rpc.DeviceManagementServer

// Dialer connects to the server at target. If the returned DeviceManager
// implements io.Closer it is closed when the command finishes.
type Dialer func(target string) (DeviceManager, error)

// dialRPC is the production Dialer.
func dialRPC(target string) (DeviceManager, error) {
	return rpc.NewClient(target)
}

// Options configures the root command.
type Options struct {
	// Dial overrides how commands reach the server. Nil dials gRPC.
	Dial Dialer

	// Version is printed by the version command.
	Version string
}

// app is the state shared by all commands of one root.
type app struct {
	dial    Dialer
	version string

	server  string
	output  string
	timeout time.Duration

	formatter Formatter
}

// NewRootCmd builds the fleetctl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	a := &app{dial: opts.Dial, version: opts.Version}
	if a.dial == nil {
		a.dial = dialRPC
	}
	if a.version == "" {
		a.version = "dev"
	}

	root := &cobra.Command{
		Use:   "fleetctl",
		Short: "Device fleet CLI: register devices, change status, run and track actions",
		Long: `fleetctl talks to a fleet daemon over gRPC. It registers devices,
reads and overrides their status, starts software updates and reports on
their progress.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			f, err := NewFormatter(a.output)
			if err != nil {
				return err
			}
			a.formatter = f
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", rpc.DefaultTarget, "fleet daemon gRPC address")
	flags.StringVarP(&a.output, "output", "o", FormatTable, "output format: table, json, yaml")
	flags.DurationVar(&a.timeout, "timeout", DefaultTimeout, "per-request timeout")

	root.AddCommand(
		a.registerCmd(),
		a.infoCmd(),
		a.setStatusCmd(),
		a.updateCmd(),
		a.checkActionCmd(),
		a.versionCmd(),
	)
	return root
}

// Execute runs fleetctl with args and writes errors to stderr.
// It returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer, opts Options) int {
	root := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// call dials the server, runs fn under the request timeout and closes the
// connection afterwards.
func (a *app) call(ctx context.Context, fn func(context.Context, DeviceManager) error) (err error) {
	dm, err := a.dial(a.server)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", a.server, err)
	}
	if c, ok := dm.(io.Closer); ok {
		defer func() {
			if closeErr := c.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("closing connection: %w", closeErr)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return fn(ctx, dm)
}

// print renders v with the selected formatter.
func (a *app) print(cmd *cobra.Command, v any) error {
	out, err := a.formatter.Format(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// errBusinessFailure marks a call the server refused with success=false.
// The result is still printed before it is returned.
var errBusinessFailure = errors.New("request refused by server")

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fleetctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "fleetctl version %s\nserver: %s\n", a.version, a.server)
			return nil
		},
	}
}
