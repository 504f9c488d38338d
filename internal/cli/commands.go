package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
	"github.com/nerrad567/fleet-core/internal/fleet"
)

// Defaults used by register and update.
const (
	defaultInitialVersion = "1.0.0"
	defaultUpdateVersion  = "2.0.0"
)

func (a *app) registerCmd() *cobra.Command {
	var id, version string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp fleet.RegisterDeviceResponse
			err := a.call(cmd.Context(), func(ctx context.Context, dm DeviceManager) error {
				var err error
				resp, err = dm.RegisterDevice(ctx, fleet.RegisterDeviceRequest{
					DeviceID:               id,
					InitialFirmwareVersion: version,
				})
				return err
			})
			if err != nil {
				return fmt.Errorf("registering device: %w", err)
			}
			if err := a.print(cmd, registerView{DeviceID: id, Success: resp.Success, Message: resp.Message}); err != nil {
				return err
			}
			if !resp.Success {
				return errBusinessFailure
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "device ID")
	cmd.Flags().StringVar(&version, "version", defaultInitialVersion, "initial firmware version")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show a device's firmware version and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp fleet.GetDeviceInfoResponse
			err := a.call(cmd.Context(), func(ctx context.Context, dm DeviceManager) error {
				var err error
				resp, err = dm.GetDeviceInfo(ctx, fleet.GetDeviceInfoRequest{DeviceID: id})
				return err
			})
			if err != nil {
				return fmt.Errorf("getting device info: %w", err)
			}
			return a.print(cmd, newDeviceView(resp.Device))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "device ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) setStatusCmd() *cobra.Command {
	var id, statusArg string

	cmd := &cobra.Command{
		Use:   "set-status",
		Short: "Override a device's status",
		Long: `Override a device's status. Accepted values (case-insensitive):
UNKNOWN, IDLE, BUSY, OFFLINE, MAINTENANCE, UPDATING, ERROR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := device.ParseStatus(statusArg)
			if err != nil {
				return err
			}

			var resp fleet.SetDeviceStatusResponse
			err = a.call(cmd.Context(), func(ctx context.Context, dm DeviceManager) error {
				var err error
				resp, err = dm.SetDeviceStatus(ctx, fleet.SetDeviceStatusRequest{DeviceID: id, Status: status})
				return err
			})
			if err != nil {
				return fmt.Errorf("setting device status: %w", err)
			}
			if err := a.print(cmd, setStatusView{DeviceID: id, Status: string(status), Success: resp.Success}); err != nil {
				return err
			}
			if !resp.Success {
				return errBusinessFailure
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "device ID")
	cmd.Flags().StringVar(&statusArg, "status", "", "new status")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var id, actionType, params string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Start a software update on a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp fleet.InitiateDeviceActionResponse
			err := a.call(cmd.Context(), func(ctx context.Context, dm DeviceManager) error {
				var err error
				resp, err = dm.InitiateDeviceAction(ctx, fleet.InitiateDeviceActionRequest{
					DeviceID:   id,
					ActionType: action.Type(actionType),
					Parameters: params,
				})
				return err
			})
			if err != nil {
				return fmt.Errorf("starting action: %w", err)
			}
			if err := a.print(cmd, updateView{DeviceID: id, ActionID: resp.ActionID, Success: resp.Success, Message: resp.Message}); err != nil {
				return err
			}
			if !resp.Success {
				return errBusinessFailure
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "device ID")
	cmd.Flags().StringVar(&actionType, "type", string(action.TypeSoftwareUpdate), "action type")
	cmd.Flags().StringVar(&params, "params", defaultUpdateVersion, "action parameters")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) checkActionCmd() *cobra.Command {
	var actionID string

	cmd := &cobra.Command{
		Use:   "check-action",
		Short: "Show the status of an action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp fleet.GetDeviceActionStatusResponse
			err := a.call(cmd.Context(), func(ctx context.Context, dm DeviceManager) error {
				var err error
				resp, err = dm.GetDeviceActionStatus(ctx, fleet.GetDeviceActionStatusRequest{ActionID: actionID})
				return err
			})
			if err != nil {
				return fmt.Errorf("getting action status: %w", err)
			}
			return a.print(cmd, newActionView(resp))
		},
	}

	cmd.Flags().StringVar(&actionID, "action-id", "", "action ID")
	_ = cmd.MarkFlagRequired("action-id")
	return cmd
}
