package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/discovery"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the Bluetooth adapter state",
	Long:  `Report whether the Bluetooth adapter is powered on and usable for scanning.`,
	Args:  cobra.NoArgs,
	RunE:  runState,
}

func runState(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg, "verbose")
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	radio, closeRadio, err := radioFactory(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open BLE radio: %w", err)
	}
	defer closeRadio()

	state := discovery.New(radio, logger, cfg.DiscoveryOptions()).AdapterState()

	c := color.New(color.FgRed)
	if state == device.StatePoweredOn {
		c = color.New(color.FgGreen)
	}
	if isTerminal(cmd.OutOrStdout()) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Adapter: %s\n", c.Sprint(state))
	return nil
}
