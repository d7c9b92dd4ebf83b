package vpn

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/services"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the VPN connection status",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(); err != nil {
			log.Fatal(err)
		}
	},
}

/**
 * Show connection status, preferring a running server
 * @returns {error} Returns error if the status query fails
 * @description
 * - The live session exists in the server process, so the server's view
 *   is authoritative; the local fallback can only report "disconnected"
 */
func runStatus() error {
	var status models.VpnStatus

	client := rpc.NewClient()
	if client.Available() {
		if err := client.Get("/dust/api/v1/vpn/status", &status); err != nil {
			return err
		}
	} else {
		status = services.GetVpnManager().GetStatus()
	}

	fmt.Printf("State:       %s\n", status.State)
	if status.ConfigId != "" {
		fmt.Printf("Config:      %s\n", status.ConfigId)
	}
	if status.Connected {
		fmt.Printf("Duration:    %ds\n", status.DurationSeconds)
		fmt.Printf("Process:     alive=%t\n", status.ProcessAlive)
		fmt.Printf("Management:  reachable=%t\n", status.ManagementReachable)
	}
	fmt.Printf("AutoConnect: %t\n", status.AutoConnectEnabled)
	return nil
}

func init() {
	vpnCmd.AddCommand(statusCmd)

	statusCmd.Example = `  dust-keeper vpn status`
}
