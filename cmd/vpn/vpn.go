package vpn

import (
	"dust-keeper/cmd/root"

	"github.com/spf13/cobra"
)

var vpnCmd = &cobra.Command{
	Use:   "vpn",
	Short: "Manage the VPN tunnel connection",
	Long:  `The 'vpn' command group connects, disconnects and inspects the VPN tunnel used for downloads`,
}

func init() {
	root.RootCmd.AddCommand(vpnCmd)
}
