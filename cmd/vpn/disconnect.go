package vpn

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/services"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Tear down the VPN connection",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDisconnect(); err != nil {
			log.Fatal(err)
		}
	},
}

func runDisconnect() error {
	client := rpc.NewClient()
	if client.Available() {
		var result models.DisconnectResult
		if err := client.Post("/dust/api/v1/vpn/disconnect", nil, &result); err != nil {
			return err
		}
		printDisconnectResult(&result)
		return nil
	}

	result := services.GetVpnManager().Disconnect()
	printDisconnectResult(result)
	return nil
}

func printDisconnectResult(result *models.DisconnectResult) {
	if result.AlreadyDisconnected {
		fmt.Println("Not connected")
		return
	}
	fmt.Println(result.Message)
}

func init() {
	vpnCmd.AddCommand(disconnectCmd)

	disconnectCmd.Example = `  dust-keeper vpn disconnect`
}
