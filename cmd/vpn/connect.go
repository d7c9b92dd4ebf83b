package vpn

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/services"
)

var (
	connectConfig string
	connectForce  bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Establish the VPN connection",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConnect(); err != nil {
			log.Fatal(err)
		}
	},
}

/**
 * Establish a VPN connection, preferring a running server
 * @returns {error} Returns error if the connect attempt fails
 * @description
 * - When the dust-keeper server is up the request goes through its API so
 *   the session lives in the server process and stays monitored
 * - Without a server the connection is established locally; it ends when
 *   this process exits
 */
func runConnect() error {
	req := models.ConnectRequest{Config: connectConfig, Force: connectForce}

	client := rpc.NewClient()
	if client.Available() {
		var result models.ConnectResult
		if err := client.Post("/dust/api/v1/vpn/connect", req, &result); err != nil {
			return err
		}
		printConnectResult(&result)
		return nil
	}

	fmt.Println("No running server found, connecting in this process (connection ends with it)")
	result := services.GetVpnManager().Connect(connectConfig, connectForce)
	printConnectResult(result)
	if !result.Success {
		return fmt.Errorf("connect failed")
	}
	// 本地模式下保持进程存活，连接随进程退出而断开
	select {}
}

func printConnectResult(result *models.ConnectResult) {
	if result.Success {
		if result.AlreadyConnected {
			fmt.Printf("Already connected to %s\n", result.ConfigId)
		} else {
			fmt.Printf("Connected to %s\n", result.ConfigId)
		}
		return
	}
	fmt.Printf("Connect failed: %s", result.Message)
	if result.Code != "" {
		fmt.Printf(" (%s)", result.Code)
	}
	fmt.Println()
}

func init() {
	connectCmd.Flags().SortFlags = false
	connectCmd.Flags().StringVarP(&connectConfig, "config", "c", "", "Config id or filename (default: stored default config)")
	connectCmd.Flags().BoolVarP(&connectForce, "force", "f", false, "Reconnect even if already connected")
	vpnCmd.AddCommand(connectCmd)

	connectCmd.Example = `  dust-keeper vpn connect --config my-vpn`
}
