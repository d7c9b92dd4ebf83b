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
	settingsAutoConnect string
	settingsDefault     string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change VPN settings",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSettings(); err != nil {
			log.Fatal(err)
		}
	},
}

func runSettings() error {
	req := models.SettingsRequest{}
	changed := false
	switch settingsAutoConnect {
	case "":
	case "on":
		v := true
		req.AutoConnectEnabled = &v
		changed = true
	case "off":
		v := false
		req.AutoConnectEnabled = &v
		changed = true
	default:
		return fmt.Errorf("--auto-connect must be 'on' or 'off'")
	}
	if settingsDefault != "" {
		req.DefaultConfigId = &settingsDefault
		changed = true
	}

	var settings models.VpnSettings
	client := rpc.NewClient()
	if changed {
		if client.Available() {
			if err := client.Put("/dust/api/v1/vpn/settings", req, &settings); err != nil {
				return err
			}
		} else {
			var err error
			settings, err = services.GetVpnManager().UpdateSettings(req)
			if err != nil {
				return err
			}
		}
	} else {
		if client.Available() {
			if err := client.Get("/dust/api/v1/vpn/settings", &settings); err != nil {
				return err
			}
		} else {
			settings = services.GetVpnManager().GetSettings()
		}
	}

	fmt.Printf("AutoConnect:   %t\n", settings.AutoConnectEnabled)
	fmt.Printf("DefaultConfig: %s\n", settings.DefaultConfigId)
	return nil
}

func init() {
	settingsCmd.Flags().SortFlags = false
	settingsCmd.Flags().StringVar(&settingsAutoConnect, "auto-connect", "", "Enable/disable auto-connect at server start (on/off)")
	settingsCmd.Flags().StringVar(&settingsDefault, "default", "", "Set the default config id")
	vpnCmd.AddCommand(settingsCmd)

	settingsCmd.Example = `  dust-keeper vpn settings --auto-connect on --default my-vpn`
}
