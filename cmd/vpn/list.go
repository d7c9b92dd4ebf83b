package vpn

import (
	"fmt"
	"log"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"

	"dust-keeper/internal/utils"
	"dust-keeper/services"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List VPN configuration files",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listConfigs(); err != nil {
			log.Fatal(err)
		}
	},
}

/**
 *	Fields displayed in list format
 */
type Config_Columns struct {
	Id       string `json:"id"`
	Remote   string `json:"remote"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	Error    string `json:"error"`
}

func listConfigs() error {
	configs, err := services.GetVpnManager().ListConfigs()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Println("No VPN configuration files found")
		return nil
	}

	var dataList []*orderedmap.OrderedMap
	for _, cfg := range configs {
		row := Config_Columns{}
		row.Id = cfg.Id
		row.Remote = cfg.RemoteHost
		row.Port = cfg.RemotePort
		row.Protocol = cfg.Protocol
		row.Error = cfg.ParseError

		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}

	utils.PrintFormat(dataList)
	printDefault()
	return nil
}

func printDefault() {
	settings := services.GetVpnManager().GetSettings()
	if settings.DefaultConfigId != "" {
		fmt.Printf("\nDefault config: %s\n", settings.DefaultConfigId)
	}
}

func init() {
	listCmd.Flags().SortFlags = false
	vpnCmd.AddCommand(listCmd)

	listCmd.Example = `  dust-keeper vpn list`
}
