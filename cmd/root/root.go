package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "dust-keeper",
	Short: "个人游戏库管理器",
	Long:  `dust-keeper管理本地游戏库的目录、元数据和启动，并监管游戏下载所需的VPN隧道连接`,
}
