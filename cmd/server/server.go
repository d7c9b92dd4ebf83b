package server

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"dust-keeper/cmd/root"
	"dust-keeper/controllers"
	"dust-keeper/internal/config"
	"dust-keeper/internal/env"
	"dust-keeper/internal/logger"
	"dust-keeper/internal/middleware"
	"dust-keeper/services"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动HTTP服务",
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(); err != nil {
			log.Fatal(err)
		}
	},
}

func startServer() error {
	env.Daemon = true
	gin.SetMode(config.Config.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())

	// 注册API路由
	apiController := controllers.NewAPIController()
	apiController.RegisterRoutes(router)

	vpnController := controllers.NewVpnController()
	vpnController.RegisterRoutes(router)

	gameController, err := controllers.NewGameController()
	if err != nil {
		return fmt.Errorf("游戏目录数据库初始化失败: %v", err)
	}
	gameController.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 按持久化设置自动连接VPN，失败不阻塞服务启动
	go services.GetVpnManager().AutoConnectIfEnabled()

	logger.Infof("dust-keeper server listening on %s", config.Config.Server.Address)
	return router.Run(config.Config.Server.Address)
}

func init() {
	root.RootCmd.AddCommand(serverCmd)
}
