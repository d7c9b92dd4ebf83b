package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dust-keeper/internal/models"
	"dust-keeper/services"
)

// VpnController handles VPN-related HTTP requests
type VpnController struct {
	vpn *services.VpnManager
}

// NewVpnController creates a new VpnController backed by the VPN manager singleton
func NewVpnController() *VpnController {
	return &VpnController{
		vpn: services.GetVpnManager(),
	}
}

// RegisterRoutes registers VPN routes on the Gin engine
func (vc *VpnController) RegisterRoutes(r *gin.Engine) {
	group := r.Group("/dust/api/v1/vpn")
	{
		group.GET("/configs", vc.ListConfigs)
		group.GET("/status", vc.GetStatus)
		group.POST("/connect", vc.Connect)
		group.POST("/disconnect", vc.Disconnect)
		group.GET("/settings", vc.GetSettings)
		group.PUT("/settings", vc.UpdateSettings)
	}
}

// ListConfigs lists discovered tunnel configuration files
//
//	@Summary		List VPN configs
//	@Description	List every tunnel definition file found in the config directory
//	@Tags			Vpn
//	@Produce		json
//	@Success		200	{array}		models.TunnelConfig		"Config list response"
//	@Failure		500	{object}	models.ErrorResponse	"Internal server error response"
//	@Router			/dust/api/v1/vpn/configs [get]
func (vc *VpnController) ListConfigs(c *gin.Context) {
	configs, err := vc.vpn.ListConfigs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if configs == nil {
		configs = []models.TunnelConfig{}
	}
	c.JSON(http.StatusOK, configs)
}

// GetStatus returns the current VPN connection status
//
//	@Summary		Get VPN status
//	@Description	Snapshot of the current connection: state, config, duration, liveness
//	@Tags			Vpn
//	@Produce		json
//	@Success		200	{object}	models.VpnStatus	"Status response"
//	@Router			/dust/api/v1/vpn/status [get]
func (vc *VpnController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, vc.vpn.GetStatus())
}

// Connect establishes a VPN connection
//
//	@Summary		Connect VPN
//	@Description	Connect using the named config, or the stored default when none is given
//	@Tags			Vpn
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.ConnectRequest	true	"Connect request parameters"
//	@Success		200		{object}	models.ConnectResult	"Connect success response"
//	@Failure		400		{object}	models.ErrorResponse	"Invalid parameter error response"
//	@Failure		502		{object}	models.ConnectResult	"Connect failure with failure class code"
//	@Router			/dust/api/v1/vpn/connect [post]
func (vc *VpnController) Connect(c *gin.Context) {
	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "Invalid request parameters",
		})
		return
	}

	result := vc.vpn.Connect(req.Config, req.Force)
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Disconnect tears down the current VPN connection
//
//	@Summary		Disconnect VPN
//	@Description	Tear down the current connection; succeeds when none exists
//	@Tags			Vpn
//	@Produce		json
//	@Success		200	{object}	models.DisconnectResult	"Disconnect response"
//	@Router			/dust/api/v1/vpn/disconnect [post]
func (vc *VpnController) Disconnect(c *gin.Context) {
	c.JSON(http.StatusOK, vc.vpn.Disconnect())
}

// GetSettings returns the persisted VPN policy settings
//
//	@Summary		Get VPN settings
//	@Tags			Vpn
//	@Produce		json
//	@Success		200	{object}	models.VpnSettings	"Settings response"
//	@Router			/dust/api/v1/vpn/settings [get]
func (vc *VpnController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, vc.vpn.GetSettings())
}

// UpdateSettings applies a partial settings update
//
//	@Summary		Update VPN settings
//	@Description	Change auto-connect and/or the default config; omitted fields keep their value
//	@Tags			Vpn
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.SettingsRequest	true	"Settings update parameters"
//	@Success		200		{object}	models.VpnSettings		"Settings after the update"
//	@Failure		400		{object}	models.ErrorResponse	"Invalid parameter error response"
//	@Failure		500		{object}	models.ErrorResponse	"Persistence error response"
//	@Router			/dust/api/v1/vpn/settings [put]
func (vc *VpnController) UpdateSettings(c *gin.Context) {
	var req models.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "Invalid request parameters",
		})
		return
	}

	settings, err := vc.vpn.UpdateSettings(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, settings)
}
