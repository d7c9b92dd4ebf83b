package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dust-keeper/internal/models"
	"dust-keeper/services"
)

// GameController handles game-library HTTP requests
type GameController struct {
	games *services.GameManager
}

// NewGameController creates a new GameController backed by the game manager singleton
func NewGameController() (*GameController, error) {
	gm, err := services.GetGameManager()
	if err != nil {
		return nil, err
	}
	return &GameController{games: gm}, nil
}

// RegisterRoutes registers game routes on the Gin engine
func (gc *GameController) RegisterRoutes(r *gin.Engine) {
	group := r.Group("/dust/api/v1/games")
	{
		group.GET("", gc.ListGames)
		group.POST("", gc.AddGame)
		group.GET("/:id", gc.GetGame)
		group.PUT("/:id", gc.UpdateGame)
		group.DELETE("/:id", gc.DeleteGame)
		group.POST("/:id/launch", gc.LaunchGame)
		group.POST("/scan", gc.ScanLibrary)
		group.GET("/metadata/:workId", gc.LookupMetadata)
	}
}

func gameIdParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "Invalid game id",
		})
		return 0, false
	}
	return id, true
}

// ListGames lists the game catalog
//
//	@Summary		List games
//	@Tags			Games
//	@Produce		json
//	@Success		200	{array}		models.Game				"Game list response"
//	@Failure		500	{object}	models.ErrorResponse	"Internal server error response"
//	@Router			/dust/api/v1/games [get]
func (gc *GameController) ListGames(c *gin.Context) {
	games, err := gc.games.ListGames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if games == nil {
		games = []models.Game{}
	}
	c.JSON(http.StatusOK, games)
}

// AddGame registers a game folder manually
//
//	@Summary		Add game
//	@Description	Register an existing folder in the catalog without a full scan
//	@Tags			Games
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Game				true	"Game entry, folder is required"
//	@Success		200		{object}	models.Game				"Created game response"
//	@Failure		400		{object}	models.ErrorResponse	"Invalid parameter error response"
//	@Failure		500		{object}	models.ErrorResponse	"Persistence error response"
//	@Router			/dust/api/v1/games [post]
func (gc *GameController) AddGame(c *gin.Context) {
	var game models.Game
	if err := c.ShouldBindJSON(&game); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "Invalid request parameters",
		})
		return
	}
	if game.Folder == "" {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "folder is required",
		})
		return
	}
	if err := gc.games.AddGame(&game); err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, game)
}

// GetGame returns one catalog entry
//
//	@Summary		Get game
//	@Tags			Games
//	@Produce		json
//	@Param			id	path		int						true	"Game id"
//	@Success		200	{object}	models.Game				"Game details response"
//	@Failure		404	{object}	models.ErrorResponse	"Game not found error response"
//	@Router			/dust/api/v1/games/{id} [get]
func (gc *GameController) GetGame(c *gin.Context) {
	id, ok := gameIdParam(c)
	if !ok {
		return
	}
	game, err := gc.games.GetGame(id)
	if err != nil {
		c.JSON(http.StatusNotFound, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, game)
}

// UpdateGame edits a catalog entry and syncs its manifest
//
//	@Summary		Update game
//	@Tags			Games
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Game id"
//	@Param			body	body		models.Game				true	"Game fields to store"
//	@Success		200		{object}	models.Game				"Updated game response"
//	@Failure		400		{object}	models.ErrorResponse	"Invalid parameter error response"
//	@Failure		500		{object}	models.ErrorResponse	"Persistence error response"
//	@Router			/dust/api/v1/games/{id} [put]
func (gc *GameController) UpdateGame(c *gin.Context) {
	id, ok := gameIdParam(c)
	if !ok {
		return
	}
	var game models.Game
	if err := c.ShouldBindJSON(&game); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "Invalid request parameters",
		})
		return
	}
	game.Id = id
	if err := gc.games.UpdateGame(&game); err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, game)
}

// DeleteGame removes a catalog entry, leaving files on disk
//
//	@Summary		Delete game
//	@Tags			Games
//	@Produce		json
//	@Param			id	path		int						true	"Game id"
//	@Success		200	{object}	map[string]interface{}	"Delete success response"
//	@Failure		404	{object}	models.ErrorResponse	"Game not found error response"
//	@Router			/dust/api/v1/games/{id} [delete]
func (gc *GameController) DeleteGame(c *gin.Context) {
	id, ok := gameIdParam(c)
	if !ok {
		return
	}
	if err := gc.games.DeleteGame(id); err != nil {
		c.JSON(http.StatusNotFound, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// LaunchGame starts the game's executable
//
//	@Summary		Launch game
//	@Tags			Games
//	@Produce		json
//	@Param			id	path		int						true	"Game id"
//	@Success		200	{object}	models.LaunchResult		"Launch result response"
//	@Failure		500	{object}	models.LaunchResult		"Launch failure response"
//	@Router			/dust/api/v1/games/{id}/launch [post]
func (gc *GameController) LaunchGame(c *gin.Context) {
	id, ok := gameIdParam(c)
	if !ok {
		return
	}
	result := gc.games.Launch(id)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScanLibrary reconciles the catalog with the library directory
//
//	@Summary		Scan library
//	@Description	Merge every game folder into the catalog and drop vanished entries
//	@Tags			Games
//	@Produce		json
//	@Success		200	{object}	models.ScanResult		"Scan statistics response"
//	@Failure		500	{object}	models.ErrorResponse	"Scan error response"
//	@Router			/dust/api/v1/games/scan [post]
func (gc *GameController) ScanLibrary(c *gin.Context) {
	result, err := gc.games.ScanLibrary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// LookupMetadata fetches work info from the metadata provider
//
//	@Summary		Lookup metadata
//	@Tags			Games
//	@Produce		json
//	@Param			workId	path		string					true	"Provider work id (e.g. RJ123456)"
//	@Success		200		{object}	models.GameInfo			"Work info response"
//	@Failure		502		{object}	models.ErrorResponse	"Provider lookup error response"
//	@Router			/dust/api/v1/games/metadata/{workId} [get]
func (gc *GameController) LookupMetadata(c *gin.Context) {
	info, err := services.GetMetadataClient().FetchWork(c.Param("workId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, info)
}
