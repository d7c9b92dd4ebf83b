package game

import (
	"fmt"
	"log"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/internal/utils"
	"dust-keeper/services"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List games in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listGames(); err != nil {
			log.Fatal(err)
		}
	},
}

/**
 *	Fields displayed in list format
 */
type Game_Columns struct {
	Id       int64  `json:"id"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
	WorkId   string `json:"work_id"`
	Plays    int    `json:"plays"`
}

func listGames() error {
	var games []models.Game

	client := rpc.NewClient()
	if client.Available() {
		if err := client.Get("/dust/api/v1/games", &games); err != nil {
			return err
		}
	} else {
		gm, err := services.GetGameManager()
		if err != nil {
			return err
		}
		if games, err = gm.ListGames(); err != nil {
			return err
		}
	}

	if len(games) == 0 {
		fmt.Println("No games in the catalog, run 'dust-keeper game scan' first")
		return nil
	}

	var dataList []*orderedmap.OrderedMap
	for _, game := range games {
		row := Game_Columns{}
		row.Id = game.Id
		row.Title = game.Title
		row.Platform = game.Platform
		row.WorkId = game.DlsiteId
		row.Plays = game.PlayCount

		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}

	utils.PrintFormat(dataList)
	return nil
}

func init() {
	listCmd.Flags().SortFlags = false
	gameCmd.AddCommand(listCmd)

	listCmd.Example = `  dust-keeper game list`
}
