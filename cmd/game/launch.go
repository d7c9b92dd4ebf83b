package game

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/services"
)

var launchCmd = &cobra.Command{
	Use:   "launch <id>",
	Short: "Launch a game by catalog id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := launchGame(args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

func launchGame(arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id: %s", arg)
	}

	var result models.LaunchResult

	client := rpc.NewClient()
	if client.Available() {
		if err := client.Post(fmt.Sprintf("/dust/api/v1/games/%d/launch", id), nil, &result); err != nil {
			return err
		}
	} else {
		gm, err := services.GetGameManager()
		if err != nil {
			return err
		}
		result = *gm.Launch(id)
	}

	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	fmt.Printf("%s (PID: %d)\n", result.Message, result.Pid)
	return nil
}

func init() {
	gameCmd.AddCommand(launchCmd)

	launchCmd.Example = `  dust-keeper game launch 3`
}
