package game

import (
	"dust-keeper/cmd/root"

	"github.com/spf13/cobra"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage the game library",
	Long:  `The 'game' command group lists, scans and launches games in the library`,
}

func init() {
	root.RootCmd.AddCommand(gameCmd)
}
