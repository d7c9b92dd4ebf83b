package game

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"dust-keeper/internal/models"
	"dust-keeper/internal/rpc"
	"dust-keeper/services"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library directory into the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		if err := scanLibrary(); err != nil {
			log.Fatal(err)
		}
	},
}

func scanLibrary() error {
	var result models.ScanResult

	client := rpc.NewClient()
	if client.Available() {
		if err := client.Post("/dust/api/v1/games/scan", nil, &result); err != nil {
			return err
		}
	} else {
		gm, err := services.GetGameManager()
		if err != nil {
			return err
		}
		r, err := gm.ScanLibrary()
		if err != nil {
			return err
		}
		result = *r
	}

	fmt.Printf("Scanned %d folders: %d added, %d updated, %d skipped\n",
		result.Scanned, result.Added, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	return nil
}

func init() {
	gameCmd.AddCommand(scanCmd)

	scanCmd.Example = `  dust-keeper game scan`
}
