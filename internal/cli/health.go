package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up with its artifacts loaded",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	if err := NewClient().Health(); err != nil {
		if jsonOut {
			fmt.Printf(`{"status":"error","error":%q}`+"\n", err.Error())
		}
		return err
	}

	if jsonOut {
		fmt.Println(`{"status":"ok"}`)
	} else {
		fmt.Println("Server is healthy")
	}
	return nil
}
