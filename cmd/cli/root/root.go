package root

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/ycwei/img2md/cmd/cli/config"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "img2md",
	Short: "img2md note service CLI",
	Long:  "Command line interface for interacting with the img2md note conversion API",
}

func init() {
	RootCmd.AddCommand(statusCmd())
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}

// statusCmd checks whether the API and its database are reachable.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check API and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/ready")
			if err != nil {
				return fmt.Errorf("API unreachable: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API not ready (status %d)", resp.StatusCode)
			}
			fmt.Println("API and database are ready.")
			return nil
		},
	}
}
