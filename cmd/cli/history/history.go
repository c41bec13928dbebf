package history

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/ycwei/img2md/cmd/cli/config"
	"github.com/ycwei/img2md/cmd/cli/output"
	"github.com/ycwei/img2md/internal/models"
)

const previewLen = 60

// ==========================
// CLI Command Init
// ==========================

// InitHistory registers conversion-history commands on the root command.
func InitHistory(rootCmd *cobra.Command) {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage conversion history",
	}

	historyCmd.AddCommand(
		listHistoryCmd(),
		deleteHistoryCmd(),
	)

	rootCmd.AddCommand(historyCmd)
}

// ==========================
// LIST
// ==========================
func listHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your conversion history",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/history", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				fmt.Println("API error:", string(b))
				return
			}

			var histories []models.History
			if err := json.NewDecoder(resp.Body).Decode(&histories); err != nil {
				fmt.Println(err)
				return
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				b, _ := json.MarshalIndent(histories, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(histories))
			for _, h := range histories {
				image := ""
				if h.ImageURL != nil {
					image = *h.ImageURL
				}
				rows = append(rows, []interface{}{
					h.ID,
					h.Status,
					image,
					h.CreatedAt.Format("2006-01-02 15:04"),
					preview(h.MarkdownContent),
				})
			}

			output.RenderTable([]string{"ID", "Status", "Image", "Created", "Content"}, rows)
		},
	}

	cmd.Flags().Bool("json", false, "output raw JSON instead of a table")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a history record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/history/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Println("History deleted")
			} else {
				b, _ := io.ReadAll(resp.Body)
				fmt.Println("Failed to delete history:", string(b))
			}
		},
	}
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLen {
		return s
	}
	return string(runes[:previewLen]) + "..."
}
