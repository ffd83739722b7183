package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"photolister/internal/client"
	"photolister/pkg/logger"
)

var (
	serverURL string
	token     string
	orderSpec string
)

var rootCmd = &cobra.Command{
	Use:   "lister <photo>...",
	Short: "Compress local photos, upload them and create a marketplace listing",
	Long: `lister selects up to 20 local photos, compresses each one to a
1600px-bounded JPEG, uploads them in order and triggers the listing
webhook with the resulting image URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the lister API")
	rootCmd.Flags().StringVar(&token, "token", os.Getenv("APP_TOKEN"), "shared secret token")
	rootCmd.Flags().StringVar(&orderSpec, "order", "", "comma separated 1-based positions, e.g. 3,1,2")
	rootCmd.SilenceUsage = true
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	log, err := logger.New("")
	if err != nil {
		return err
	}
	defer log.Sync()

	sel, err := client.NewSelection(log)
	if err != nil {
		return fmt.Errorf("prepare selection: %w", err)
	}
	defer sel.Clear()

	sel.Add(args...)
	if sel.Len() == 0 {
		return fmt.Errorf("none of the given files is a usable image")
	}

	if orderSpec != "" {
		if err := applyOrder(sel, orderSpec); err != nil {
			return err
		}
	}

	orch := client.NewOrchestrator(serverURL, token, log)
	orch.Status = func(message string) {
		fmt.Fprintln(cmd.OutOrStdout(), message)
	}

	outcome, err := orch.UploadAll(cmd.Context(), sel)
	if err != nil {
		return err
	}

	for i, url := range outcome.URLs {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, url)
	}

	pretty, err := json.MarshalIndent(outcome.Listing, "", "  ")
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	}
	return nil
}

// applyOrder rearranges the selection to match the given permutation of its
// current positions.
func applyOrder(sel *client.Selection, order string) error {
	items := sel.Items()

	fields := strings.Split(order, ",")
	if len(fields) != len(items) {
		return fmt.Errorf("--order must list all %d positions", len(items))
	}

	want := make([]string, len(fields))
	seen := make(map[int]bool, len(fields))
	for i, field := range fields {
		pos, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || pos < 1 || pos > len(items) || seen[pos] {
			return fmt.Errorf("--order entry %q is not a valid position", field)
		}
		seen[pos] = true
		want[i] = items[pos-1].ID
	}

	for dest, id := range want {
		current := sel.Items()
		if current[dest].ID != id {
			sel.Reorder(id, current[dest].ID)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
