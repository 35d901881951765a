package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/workgate/pkg/client"
)

var decisionsLimit int

// decisionsCmd represents the decisions command
var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Show recent gate decisions",
	Long:  `List recent gate decisions recorded by the server, newest first.`,
	RunE:  runDecisions,
}

func init() {
	rootCmd.AddCommand(decisionsCmd)

	decisionsCmd.Flags().IntVar(&decisionsLimit, "limit", 20, "maximum number of decisions to show")
}

func runDecisions(cmd *cobra.Command, args []string) error {
	c := client.New(GetServerURL(), GetAPIKey())

	decisions, err := c.ListDecisions(context.Background(), decisionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list decisions: %w", err)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(decisions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Time", "Window", "Result", "Source", "Checked At")

	for _, d := range decisions {
		result := "denied"
		if d.Allowed {
			result = "allowed"
		}
		table.Append(
			formatCompactTime(d.Time),
			d.Window,
			result,
			d.Source,
			d.CheckedAt.Format("2006-01-02 15:04:05"),
		)
	}

	table.Render()
	fmt.Printf("\nTotal decisions shown: %d\n", len(decisions))
	return nil
}
