package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/workgate/pkg/client"
	"github.com/psantana5/workgate/pkg/models"
)

var (
	// Window add flags
	addOpen        int
	addClose       int
	addDescription string
)

// windowsCmd represents the windows command
var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Manage availability windows",
	Long:  `Commands for listing, creating, and removing availability windows on a workgate server.`,
}

// windowsListCmd represents the windows list command
var windowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows",
	Long:  `List all availability windows configured on the server.`,
	RunE:  runWindowsList,
}

// windowsAddCmd represents the windows add command
var windowsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a window",
	Long: `Create an availability window, or update an existing one with the same
name. Bounds are compact HHMM values and both are exclusive.`,
	Args: cobra.ExactArgs(1),
	RunE: runWindowsAdd,
}

// windowsRemoveCmd represents the windows remove command
var windowsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a window",
	Long:  `Remove an availability window from the server.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWindowsRemove,
}

func init() {
	rootCmd.AddCommand(windowsCmd)
	windowsCmd.AddCommand(windowsListCmd)
	windowsCmd.AddCommand(windowsAddCmd)
	windowsCmd.AddCommand(windowsRemoveCmd)

	windowsAddCmd.Flags().IntVar(&addOpen, "open", 1100, "open bound (exclusive)")
	windowsAddCmd.Flags().IntVar(&addClose, "close", 2100, "close bound (exclusive)")
	windowsAddCmd.Flags().StringVar(&addDescription, "description", "", "window description")
}

func runWindowsList(cmd *cobra.Command, args []string) error {
	c := client.New(GetServerURL(), GetAPIKey())

	windows, err := c.ListWindows(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(windows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Open", "Close", "Description", "Updated")

	for _, w := range windows {
		description := w.Description
		if description == "" {
			description = "-"
		}
		table.Append(
			w.Name,
			formatCompactTime(w.Open),
			formatCompactTime(w.Close),
			description,
			w.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	table.Render()
	fmt.Printf("\nTotal windows: %d\n", len(windows))
	return nil
}

func runWindowsAdd(cmd *cobra.Command, args []string) error {
	c := client.New(GetServerURL(), GetAPIKey())

	w := &models.Window{
		Name:        args[0],
		Open:        addOpen,
		Close:       addClose,
		Description: addDescription,
	}
	if err := c.SaveWindow(context.Background(), w); err != nil {
		return fmt.Errorf("failed to save window: %w", err)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	table.Append("Name", w.Name)
	table.Append("Open", formatCompactTime(w.Open))
	table.Append("Close", formatCompactTime(w.Close))
	if w.Description != "" {
		table.Append("Description", w.Description)
	}
	table.Render()

	fmt.Printf("\nWindow %q saved\n", w.Name)
	return nil
}

func runWindowsRemove(cmd *cobra.Command, args []string) error {
	c := client.New(GetServerURL(), GetAPIKey())

	if err := c.DeleteWindow(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove window: %w", err)
	}

	fmt.Printf("Window %q removed\n", args[0])
	return nil
}

// formatCompactTime renders a compact HHMM value as HH:MM for display.
// Values outside the usual range are shown as-is.
func formatCompactTime(t int) string {
	if t < 0 || t > 2359 {
		return fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf("%02d:%02d", t/100, t%100)
}
