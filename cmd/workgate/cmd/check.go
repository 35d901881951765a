package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/psantana5/workgate/pkg/client"
	"github.com/psantana5/workgate/pkg/clock"
	"github.com/psantana5/workgate/pkg/gate"
	"github.com/psantana5/workgate/pkg/models"
)

// defaultCheckTime is the literal the shipped invocation uses when no time
// argument is given
const defaultCheckTime = 2000

var (
	checkWindow string
	checkRemote bool
	checkNow    bool
	checkOpen   int
	checkClose  int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [time]",
	Short: "Gate the sample operation on an availability window",
	Long: `Evaluate a compact HHMM time value (2000 means 20:00) against an
availability window and run the sample operation when it is inside. With no
argument the shipped literal 2000 is used; with --now the current clock time
is used. Any integer is accepted: values are compared numerically and never
range-validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkWindow, "window", "", "named window on the server (implies --remote)")
	checkCmd.Flags().BoolVar(&checkRemote, "remote", false, "run the check through a workgate server")
	checkCmd.Flags().BoolVar(&checkNow, "now", false, "use the current clock time instead of an argument")
	checkCmd.Flags().IntVar(&checkOpen, "open", 1100, "window open bound for local checks (exclusive)")
	checkCmd.Flags().IntVar(&checkClose, "close", 2100, "window close bound for local checks (exclusive)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	var timeOfDay *int

	switch {
	case checkNow:
		// Resolved by the server clock in remote mode
		if !checkRemote && checkWindow == "" {
			now := clock.SystemClock{}.Now()
			timeOfDay = &now
		}
	case len(args) == 1:
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("time must be an integer: %q", args[0])
		}
		timeOfDay = &parsed
	default:
		t := defaultCheckTime
		timeOfDay = &t
	}

	if checkRemote || checkWindow != "" {
		return runCheckRemote(timeOfDay)
	}
	return runCheckLocal(*timeOfDay)
}

// runCheckLocal evaluates the gate in-process and emits the core output lines
func runCheckLocal(timeOfDay int) error {
	window := models.DefaultWindow()
	window.Open = checkOpen
	window.Close = checkClose

	g := gate.New(window)
	g.Wrap(gate.AtWork(os.Stdout))(timeOfDay)
	return nil
}

// runCheckRemote routes the check through a workgate server
func runCheckRemote(timeOfDay *int) error {
	c := client.New(GetServerURL(), GetAPIKey())

	resp, err := c.Check(context.Background(), timeOfDay, checkWindow)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}
	fmt.Println(resp.Message)
	return nil
}
