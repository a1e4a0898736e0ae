package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously run statements",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	if historyClear {
		if err := sess.store.ClearHistory(); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]bool{"cleared": true}, nil)
			return nil
		}
		fmt.Println(ui.Success("History cleared."))
		return nil
	}

	entries, err := sess.store.History(historyLimit)
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	if isJSONOutput() {
		if entries == nil {
			entries = []store.HistoryEntry{}
		}
		outputSuccess(entries, &Meta{Count: len(entries)})
		return nil
	}

	if len(entries) == 0 {
		fmt.Println(ui.Hint("No statements yet."))
		return nil
	}
	for _, e := range entries {
		fmt.Println(formatHistoryEntry(e))
	}
	return nil
}

// formatHistoryEntry renders "2006-01-02 15:04  ✓ 12 rows  SELECT ...".
func formatHistoryEntry(e store.HistoryEntry) string {
	outcome := ui.Success(ui.Plural(e.RowCount, "row"))
	if e.Code != "" {
		outcome = ui.Error(e.Code)
	}
	statement := strings.Join(strings.Fields(e.Statement), " ")
	return fmt.Sprintf("%s  %s  %s", ui.Hint(e.RanAt.Local().Format("2006-01-02 15:04")), outcome, statement)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all recorded statements")
	rootCmd.AddCommand(historyCmd)
}
