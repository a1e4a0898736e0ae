package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <statement>",
	Short: "Run one statement and print its result",
	Long: `Run one statement and print its result.

The trailing semicolon is optional here. Quote the statement so your shell
passes it as one argument:

  spotql query 'SELECT name, popularity FROM PLAYLIST(Gym) WHERE popularity > 60'
  spotql query 'SELECT AVERAGE(popularity) FROM ALBUMS' --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	statement := terminate(strings.Join(args, " "))

	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	job, err := executeStatement(ctx, sess, statement)
	if err != nil {
		reportStatementError(os.Stderr, job, err)
		if jsonOutput {
			return nil
		}
		return errReported
	}

	return writeResult(os.Stdout, resultFormat(), job.Result, time.Since(start), sess.takeWarnings())
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
