package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/ui"
)

const (
	shellPrompt       = ":: "
	shellContinuation = ".. "
	shellHistorySize  = 20
)

var stdinIsTerminal = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell (default)",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	sh := &shell{
		sess:        sess,
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: stdinIsTerminal(),
	}
	return sh.run(context.Background())
}

type shell struct {
	sess        *session
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
}

type shellAction int

const (
	actionNone shellAction = iota
	actionExit
	actionHistory
	actionHelp
)

// shellCommand recognises the non-statement inputs. Commands only apply at
// the start of a statement.
func shellCommand(line string) shellAction {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(line), "/")) {
	case "exit", "quit":
		return actionExit
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/history":
		return actionHistory
	case "/help":
		return actionHelp
	}
	return actionNone
}

// run reads statements until EOF or exit. A statement may span lines and
// runs once a line ends with a semicolon. Failed statements are reported and
// the loop continues.
func (sh *shell) run(ctx context.Context) error {
	if sh.interactive {
		fmt.Fprintln(sh.errOut, ui.Hint("Type a statement ending with ';', /help for the syntax, exit to leave."))
	}

	scanner := bufio.NewScanner(sh.in)
	var pending strings.Builder
	for {
		sh.prompt(pending.Len() > 0)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if pending.Len() == 0 {
			switch shellCommand(line) {
			case actionExit:
				return nil
			case actionHistory:
				sh.printHistory()
				continue
			case actionHelp:
				if err := renderDocsTopic(sh.out, "query"); err != nil {
					fmt.Fprintln(sh.errOut, ui.Error(err.Error()))
				}
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		if !strings.HasSuffix(strings.TrimSpace(line), ";") {
			continue
		}

		sh.execute(ctx, pending.String())
		pending.Reset()
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		sh.execute(ctx, rest)
	}
	return nil
}

func (sh *shell) prompt(continuation bool) {
	if !sh.interactive {
		return
	}
	p := shellPrompt
	if continuation {
		p = shellContinuation
	}
	fmt.Fprint(sh.out, ui.AccentBold.Render(p))
}

// execute runs one statement. Ctrl-C cancels the statement, not the shell.
func (sh *shell) execute(parent context.Context, statement string) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	start := time.Now()
	job, err := executeStatement(ctx, sh.sess, statement)
	if err != nil {
		reportStatementError(sh.errOut, job, err)
		return
	}
	if err := writeResult(sh.out, resultFormat(), job.Result, time.Since(start), sh.sess.takeWarnings()); err != nil {
		fmt.Fprintln(sh.errOut, ui.Error(err.Error()))
	}
}

func (sh *shell) printHistory() {
	entries, err := sh.sess.store.History(shellHistorySize)
	if err != nil {
		fmt.Fprintln(sh.errOut, ui.Error(err.Error()))
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, ui.Hint("No statements yet."))
		return
	}
	// Oldest first, so the latest ends up next to the prompt.
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintln(sh.out, formatHistoryEntry(entries[i]))
	}
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
