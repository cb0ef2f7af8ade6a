package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/quiz"
	"github.com/codewriterrussian/voc-selftest/internal/speech"
	"github.com/codewriterrussian/voc-selftest/internal/store"
)

var terminalOwner = quiz.Owner{UserID: "terminal", SessionID: "default"}

// play <category>: run a quiz in the terminal.
func playCmd(a *app) *cobra.Command {
	var speak bool
	var engine, player string
	cmd := &cobra.Command{
		Use:   "play <category>",
		Short: "Take a quiz in the terminal",
		Long: `Take a quiz in the terminal.

Keys: an option letter answers, n goes to the next question, d deletes the
current question from the store, s reads the question aloud, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var speaker speech.Speaker = speech.Nop{}
			if speak {
				speaker = speech.NewCommandSpeaker(engine, player, 0)
			}
			mgr := quiz.NewManager(s, store.NewMemory(), quiz.WithSpeaker(speaker))

			if _, err := mgr.Start(ctx, terminalOwner, args[0]); err != nil {
				return err
			}
			return runPlay(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), mgr)
		},
	}
	cmd.Flags().BoolVar(&speak, "speak", false, "enable the s key (requires edge-tts and ffplay)")
	cmd.Flags().StringVar(&engine, "tts-engine", "edge-tts", "text-to-speech command")
	cmd.Flags().StringVar(&player, "tts-player", "ffplay", "audio player command")
	return cmd
}

// runPlay drives a started session from line-based input until it finishes,
// the user quits or input ends.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, mgr *quiz.Manager) error {
	lines := bufio.NewScanner(in)
	defer func() { _ = mgr.End(ctx, terminalOwner) }()

	for {
		session, err := mgr.Current(ctx, terminalOwner)
		if err != nil {
			return err
		}
		view := quiz.NewView(session)
		if view.Finished {
			fmt.Fprintf(out, "\nFinished: %d of %d answered correctly.\n", view.Progress.Correct, view.Progress.Answered)
			return nil
		}
		printQuestion(out, view)

		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			return lines.Err()
		}
		input := strings.TrimSpace(lines.Text())

		switch input {
		case "q":
			return nil
		case "n":
			if _, err := mgr.Next(ctx, terminalOwner); err != nil {
				return err
			}
		case "s":
			if err := mgr.Speak(ctx, terminalOwner, quiz.TargetQuestion, ""); err != nil {
				return err
			}
		case "d":
			fmt.Fprint(out, "Delete this question from the store? [y/N] ")
			if !lines.Scan() {
				return lines.Err()
			}
			if !strings.EqualFold(strings.TrimSpace(lines.Text()), "y") {
				continue
			}
			if _, _, err := mgr.DeleteCurrent(ctx, terminalOwner); err != nil {
				return err
			}
			fmt.Fprintln(out, "Deleted.")
		default:
			letter, ok := matchLetter(view, input)
			if !ok {
				fmt.Fprintln(out, "Type an option letter, n, d, s or q.")
				continue
			}
			res, _, err := mgr.SubmitAnswer(ctx, terminalOwner, letter)
			if errors.Is(err, domain.ErrSessionFinished) {
				continue
			}
			if err != nil {
				return err
			}
			printResult(out, res)
		}
	}
}

func matchLetter(view quiz.View, input string) (string, bool) {
	for _, c := range view.Options {
		if c.Letter == input {
			return c.Letter, true
		}
	}
	for _, c := range view.Options {
		if strings.EqualFold(c.Letter, input) {
			return c.Letter, true
		}
	}
	return "", false
}

func printQuestion(out io.Writer, v quiz.View) {
	fmt.Fprintf(out, "\n[%s %d/%d] %s\n", v.Category, v.Progress.Index+1, v.Progress.Total, v.Question)
	for _, c := range v.Options {
		fmt.Fprintf(out, "  %s) %s\n", c.Letter, c.Text)
	}
}

func printResult(out io.Writer, res domain.AnswerResult) {
	if res.Correct {
		fmt.Fprintln(out, "Correct!")
	} else {
		fmt.Fprintf(out, "Wrong, the answer is %s.\n", res.CorrectAnswer)
	}
	if res.Explanation != "" {
		fmt.Fprintln(out, res.Explanation)
	}
}
