package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"welearn/internal/domain"
	"welearn/internal/learner"
	"welearn/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const playHelp = `Commands:
  start   unlock the question and start the timer
  show    reveal the answer (costs %d coins)
  quit    leave the quiz
Anything else is submitted as your answer.
`

func newPlayCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "play <quizId>",
		Short: "Play a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			dash := learner.NewDashboard(a.api, a.store, a.log)
			if err := dash.Load(ctx); err != nil {
				return err
			}
			quiz, ok := dash.Quiz(args[0])
			if !ok {
				return domain.NewQuizNotFoundError(args[0])
			}

			// Coins earned or spent in another session show up here.
			if err := a.store.Watch(ctx); err != nil {
				a.log.Warn("Identity change feed unavailable", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			var confirmer session.Confirmer = session.AlwaysConfirm
			if !yes {
				confirmer = session.ConfirmFunc(func(_ context.Context, q string) bool {
					return a.prompt(out, q)
				})
			}
			m := session.NewMachine(a.api, a.api, a.store,
				session.WithConfirmer(confirmer),
				session.WithLogger(a.log),
				session.WithRevealCost(a.cfg.Game.RevealCost),
			)
			defer m.Close()

			m.SelectQuiz(quiz)
			return a.playLoop(ctx, out, m)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

func (a *app) playLoop(ctx context.Context, out io.Writer, m *session.Machine) error {
	quiz := m.Snapshot().Quiz
	fmt.Fprintf(out, "%s [%s, %s]\n%s\n", quiz.Title, quiz.Category, quiz.Difficulty, quiz.Instruction)
	if a.store.Identity().HasCompleted(quiz.ID) {
		fmt.Fprintln(out, "You already completed this quiz. No coins will be awarded this time.")
	}
	fmt.Fprintf(out, playHelp, m.RevealCost())

	for {
		fmt.Fprint(out, "> ")
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)

		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "start":
			if err := m.Start(); err != nil {
				fmt.Fprintln(out, userMessage(err))
				continue
			}
			fmt.Fprintln(out, quiz.Question)
		case "show":
			err := m.ShowAnswer(ctx)
			switch {
			case errors.Is(err, session.ErrDeclined):
				continue
			case err != nil:
				fmt.Fprintln(out, userMessage(err))
				continue
			}
			snap := m.Snapshot()
			fmt.Fprintf(out, "Answer: %s\nBalance: %d coins\n", snap.Answer, a.store.Identity().Coins)
		default:
			m.SetAnswer(input)
			res, err := m.SubmitAnswer(ctx, input)
			if errors.Is(err, session.ErrDeclined) {
				continue
			}
			if err != nil {
				fmt.Fprintln(out, userMessage(err))
				continue
			}
			if !res.Correct {
				fmt.Fprintf(out, "Not quite. Keep trying! (%ds)\n", res.Elapsed)
				continue
			}
			fmt.Fprintf(out, "Correct! Solved in %ds.\n", res.Elapsed)
			switch {
			case res.AlreadyCompleted || res.Credited == 0:
				fmt.Fprintln(out, "Quiz already completed, no coins awarded.")
			default:
				fmt.Fprintf(out, "+%d coins. Balance: %d coins\n", res.Credited, a.store.Identity().Coins)
			}
			return nil
		}
	}
}
