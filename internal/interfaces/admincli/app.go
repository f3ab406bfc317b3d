package admincli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/prediction-league/internal/app"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// ContainerFactory builds the service container on first use so --help never
// touches the store.
type ContainerFactory func(ctx context.Context) (*app.Container, error)

type Runner struct {
	build     ContainerFactory
	container *app.Container
	out       io.Writer
	now       func() time.Time
}

func NewRunner(build ContainerFactory, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{build: build, out: out, now: time.Now}
}

func (r *Runner) load(ctx context.Context) (*app.Container, error) {
	if r.container != nil {
		return r.container, nil
	}
	c, err := r.build(ctx)
	if err != nil {
		return nil, err
	}
	r.container = c
	return c, nil
}

// Close releases the container when one was built.
func (r *Runner) Close() error {
	if r.container == nil {
		return nil
	}
	return r.container.Close()
}

func (r *Runner) authenticate(c *cli.Context, container *app.Container) (usecase.Invocation, error) {
	return container.AdminAuth.Authenticate(c.String("actor"), c.String("admin-key"))
}

func (r *Runner) App() *cli.App {
	return &cli.App{
		Name:  "prediction-admin",
		Usage: "operate the prediction league season",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "admin-key",
				Usage:   "shared admin credential",
				EnvVars: []string{"ADMIN_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "actor",
				Usage:   "name recorded on admin invocations",
				EnvVars: []string{"USER"},
			},
		},
		Writer: r.out,
		Commands: []*cli.Command{
			r.scoreWeekCommand(),
			r.autoScoreCommand(),
			r.leaderboardCommand(),
			r.weeksCommand(),
			r.seedWeekCommand(),
			r.setResultCommand(),
			r.resetUsersCommand(),
		},
	}
}

func (r *Runner) scoreWeekCommand() *cli.Command {
	return &cli.Command{
		Name:  "score-week",
		Usage: "score a fully resolved week",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "week", Required: true},
			&cli.BoolFlag{Name: "force", Usage: "re-apply deltas even when already scored"},
			&cli.BoolFlag{Name: "resume", Usage: "finish an interrupted run, skipping users already advanced"},
		},
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			if _, err := r.authenticate(c, container); err != nil {
				return err
			}

			result, err := container.Scoring.ScoreWeek(c.Context, c.Int("week"), usecase.ScoreOptions{
				Force:  c.Bool("force"),
				Resume: c.Bool("resume"),
			})
			if err != nil {
				return err
			}
			return r.printJSON(result)
		},
	}
}

func (r *Runner) autoScoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "auto-score",
		Usage: "run one automation tick",
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			inv, err := r.authenticate(c, container)
			if err != nil {
				return err
			}

			result, err := container.AutoScore.Tick(c.Context, inv)
			for _, line := range result.Log {
				fmt.Fprintln(r.out, line)
			}
			return err
		},
	}
}

func (r *Runner) leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the ranked standings",
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			rows, err := container.Leaderboard.GetLeaderboard(c.Context)
			if err != nil {
				return err
			}
			return writeLeaderboard(r.out, rows)
		},
	}
}

func (r *Runner) weeksCommand() *cli.Command {
	return &cli.Command{
		Name:  "weeks",
		Usage: "print the derived state of every week",
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			items, err := container.Weeks.ListWeeks(c.Context)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WEEK\tSTATE\tLOCKOUT\tRESOLVED\tCAN SCORE")
			for _, item := range items {
				lockout := "-"
				if item.LockoutAt != nil {
					lockout = item.LockoutAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", item.Number, item.State, lockout, item.FullyResolved, item.CanScore)
			}
			return tw.Flush()
		},
	}
}

func (r *Runner) seedWeekCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-week",
		Usage: "create a week's five matches from a YAML file",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "file", Required: true},
		},
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			if _, err := r.authenticate(c, container); err != nil {
				return err
			}

			f, err := os.Open(c.Path("file"))
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			input, err := parseSeedFile(f, r.now())
			if err != nil {
				return err
			}
			created, err := container.Season.SeedWeek(c.Context, input)
			if err != nil {
				return err
			}
			for _, item := range created {
				fmt.Fprintf(r.out, "match %d: %s vs %s locks %s\n", item.ID, item.HomeTeam, item.AwayTeam, item.LockoutAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func (r *Runner) setResultCommand() *cli.Command {
	return &cli.Command{
		Name:  "set-result",
		Usage: "record a match result manually",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "match", Required: true},
			&cli.StringFlag{Name: "result", Required: true, Usage: "HOME, DRAW or AWAY"},
		},
		Action: func(c *cli.Context) error {
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			if _, err := r.authenticate(c, container); err != nil {
				return err
			}

			item, err := container.Results.SetMatchResult(c.Context, c.Int64("match"), c.String("result"))
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "match %d (week %d) result=%s\n", item.ID, item.Week, item.Result)
			return nil
		},
	}
}

func (r *Runner) resetUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-users",
		Usage: "zero every user's totals and rewind the week cursor",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "to-week", Value: 1},
			&cli.BoolFlag{Name: "yes", Usage: "confirm the reset"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return fmt.Errorf("%w: reset-users is destructive; pass --yes to confirm", usecase.ErrInvalidInput)
			}
			container, err := r.load(c.Context)
			if err != nil {
				return err
			}
			inv, err := r.authenticate(c, container)
			if err != nil {
				return err
			}

			result, err := container.Season.ResetUsers(c.Context, inv, c.Int("to-week"))
			if err != nil {
				return err
			}
			return r.printJSON(result)
		},
	}
}

func (r *Runner) printJSON(v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(raw))
	return err
}

func writeLeaderboard(out io.Writer, rows []leaderboard.Row) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "POS\tNAME\tPTS\tCORRECT\tINCORRECT\tACCURACY\tFULL HOUSES\tBLANKS\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%d\t%d\t\n",
			row.Position,
			row.Name,
			row.Points,
			row.Correct,
			row.Incorrect,
			strconv.FormatFloat(row.Accuracy*100, 'f', 1, 64)+"%",
			row.FullHouses,
			row.Blanks,
		)
	}
	return tw.Flush()
}

// ExitCode maps usecase errors to process exit codes for scripting.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, usecase.ErrInvalidInput):
		return 2
	case errors.Is(err, usecase.ErrUnauthorized):
		return 3
	default:
		return 1
	}
}
