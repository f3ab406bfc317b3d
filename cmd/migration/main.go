package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/prediction-league/db"
	"github.com/riskibarqy/prediction-league/internal/app"
)

func main() {
	cliApp := &cli.App{
		Name:  "migration",
		Usage: "apply prediction league schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-url", EnvVars: []string{"DB_URL"}, Required: true},
			&cli.StringFlag{Name: "dir", Usage: "read migrations from disk instead of the embedded set", EnvVars: []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"}},
			&cli.BoolFlag{Name: "disable-prepared-binary", EnvVars: []string{"DB_DISABLE_PREPARED_BINARY_RESULT"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrate) error {
					return report(m.Up(), "migrations applied")
				}),
			},
			{
				Name:      "down",
				Usage:     "roll back N migrations (default 1)",
				ArgsUsage: "[steps]",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrate) error {
					steps := 1
					if c.Args().Present() {
						if _, err := fmt.Sscan(c.Args().First(), &steps); err != nil || steps <= 0 {
							return fmt.Errorf("down steps must be a positive integer, got %q", c.Args().First())
						}
					}
					return report(m.Steps(-steps), fmt.Sprintf("rolled back %d migration(s)", steps))
				}),
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(c.App.Writer, "version: none")
						return nil
					}
					if err != nil {
						return fmt.Errorf("read version: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "version: %d\ndirty: %t\n", version, dirty)
					return nil
				}),
			},
			{
				Name:      "force",
				Usage:     "set the version without running migrations",
				ArgsUsage: "<version>",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrate) error {
					var version int
					if _, err := fmt.Sscan(c.Args().First(), &version); err != nil || version < 0 {
						return fmt.Errorf("force requires a non-negative version, got %q", c.Args().First())
					}
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version %d: %w", version, err)
					}
					fmt.Fprintf(c.App.Writer, "forced version to %d\n", version)
					return nil
				}),
			},
			{
				Name:      "goto",
				Usage:     "migrate up or down to a target version",
				ArgsUsage: "<version>",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrate) error {
					var target uint
					if _, err := fmt.Sscan(c.Args().First(), &target); err != nil {
						return fmt.Errorf("goto requires a target version, got %q", c.Args().First())
					}
					return report(m.Migrate(target), fmt.Sprintf("migrated to version %d", target))
				}),
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withMigrator(fn func(c *cli.Context, m *migrate.Migrate) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		m, err := newMigrator(c)
		if err != nil {
			return err
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				fmt.Fprintf(os.Stderr, "close migration source: %v\n", srcErr)
			}
			if dbErr != nil {
				fmt.Fprintf(os.Stderr, "close migration db: %v\n", dbErr)
			}
		}()

		return fn(c, m)
	}
}

func newMigrator(c *cli.Context) (*migrate.Migrate, error) {
	dbURL := app.NormalizeDBURL(strings.TrimSpace(c.String("db-url")), c.Bool("disable-prepared-binary"))

	if dir := strings.TrimSpace(c.String("dir")); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve migrations dir: %w", err)
		}
		m, err := migrate.New("file://"+filepath.ToSlash(abs), dbURL)
		if err != nil {
			return nil, fmt.Errorf("create migrator: %w", err)
		}
		return m, nil
	}

	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func report(err error, done string) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("no migration changes")
		return nil
	case err != nil:
		return err
	default:
		fmt.Println(done)
		return nil
	}
}
