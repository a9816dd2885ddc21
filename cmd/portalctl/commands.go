package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	appMigrations "github.com/yigit/achievement-portal/internal/app/migrations"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/bootstrap"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/export"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password must not be empty")
)

// exportLimit matches the HTTP export cap.
const exportLimit = 5000

func openDatabase(c *cli.Context) (*bootstrap.Dependencies, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return nil, err
	}
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	deps, err := bootstrap.BuildServices(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, err
	}
	return deps, nil
}

func withDeps(fn func(c *cli.Context, deps *bootstrap.Dependencies) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		deps, err := openDatabase(c)
		if err != nil {
			return err
		}
		defer func() {
			deps.Dispatcher.Close()
			deps.DB.Close()
		}()
		return fn(c, deps)
	}
}

func migrateCommand() *cli.Command {
	run := func(op func(ctx context.Context, m *appMigrations.Migrator) error) cli.ActionFunc {
		return withDeps(func(c *cli.Context, deps *bootstrap.Dependencies) error {
			m, err := appMigrations.NewMigrator(deps.DB.Pool)
			if err != nil {
				return err
			}
			defer m.Close()
			return op(c.Context, m)
		})
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply pending migrations",
				Action: run(func(ctx context.Context, m *appMigrations.Migrator) error { return m.Up(ctx) }),
			},
			{
				Name:   "down",
				Usage:  "roll back the latest migration",
				Action: run(func(ctx context.Context, m *appMigrations.Migrator) error { return m.Down(ctx) }),
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: run(func(ctx context.Context, m *appMigrations.Migrator) error {
					v, err := m.Version(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("schema version %d\n", v)
					return nil
				}),
			},
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create an administrator account; the password is prompted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.BoolFlag{Name: "password-stdin", Usage: "read the password from stdin instead of the terminal"},
		},
		Action: withDeps(func(c *cli.Context, deps *bootstrap.Dependencies) error {
			password, err := readPassword(c.Bool("password-stdin"), os.Stdin)
			if err != nil {
				return err
			}
			admin, created, err := deps.Services.Auth.EnsureAdmin(c.Context, c.String("username"), password)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("admin %q already exists", admin.Username)
			}
			fmt.Printf("created admin %q (id %d)\n", admin.Username, admin.ID)
			return nil
		}),
	}
}

func readPassword(fromStdin bool, stdin io.Reader) (string, error) {
	var pwd string
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		pwd = strings.TrimRight(line, "\r\n")
	} else {
		fmt.Print("Enter password: ")
		raw, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		pwd = string(raw)
	}
	if pwd == "" {
		return "", errEmptyPassword
	}
	return pwd, nil
}

func adjustPointsCommand() *cli.Command {
	return &cli.Command{
		Name:  "adjust-points",
		Usage: "apply a manual correction to a student's total",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "student", Required: true, Usage: "student account id"},
			&cli.IntFlag{Name: "delta", Required: true, Usage: "signed point change"},
			&cli.StringFlag{Name: "reason", Required: true},
			&cli.StringFlag{Name: "admin", Value: "admin", Usage: "username recorded as the acting administrator"},
		},
		Action: withDeps(func(c *cli.Context, deps *bootstrap.Dependencies) error {
			admin, err := deps.Repos.Admins.GetByUsername(c.Context, c.String("admin"))
			if err != nil {
				return fmt.Errorf("lookup admin %q: %w", c.String("admin"), err)
			}
			total, err := deps.Services.Ledger.ManualAdjust(
				c.Context, auth.Administrator(admin.ID), c.Int64("student"), c.Int("delta"), c.String("reason"),
			)
			if err != nil {
				return err
			}
			fmt.Printf("student %d now has %s points\n", c.Int64("student"), humanize.Comma(int64(total)))
			return nil
		}),
	}
}

func exportLeaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-leaderboard",
		Usage: "write the leaderboard to an xlsx workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "year", Usage: "restrict to a year (I..IV)"},
			&cli.StringFlag{Name: "department", Usage: "restrict to a department code"},
			&cli.IntFlag{Name: "limit", Value: exportLimit},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file; defaults to a generated name"},
		},
		Action: withDeps(func(c *cli.Context, deps *bootstrap.Dependencies) error {
			limit := c.Int("limit")
			if limit <= 0 || limit > exportLimit {
				limit = exportLimit
			}
			filter := models.AccountFilter{
				Year:       models.Year(c.String("year")),
				Department: models.Department(c.String("department")),
			}
			entries, err := deps.Services.Ranking.LeaderboardN(c.Context, filter, limit)
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = export.LeaderboardFilename(c.String("department"), c.String("year"), time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteLeaderboard(f, entries); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			info, err := os.Stat(out)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s (%s)\n", len(entries), out, humanize.Bytes(uint64(info.Size())))
			return nil
		}),
	}
}
