// Command portalctl runs administrative tasks against the portal database:
// schema migrations, admin provisioning, manual point corrections and
// leaderboard exports.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "portalctl",
		Usage: "administer the student achievement portal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"PORTAL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			createAdminCommand(),
			adjustPointsCommand(),
			exportLeaderboardCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("portalctl failed")
		os.Exit(1)
	}
}
