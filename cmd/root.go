package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/smartmenu-api/config"
	"github.com/yeremiapane/smartmenu-api/utils"
)

// RootCommand builds the smartmenu CLI. Running it without a sub-command
// starts the server.
func RootCommand() (*cobra.Command, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, err
	}
	return newRootCommand(v), nil
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	serveCmd := serveCommand(v)
	rootCmd := &cobra.Command{
		Use:           "smartmenu",
		Short:         "Smart Menu restaurant API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("port", 0, "listen port")
	flags.String("db-driver", "", "database driver: sqlite or mysql")
	flags.String("db-dsn", "", "database connection string")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	bindFlag(v, "port", flags.Lookup("port"))
	bindFlag(v, "db.driver", flags.Lookup("db-driver"))
	bindFlag(v, "db.dsn", flags.Lookup("db-dsn"))
	bindFlag(v, "log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCommand(v))
	return rootCmd
}

// loadConfig reads .env, then builds the config and its logger.
func loadConfig(v *viper.Viper) (*config.Config, *logrus.Logger, error) {
	loaded := config.LoadDotEnv()
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, nil)
	if !loaded {
		log.Debug(".env file not found, using environment only")
	}
	return cfg, log, nil
}
