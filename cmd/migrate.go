package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/smartmenu-api/database"
)

func migrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, log); err != nil {
				log.WithError(err).Error("migration failed")
				return err
			}
			log.Info("migration completed successfully")
			return nil
		},
	}
}
