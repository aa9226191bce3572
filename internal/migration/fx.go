package migration

import (
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			log.Warn("skipping embedded migrations for non-postgres driver",
				zap.String("driver", cfg.DBType),
			)
			if err := conn.AutoMigrate(models()...); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.Environment == "production" {
			return nil
		}
		return seed.EnsureDemoAccounts(conn)
	}),
)
