package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"publisher-platform/logger"
	"publisher-platform/models"
)

// InitDB opens the postgres connection and migrates the schema for the
// given models. Each API passes only the tables it owns.
func InitDB(cfg DatabaseConfig, migrate ...interface{}) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("failed to connect to database")
	}

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			logger.Get().Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	return db
}

// IdentityModels are the tables owned by the auth API.
func IdentityModels() []interface{} {
	return []interface{}{&models.User{}, &models.Role{}}
}

// ContentModels are the tables owned by the content API.
func ContentModels() []interface{} {
	return []interface{}{&models.Article{}, &models.Opinion{}}
}
