package database

import (
	"fmt"
	"log"
	"time"

	"cosmosfeed/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func Connect(config Config) (*gorm.DB, error) {
	level := logger.Warn
	if config.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connected successfully")
	return db, nil
}

// Migrate создает таблицы. Индексы с DESC и NULLS LAST нужны только в PostgreSQL.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.SpaceCache{},
		&models.OSDRItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := createIndexes(db); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	log.Println("Database migration completed successfully")
	return nil
}

var postgresIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_space_cache_source_fetched ON space_caches(source, fetched_at DESC, id DESC)",
	"CREATE INDEX IF NOT EXISTS idx_osdr_item_inserted ON osdr_items(inserted_at DESC, id DESC)",
	"CREATE INDEX IF NOT EXISTS idx_osdr_item_updated_at ON osdr_items(updated_at DESC NULLS LAST)",
}

func createIndexes(db *gorm.DB) error {
	for _, stmt := range postgresIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
