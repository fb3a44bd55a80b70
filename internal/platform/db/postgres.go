package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres wraps DB connectivity. Transactions are opened by the context
// repositories, which need SERIALIZABLE isolation for delegation edges.
type Postgres struct {
	DB *gorm.DB
}

// Migrator creates the tables owned by one bounded context.
type Migrator func(db *gorm.DB) error

func Connect(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

// Migrate runs every migrator in order and stops at the first failure.
func (p *Postgres) Migrate(migrators ...Migrator) error {
	for _, migrate := range migrators {
		if err := migrate(p.DB); err != nil {
			return fmt.Errorf("migrate postgres schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
