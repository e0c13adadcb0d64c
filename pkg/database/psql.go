package database

import (
	"context"
	"fmt"
	"time"

	"ping_chat_service/pkg/logger"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // read side driver
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabaseConnection create a new postgresSQL connection
func NewDatabaseConnection(ctx context.Context, d Connection) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(d.ConnectStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	var pool *pgxpool.Pool
	err = retry(ctx, d, "pgx", func() error {
		pool, err = pgxpool.ConnectConfig(ctx, dbConfig)
		return err
	})
	return pool, err
}

// NewPGConnection create a gorm postgres connection
func NewPGConnection(ctx context.Context, d Connection) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	err = retry(ctx, d, "gorm", func() error {
		db, err = gorm.Open(postgres.Open(d.ConnectStr), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return err
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return dbErr
		}
		return sqlDB.PingContext(ctx)
	})
	return db, err
}

// NewSQLXConnection create a sqlx postgres connection (lib/pq)
func NewSQLXConnection(ctx context.Context, d Connection) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	err = retry(ctx, d, "sqlx", func() error {
		db, err = sqlx.ConnectContext(ctx, "postgres", d.ConnectStr)
		return err
	})
	return db, err
}

func retry(ctx context.Context, d Connection, name string, connect func() error) error {
	count := d.RetryCount
	if count <= 0 {
		count = 1
	}

	var err error
	for i := 0; i < count; i++ {
		if err = connect(); err == nil {
			return nil
		}
		logger.Log.Warn(
			"Failed to connect to postgreSQL database, retrying...",
			zap.String("client", name),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		if i == count-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.RetryInterval * time.Second):
		}
	}
	return err
}
