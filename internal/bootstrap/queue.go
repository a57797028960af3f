package bootstrap

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jt828/go-observer/internal/config"
	cbImpl "github.com/jt828/go-observer/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-observer/pkg/observability"
	obsImpl "github.com/jt828/go-observer/pkg/observability/implementation"
	"github.com/jt828/go-observer/pkg/queue"
	queueImpl "github.com/jt828/go-observer/pkg/queue/implementation"
	"github.com/jt828/go-observer/pkg/retry"
	retryImpl "github.com/jt828/go-observer/pkg/retry/implementation"
	"go.uber.org/multierr"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitializeQueue builds the queue critical frames are delivered to. The
// returned close function releases its resources. A nil queue means critical
// frames are dropped with a diagnostic.
func InitializeQueue(cfg config.QueueConfig, meter observability.Meter, log observability.Logger) (queue.Queue, func() error, error) {
	switch cfg.Driver {
	case config.QueueDriverNone:
		return nil, func() error { return nil }, nil
	case config.QueueDriverMemory:
		return queueImpl.NewMemoryQueue(cfg.MemoryLimit), func() error { return nil }, nil
	}

	db, err := OpenQueueDB(postgres.Open(cfg.DSN), obsImpl.NewGormMetricsPlugin(meter))
	if err != nil {
		return nil, nil, err
	}

	cb := cbImpl.NewCircuitBreaker(cbImpl.QueueSettings("critical-frame-queue", cfg.BreakerFailures, cfg.BreakerTimeout, log))

	r := retryImpl.NewRetry(cfg.Retries,
		retry.WithInterval(cfg.RetryInterval),
		retry.WithMaxInterval(cfg.RetryMaxInterval),
		retry.WithRetryable(IsRetryable),
		retry.WithOnRetry(func(attempt uint64, err error) {
			log.Warn("critical frame queue write failed, retrying",
				observability.Int("attempt", int(attempt)),
				observability.Err(err),
			)
		}),
	)

	closeFn := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return queueImpl.NewPostgresQueue(db, cb, r), closeFn, nil
}

// OpenQueueDB opens the queue database and installs plugins. The connection
// pool is closed again when a plugin fails to install.
func OpenQueueDB(dialector gorm.Dialector, plugins ...gorm.Plugin) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				err = multierr.Append(err, sqlDB.Close())
			}
			return nil, fmt.Errorf("install gorm plugin %s: %w", p.Name(), err)
		}
	}
	return db, nil
}

// IsRetryable reports whether a queue database error is transient.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001": // serialization_failure
			return true
		case "40P01": // deadlock_detected
			return true
		case "08006": // connection_failure
			return true
		case "08001": // sqlclient_unable_to_establish_sqlconnection
			return true
		case "08004": // sqlserver_rejected_establishment_of_sqlconnection
			return true
		}
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
