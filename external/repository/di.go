package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/campushub/attendance/internal/config"
	"github.com/campushub/attendance/internal/directory"
	"github.com/campushub/attendance/internal/repository"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*ConnectionManager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewConnectionManager(cfg.DatabaseURL), nil
	})
	do.Provide(injector, func(i do.Injector) (repository.Store, error) {
		conn := do.MustInvoke[*ConnectionManager](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		pool, err := conn.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer conn.Release()
		if err := RunMigration(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to run migration: %w", err)
		}
		return NewPostgresStore(conn), nil
	})
	do.Provide(injector, func(i do.Injector) (directory.Directory, error) {
		conn := do.MustInvoke[*ConnectionManager](i)
		return NewPostgresDirectory(conn), nil
	})
}
