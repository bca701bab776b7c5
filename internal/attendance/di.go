package attendance

import (
	"github.com/samber/do/v2"

	"github.com/campushub/attendance/internal/config"
	"github.com/campushub/attendance/internal/directory"
	"github.com/campushub/attendance/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*LifecycleManager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[repository.Store](i)
		return NewLifecycleManager(cfg, store), nil
	})
	do.Provide(injector, func(i do.Injector) (*Coordinator, error) {
		lifecycle := do.MustInvoke[*LifecycleManager](i)
		store := do.MustInvoke[repository.Store](i)
		dir := do.MustInvoke[directory.Directory](i)
		return NewCoordinator(lifecycle, store, dir), nil
	})
}
