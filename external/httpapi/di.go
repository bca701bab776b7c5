package httpapi

import (
	"github.com/samber/do/v2"

	"github.com/campushub/attendance/internal/attendance"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		lifecycle := do.MustInvoke[*attendance.LifecycleManager](i)
		coordinator := do.MustInvoke[*attendance.Coordinator](i)
		return NewHandler(lifecycle, coordinator), nil
	})
}
