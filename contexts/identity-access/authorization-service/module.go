package authorization

import (
	"log/slog"

	httpadapter "meridian/contexts/identity-access/authorization-service/adapters/http"
	"meridian/contexts/identity-access/authorization-service/adapters/memory"
	"meridian/contexts/identity-access/authorization-service/application/queries"
	"meridian/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Handler     httpadapter.Handler
	CheckAccess queries.CheckAccessUseCase
	Store       *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Memberships ports.MembershipDirectory
	Clock       ports.Clock
	Logger      *slog.Logger
}

// NewModule wires the decision engine use case and transport handler.
func NewModule(deps Dependencies) Module {
	checkAccess := queries.CheckAccessUseCase{
		Memberships: deps.Memberships,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CheckAccess: checkAccess,
			Logger:      deps.Logger,
		},
		CheckAccess: checkAccess,
	}
}

// NewInMemoryModule builds a development/testing module with an in-memory
// membership directory.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Memberships: store,
		Clock:       memory.SystemClock{},
		Logger:      logger,
	})
	module.Store = store
	return module
}
