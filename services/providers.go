package services

import (
	"github.com/l3montree-dev/threatguard/shared"
	"go.uber.org/fx"
)

// Module provides all service-layer constructors
var Module = fx.Options(
	fx.Provide(func(repository shared.ThreatModelRepository) shared.ThreatModelService {
		return NewThreatModelService(repository)
	}),
)
