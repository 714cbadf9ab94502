// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package router

import (
	"github.com/l3montree-dev/threatguard/controllers"
	"github.com/l3montree-dev/threatguard/shared"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ThreatModelRouter struct {
	*echo.Group
}

func NewThreatModelRouter(
	apiV1Router APIV1Router,
	threatModelController *controllers.ThreatModelController,
	threatModelRepository shared.ThreatModelRepository,
) ThreatModelRouter {
	threatModelRouter := apiV1Router.Group.Group("/threat-models")

	threatModelRouter.POST("/", threatModelController.Create)
	threatModelRouter.GET("/", threatModelController.List)
	threatModelRouter.POST("/import/terraform/", threatModelController.ImportTerraform)
	threatModelRouter.POST("/import/openapi/", threatModelController.ImportOpenAPI)

	detailRouter := threatModelRouter.Group("/:threatModelID", threatModelMiddleware(threatModelRepository))
	detailRouter.GET("/", threatModelController.Read)
	detailRouter.DELETE("/", threatModelController.Delete)
	detailRouter.POST("/analyze/", threatModelController.Analyze)
	detailRouter.GET("/diagram/", threatModelController.Diagram)
	detailRouter.GET("/export/", threatModelController.Export)

	return ThreatModelRouter{Group: threatModelRouter}
}

// threatModelMiddleware resolves the threat model including its relations and
// makes it available to all detail handlers.
func threatModelMiddleware(repository shared.ThreatModelRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := shared.GetThreatModelID(c)
			if err != nil {
				return echo.NewHTTPError(400, "invalid threat model id").WithInternal(err)
			}

			model, err := repository.ReadWithRelations(id)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return echo.NewHTTPError(404, "could not find threat model")
				}
				return echo.NewHTTPError(500, "could not load threat model").WithInternal(err)
			}

			shared.SetThreatModel(c, model)
			return next(c)
		}
	}
}
