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

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/l3montree-dev/threatguard/cmd/threatguard/api"
	"github.com/l3montree-dev/threatguard/controllers"
	"github.com/l3montree-dev/threatguard/database"
	"github.com/l3montree-dev/threatguard/database/repositories"
	"github.com/l3montree-dev/threatguard/router"
	"github.com/l3montree-dev/threatguard/services"
	"github.com/l3montree-dev/threatguard/shared"
	"go.uber.org/fx"
)

var version string // filled at build time

func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	router.Build.Version = version

	pool, err := database.NewPgxConnPool(database.GetPoolConfigFromEnv())
	if err != nil {
		slog.Error(err.Error())
		panic(errors.New("failed to setup database connection pool"))
	}

	db, err := database.NewGormDB(pool)
	if err != nil {
		slog.Error(err.Error())
		panic(errors.New("failed to setup database connection"))
	}

	if os.Getenv("DISABLE_AUTOMIGRATE") != "true" {
		slog.Info("running database migrations...")
		if err := database.RunMigrationsWithDB(db); err != nil {
			slog.Error("failed to run database migrations", "error", err)
			panic(errors.New("failed to run database migrations"))
		}
	} else {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
	}

	fx.New(
		fx.Supply(db),
		fx.Supply(pool),
		fx.Provide(api.NewServer),
		repositories.Module,
		controllers.ControllerModule,
		services.Module,
		router.RouterModule,

		// we need to invoke all routers to register their routes
		fx.Invoke(func(threatModelRouter router.ThreatModelRouter) {}),
		fx.Invoke(func(infoRouter router.InfoRouter) {}),
	).Run()
}
