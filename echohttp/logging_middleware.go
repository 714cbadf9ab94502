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

package echohttp

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// logger emits one structured line per handled request. Requests scoped to a
// threat model carry its id so analyze, diagram and export calls can be
// correlated per model.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			args := []any{
				"method", c.Request().Method,
				"url", c.Request().URL,
				"status", c.Response().Status,
				"duration", time.Since(start),
			}
			if id := c.Param("threatModelID"); id != "" {
				args = append(args, "threatModelID", id)
			}
			slog.Info("handled request", args...)

			return err
		}
	}
}
