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

package controllers

import (
	"fmt"
	"io"

	"github.com/l3montree-dev/threatguard/dtos"
	"github.com/l3montree-dev/threatguard/normalize"
	"github.com/l3montree-dev/threatguard/services"
	"github.com/l3montree-dev/threatguard/shared"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type ThreatModelController struct {
	repository shared.ThreatModelRepository
	service    shared.ThreatModelService
}

func NewThreatModelController(repository shared.ThreatModelRepository, service shared.ThreatModelService) *ThreatModelController {
	return &ThreatModelController{
		repository: repository,
		service:    service,
	}
}

func (c *ThreatModelController) Create(ctx shared.Context) error {
	var req dtos.ThreatModelCreateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(400, "unable to process request").WithInternal(err)
	}

	if err := shared.V.Struct(req); err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("could not validate request: %s", err.Error()))
	}

	model := req.ToModel()
	if err := c.repository.Create(nil, &model); err != nil {
		return echo.NewHTTPError(500, "could not create threat model").WithInternal(err)
	}

	return ctx.JSON(200, dtos.ThreatModelToDTO(model))
}

func (c *ThreatModelController) List(ctx shared.Context) error {
	threatModels, err := c.repository.All()
	if err != nil {
		return echo.NewHTTPError(500, "could not list threat models").WithInternal(err)
	}

	return ctx.JSON(200, utils.Map(threatModels, dtos.ThreatModelToDTO))
}

func (c *ThreatModelController) Read(ctx shared.Context) error {
	model := shared.GetThreatModel(ctx)
	return ctx.JSON(200, dtos.ThreatModelToDetailDTO(model))
}

func (c *ThreatModelController) Delete(ctx shared.Context) error {
	model := shared.GetThreatModel(ctx)
	if err := c.repository.Delete(nil, model.ID); err != nil {
		return echo.NewHTTPError(500, "could not delete threat model").WithInternal(err)
	}
	return ctx.NoContent(204)
}

func (c *ThreatModelController) Analyze(ctx shared.Context) error {
	model := shared.GetThreatModel(ctx)

	result, err := c.service.Analyze(model)
	if err != nil {
		return graphErrorToHTTP(err, "could not analyze threat model")
	}

	return ctx.JSON(200, result)
}

func (c *ThreatModelController) Diagram(ctx shared.Context) error {
	model := shared.GetThreatModel(ctx)

	format := threatmodel.Format(ctx.QueryParam("format"))
	if format == "" {
		format = threatmodel.FormatMermaid
	}

	diagram, err := c.service.RenderDiagram(model, format)
	if err != nil {
		if _, isValidation := asValidationError(err); isValidation {
			return graphErrorToHTTP(err, "could not render diagram")
		}
		return echo.NewHTTPError(400, fmt.Sprintf("could not render diagram: %s", err.Error()))
	}

	contentType := "text/plain; charset=utf-8"
	if format == threatmodel.FormatSVG {
		contentType = "image/svg+xml"
	}
	return ctx.Blob(200, contentType, []byte(diagram))
}

func (c *ThreatModelController) Export(ctx shared.Context) error {
	model := shared.GetThreatModel(ctx)

	switch ctx.QueryParam("format") {
	case "csv":
		content, err := c.service.ExportCSV(model)
		if err != nil {
			return graphErrorToHTTP(err, "could not export threat model")
		}
		ctx.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", model.Name+".csv"))
		return ctx.Blob(200, "text/csv", content)
	case "", "xlsx":
		content, err := c.service.ExportXLSX(model)
		if err != nil {
			return graphErrorToHTTP(err, "could not export threat model")
		}
		ctx.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", model.Name+".xlsx"))
		return ctx.Blob(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
	default:
		return echo.NewHTTPError(400, "unknown export format, expected csv or xlsx")
	}
}

func (c *ThreatModelController) ImportTerraform(ctx shared.Context) error {
	src, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(400, "unable to read request body").WithInternal(err)
	}

	parsed, err := normalize.ParseTerraform(src, importName(ctx, "imported.tf"))
	if err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("could not parse terraform source: %s", err.Error()))
	}

	return c.createFromNormalized(ctx, parsed)
}

func (c *ThreatModelController) ImportOpenAPI(ctx shared.Context) error {
	doc, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(400, "unable to read request body").WithInternal(err)
	}

	parsed, err := normalize.ParseOpenAPI(doc)
	if err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("could not parse openapi document: %s", err.Error()))
	}

	if name := ctx.QueryParam("name"); name != "" {
		parsed.Name = name
	}

	return c.createFromNormalized(ctx, parsed)
}

func (c *ThreatModelController) createFromNormalized(ctx shared.Context, parsed normalize.Model) error {
	model := services.ModelFromNormalized(parsed)
	if err := c.repository.Create(nil, &model); err != nil {
		return echo.NewHTTPError(500, "could not create threat model").WithInternal(err)
	}
	return ctx.JSON(200, dtos.ThreatModelToDTO(model))
}

func importName(ctx shared.Context, fallback string) string {
	if name := ctx.QueryParam("name"); name != "" {
		return name
	}
	return fallback
}

func asValidationError(err error) (*threatmodel.ValidationError, bool) {
	var verr *threatmodel.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// graphErrorToHTTP maps a graph validation failure to a 422 carrying all
// missing ids, anything else to a 500.
func graphErrorToHTTP(err error, fallbackMessage string) error {
	if verr, ok := asValidationError(err); ok {
		return echo.NewHTTPError(422, echo.Map{
			"message":    "flows reference unknown component ids",
			"missingIds": verr.MissingIDs,
		})
	}
	return echo.NewHTTPError(500, fallbackMessage).WithInternal(err)
}
