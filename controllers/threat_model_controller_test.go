package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/shared"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created *models.ThreatModel
	models  []models.ThreatModel
}

func (f *fakeRepository) All() ([]models.ThreatModel, error) { return f.models, nil }
func (f *fakeRepository) Read(id uuid.UUID) (models.ThreatModel, error) {
	return models.ThreatModel{}, nil
}
func (f *fakeRepository) ReadWithRelations(id uuid.UUID) (models.ThreatModel, error) {
	return models.ThreatModel{}, nil
}
func (f *fakeRepository) Create(tx *gorm.DB, model *models.ThreatModel) error {
	model.ID = uuid.New()
	f.created = model
	return nil
}
func (f *fakeRepository) Save(tx *gorm.DB, model *models.ThreatModel) error { return nil }
func (f *fakeRepository) Delete(tx *gorm.DB, id uuid.UUID) error            { return nil }
func (f *fakeRepository) ReplaceThreats(threatModelID uuid.UUID, threats []models.ThreatRow) error {
	return nil
}
func (f *fakeRepository) Transaction(fn func(tx *gorm.DB) error) error { return fn(nil) }
func (f *fakeRepository) GetDB(tx *gorm.DB) *gorm.DB                   { return nil }

type fakeService struct {
	analyzeErr error
	diagram    string
	renderErr  error
}

func (f *fakeService) Analyze(model models.ThreatModel) (shared.AnalysisResult, error) {
	if f.analyzeErr != nil {
		return shared.AnalysisResult{}, f.analyzeErr
	}
	return shared.AnalysisResult{
		Threats: []threatmodel.AnalyzedThreat{{Description: "stub threat"}},
		Summary: shared.AnalysisSummary{TotalThreats: 1},
	}, nil
}

func (f *fakeService) RenderDiagram(model models.ThreatModel, format threatmodel.Format) (string, error) {
	if f.renderErr != nil {
		return "", f.renderErr
	}
	return f.diagram, nil
}

func (f *fakeService) ExportCSV(model models.ThreatModel) ([]byte, error) {
	return []byte("csv"), nil
}

func (f *fakeService) ExportXLSX(model models.ThreatModel) ([]byte, error) {
	return []byte("xlsx"), nil
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateThreatModel(t *testing.T) {
	repository := &fakeRepository{}
	controller := NewThreatModelController(repository, &fakeService{})

	t.Run("creates a model from a valid request", func(t *testing.T) {
		body := `{
			"name": "shop",
			"components": [
				{"id": "web", "name": "Webshop", "type": "process"}
			],
			"flows": []
		}`
		ctx, rec := newTestContext(t, http.MethodPost, "/threat-models/", body)

		err := controller.Create(ctx)
		require.NoError(t, err)
		assert.Equal(t, 200, rec.Code)
		require.NotNil(t, repository.created)
		assert.Equal(t, "shop", repository.created.Name)
		assert.Equal(t, "web", repository.created.Components[0].RefID)
	})

	t.Run("rejects a model without components", func(t *testing.T) {
		ctx, _ := newTestContext(t, http.MethodPost, "/threat-models/", `{"name": "empty", "components": []}`)

		err := controller.Create(ctx)
		var httpError *echo.HTTPError
		require.ErrorAs(t, err, &httpError)
		assert.Equal(t, 400, httpError.Code)
	})

	t.Run("rejects a component without a type", func(t *testing.T) {
		body := `{"name": "shop", "components": [{"id": "web", "name": "Webshop"}]}`
		ctx, _ := newTestContext(t, http.MethodPost, "/threat-models/", body)

		err := controller.Create(ctx)
		var httpError *echo.HTTPError
		require.ErrorAs(t, err, &httpError)
		assert.Equal(t, 400, httpError.Code)
	})
}

func TestAnalyzeMapsValidationErrorTo422(t *testing.T) {
	service := &fakeService{
		analyzeErr: &threatmodel.ValidationError{MissingIDs: []string{"ghost", "missing-db"}},
	}
	controller := NewThreatModelController(&fakeRepository{}, service)

	ctx, _ := newTestContext(t, http.MethodPost, "/threat-models/x/analyze/", "")
	shared.SetThreatModel(ctx, models.ThreatModel{})

	err := controller.Analyze(ctx)
	var httpError *echo.HTTPError
	require.ErrorAs(t, err, &httpError)
	assert.Equal(t, 422, httpError.Code)

	message, ok := httpError.Message.(echo.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"ghost", "missing-db"}, message["missingIds"])
}

func TestAnalyzeReturnsResult(t *testing.T) {
	controller := NewThreatModelController(&fakeRepository{}, &fakeService{})

	ctx, rec := newTestContext(t, http.MethodPost, "/threat-models/x/analyze/", "")
	shared.SetThreatModel(ctx, models.ThreatModel{})

	require.NoError(t, controller.Analyze(ctx))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "stub threat")
}

func TestDiagramContentTypes(t *testing.T) {
	service := &fakeService{diagram: "<svg>diagram</svg>"}
	controller := NewThreatModelController(&fakeRepository{}, service)

	t.Run("svg", func(t *testing.T) {
		ctx, rec := newTestContext(t, http.MethodGet, "/threat-models/x/diagram/?format=svg", "")
		shared.SetThreatModel(ctx, models.ThreatModel{})

		require.NoError(t, controller.Diagram(ctx))
		assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	})

	t.Run("defaults to mermaid as text", func(t *testing.T) {
		ctx, rec := newTestContext(t, http.MethodGet, "/threat-models/x/diagram/", "")
		shared.SetThreatModel(ctx, models.ThreatModel{})

		require.NoError(t, controller.Diagram(ctx))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/plain")
	})
}

func TestExportFormats(t *testing.T) {
	controller := NewThreatModelController(&fakeRepository{}, &fakeService{})

	t.Run("defaults to xlsx", func(t *testing.T) {
		ctx, rec := newTestContext(t, http.MethodGet, "/threat-models/x/export/", "")
		shared.SetThreatModel(ctx, models.ThreatModel{Name: "shop"})

		require.NoError(t, controller.Export(ctx))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "shop.xlsx")
	})

	t.Run("csv", func(t *testing.T) {
		ctx, rec := newTestContext(t, http.MethodGet, "/threat-models/x/export/?format=csv", "")
		shared.SetThreatModel(ctx, models.ThreatModel{Name: "shop"})

		require.NoError(t, controller.Export(ctx))
		assert.Equal(t, "csv", rec.Body.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		ctx, _ := newTestContext(t, http.MethodGet, "/threat-models/x/export/?format=pdf", "")
		shared.SetThreatModel(ctx, models.ThreatModel{Name: "shop"})

		err := controller.Export(ctx)
		var httpError *echo.HTTPError
		require.ErrorAs(t, err, &httpError)
		assert.Equal(t, 400, httpError.Code)
	})
}

func TestImportTerraform(t *testing.T) {
	repository := &fakeRepository{}
	controller := NewThreatModelController(repository, &fakeService{})

	src := `
resource "aws_instance" "app" {
}

resource "aws_db_instance" "orders" {
  storage_encrypted = true
}
`
	ctx, rec := newTestContext(t, http.MethodPost, "/threat-models/import/terraform/?name=prod", src)
	ctx.Request().Header.Set(echo.HeaderContentType, echo.MIMETextPlain)

	require.NoError(t, controller.ImportTerraform(ctx))
	assert.Equal(t, 200, rec.Code)
	require.NotNil(t, repository.created)
	assert.Len(t, repository.created.Components, 2)
	assert.Len(t, repository.created.Flows, 1)
}

func TestImportOpenAPI(t *testing.T) {
	repository := &fakeRepository{}
	controller := NewThreatModelController(repository, &fakeService{})

	doc := `
openapi: 3.0.3
info:
  title: Orders API
paths:
  /orders:
    get:
      operationId: listOrders
`
	ctx, rec := newTestContext(t, http.MethodPost, "/threat-models/import/openapi/", doc)
	ctx.Request().Header.Set(echo.HeaderContentType, echo.MIMETextPlain)

	require.NoError(t, controller.ImportOpenAPI(ctx))
	assert.Equal(t, 200, rec.Code)
	require.NotNil(t, repository.created)
	assert.Equal(t, "Orders API", repository.created.Name)
	assert.Len(t, repository.created.Flows, 2)
}

func TestImportTerraformRejectsBrokenSource(t *testing.T) {
	controller := NewThreatModelController(&fakeRepository{}, &fakeService{})

	ctx, _ := newTestContext(t, http.MethodPost, "/threat-models/import/terraform/", `resource "aws_instance" {`)
	ctx.Request().Header.Set(echo.HeaderContentType, echo.MIMETextPlain)

	err := controller.ImportTerraform(ctx)
	var httpError *echo.HTTPError
	require.ErrorAs(t, err, &httpError)
	assert.Equal(t, 400, httpError.Code)
}
