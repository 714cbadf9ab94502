package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeThreatModelRepository struct {
	replacedID      uuid.UUID
	replacedThreats []models.ThreatRow
	replaceErr      error
}

func (f *fakeThreatModelRepository) All() ([]models.ThreatModel, error) { return nil, nil }
func (f *fakeThreatModelRepository) Read(id uuid.UUID) (models.ThreatModel, error) {
	return models.ThreatModel{}, nil
}
func (f *fakeThreatModelRepository) ReadWithRelations(id uuid.UUID) (models.ThreatModel, error) {
	return models.ThreatModel{}, nil
}
func (f *fakeThreatModelRepository) Create(tx *gorm.DB, model *models.ThreatModel) error { return nil }
func (f *fakeThreatModelRepository) Save(tx *gorm.DB, model *models.ThreatModel) error   { return nil }
func (f *fakeThreatModelRepository) Delete(tx *gorm.DB, id uuid.UUID) error              { return nil }
func (f *fakeThreatModelRepository) ReplaceThreats(threatModelID uuid.UUID, threats []models.ThreatRow) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replacedID = threatModelID
	f.replacedThreats = threats
	return nil
}
func (f *fakeThreatModelRepository) Transaction(fn func(tx *gorm.DB) error) error { return fn(nil) }
func (f *fakeThreatModelRepository) GetDB(tx *gorm.DB) *gorm.DB                   { return nil }

func testThreatModel() models.ThreatModel {
	model := models.ThreatModel{
		Name: "payment platform",
		Components: []models.ComponentRow{
			{RefID: "api", Name: "Payment API", Type: "api", Criticality: threatmodel.CriticalityHigh},
			{RefID: "db", Name: "Payment DB", Type: "database", Criticality: threatmodel.CriticalityCritical},
		},
		Flows: []models.DataFlowRow{
			{RefID: "f1", SourceRefID: "api", TargetRefID: "db", Label: "stores payments", Encrypted: true, Authenticated: true},
		},
	}
	model.ID = uuid.New()
	return model
}

func TestAnalyzePersistsThreatTable(t *testing.T) {
	repository := &fakeThreatModelRepository{}
	service := NewThreatModelService(repository)

	model := testThreatModel()
	result, err := service.Analyze(model)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Threats)
	assert.Equal(t, model.ID, repository.replacedID)
	assert.Len(t, repository.replacedThreats, len(result.Threats))

	for _, threat := range result.Threats {
		assert.NotEmpty(t, threat.DiagramID, "every threat carries a diagram id")
	}

	assert.Equal(t, len(result.Threats), result.Summary.TotalThreats)
	assert.Greater(t, result.Summary.HighestScore, 0.0)
}

func TestAnalyzeReturnsValidationError(t *testing.T) {
	repository := &fakeThreatModelRepository{}
	service := NewThreatModelService(repository)

	model := testThreatModel()
	model.Flows = append(model.Flows, models.DataFlowRow{
		RefID:       "f2",
		SourceRefID: "api",
		TargetRefID: "ghost",
	})

	_, err := service.Analyze(model)
	var verr *threatmodel.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"ghost"}, verr.MissingIDs)
	assert.Empty(t, repository.replacedThreats, "nothing is persisted on validation failure")
}

func TestAnalyzeWrapsPersistenceError(t *testing.T) {
	repository := &fakeThreatModelRepository{replaceErr: errors.New("connection lost")}
	service := NewThreatModelService(repository)

	_, err := service.Analyze(testThreatModel())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not persist analysis result")
}

func TestRenderDiagramFormats(t *testing.T) {
	service := NewThreatModelService(&fakeThreatModelRepository{})
	model := testThreatModel()

	for _, format := range []threatmodel.Format{
		threatmodel.FormatMermaid,
		threatmodel.FormatSVG,
		threatmodel.FormatPlantUML,
	} {
		diagram, err := service.RenderDiagram(model, format)
		require.NoError(t, err)
		assert.Contains(t, diagram, "Payment API")
	}

	_, err := service.RenderDiagram(model, threatmodel.Format("visio"))
	assert.Error(t, err)
}

func TestExportUsesStoredThreats(t *testing.T) {
	repository := &fakeThreatModelRepository{}
	service := NewThreatModelService(repository)

	model := testThreatModel()
	result, err := service.Analyze(model)
	require.NoError(t, err)
	model.Threats = repository.replacedThreats

	csvContent, err := service.ExportCSV(model)
	require.NoError(t, err)
	assert.Contains(t, string(csvContent), result.Threats[0].Description)

	xlsxContent, err := service.ExportXLSX(model)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsxContent)
}

func TestSummarize(t *testing.T) {
	threats := []threatmodel.AnalyzedThreat{
		{Category: threatmodel.Spoofing, RiskLevel: threatmodel.RiskHigh, RiskScore: 12},
		{Category: threatmodel.Spoofing, RiskLevel: threatmodel.RiskMedium, RiskScore: 6},
		{Category: threatmodel.Tampering, RiskLevel: threatmodel.RiskCritical, RiskScore: 16},
	}

	summary := Summarize(threats)
	assert.Equal(t, 3, summary.TotalThreats)
	assert.Equal(t, 2, summary.ByCategory[threatmodel.Spoofing])
	assert.Equal(t, 1, summary.ByRiskLevel[threatmodel.RiskCritical])
	assert.Equal(t, 16.0, summary.HighestScore)
}
