package repositories

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/shared"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type threatModelRepository struct {
	*GormRepository[uuid.UUID, models.ThreatModel]
	db shared.DB
}

func NewThreatModelRepository(db shared.DB) *threatModelRepository {
	return &threatModelRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.ThreatModel](db),
	}
}

// Create persists a model including its nested components, flows and
// boundaries. Duplicate ref ids inside one model hit the unique index.
func (r *threatModelRepository) Create(tx *gorm.DB, model *models.ThreatModel) error {
	err := r.GetDB(tx).Create(model).Error
	if err != nil && isUniqueViolationError(err) {
		return errors.New("duplicate component or flow id within the model")
	}
	return err
}

// ReadWithRelations loads the model with everything the analysis needs.
func (r *threatModelRepository) ReadWithRelations(id uuid.UUID) (models.ThreatModel, error) {
	var model models.ThreatModel
	err := r.db.
		Preload("Components").
		Preload("Flows").
		Preload("Boundaries").
		Preload("Threats").
		First(&model, "id = ?", id).Error
	return model, err
}

// ReplaceThreats swaps the stored analysis result for a model in one
// transaction, so a failed analysis never leaves a half written table.
func (r *threatModelRepository) ReplaceThreats(threatModelID uuid.UUID, threats []models.ThreatRow) error {
	return r.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("threat_model_id = ?", threatModelID).Delete(&models.ThreatRow{}).Error; err != nil {
			return err
		}
		if len(threats) == 0 {
			return nil
		}
		return tx.Create(&threats).Error
	})
}
