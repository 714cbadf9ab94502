package shared

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/pkg/errors"
)

// GetThreatModel returns the threat model the router middleware loaded into
// the request context. Panics when called outside a threat model route.
func GetThreatModel(ctx Context) models.ThreatModel {
	model, ok := ctx.Get("threatModel").(models.ThreatModel)
	if !ok {
		panic("threat model not found in context")
	}
	return model
}

func SetThreatModel(ctx Context, model models.ThreatModel) {
	ctx.Set("threatModel", model)
}

func GetThreatModelID(ctx Context) (uuid.UUID, error) {
	id, err := uuid.Parse(SanitizeParam(ctx.Param("threatModelID")))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid threat model id")
	}
	return id, nil
}
