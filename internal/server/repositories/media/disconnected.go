package media

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// DisconnectedRepository is the stand-in used while no database connection
// is available. Every method fails fast with the recorded reason, so
// callers degrade uniformly instead of blocking on dead connections.
type DisconnectedRepository struct {
	reason string
}

var _ Repository = (*DisconnectedRepository)(nil)

// NewDisconnectedRepository records why the database is unavailable.
func NewDisconnectedRepository(reason string) *DisconnectedRepository {
	return &DisconnectedRepository{reason: reason}
}

func (r *DisconnectedRepository) unavailable() error {
	return fmt.Errorf("%w: %s", common.ErrDatabaseUnavailable, r.reason)
}

func (r *DisconnectedRepository) Save(ctx context.Context, m *models.Media) (int64, error) {
	return 0, r.unavailable()
}

func (r *DisconnectedRepository) FindByID(ctx context.Context, id int64) (*models.Media, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) FindByContentDigest(ctx context.Context, digest models.ContentDigest) (*models.Media, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) FindByUser(ctx context.Context, ownerID string) ([]*models.Media, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) FindByUserPaginated(ctx context.Context, ownerID string, opts ListOptions) (*Page, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) Update(ctx context.Context, m *models.Media) error {
	return r.unavailable()
}

func (r *DisconnectedRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return false, r.unavailable()
}

func (r *DisconnectedRepository) ExistsByContentDigest(ctx context.Context, digest models.ContentDigest) (bool, error) {
	return false, r.unavailable()
}

func (r *DisconnectedRepository) Attach(ctx context.Context, mediaID int64, kind LinkKind, targetID string) error {
	return r.unavailable()
}

func (r *DisconnectedRepository) FindIDsByRecipe(ctx context.Context, recipeID string) ([]int64, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) FindIDsByRecipeIngredient(ctx context.Context, ingredientID string) ([]int64, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) FindIDsByRecipeStep(ctx context.Context, stepID string) ([]int64, error) {
	return nil, r.unavailable()
}

func (r *DisconnectedRepository) HealthCheck(ctx context.Context) error {
	return r.unavailable()
}
