// Package media provides persistence for media records: a Postgres
// implementation, a stub used while the database is unreachable, and a
// reconnecting wrapper that switches between the two.
package media

import (
	"context"

	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// Page is one slice of a paginated listing.
type Page struct {
	Records    []*models.Media
	NextCursor string
	HasMore    bool
}

// ListOptions controls paginated listing. Limit is clamped to 1..100;
// Cursor is the opaque token returned by the previous page; Status, when
// set, filters by persisted status string.
type ListOptions struct {
	Limit  int
	Cursor string
	Status string
}

// LinkKind identifies which cookbook entity a media record is attached to.
type LinkKind string

const (
	LinkRecipe     LinkKind = "recipe"
	LinkIngredient LinkKind = "ingredient"
	LinkStep       LinkKind = "step"
)

// Repository is the persistence contract for media records.
type Repository interface {
	// Save inserts a new record and returns the database-assigned id.
	Save(ctx context.Context, m *models.Media) (int64, error)

	FindByID(ctx context.Context, id int64) (*models.Media, error)
	FindByContentDigest(ctx context.Context, digest models.ContentDigest) (*models.Media, error)
	FindByUser(ctx context.Context, ownerID string) ([]*models.Media, error)
	FindByUserPaginated(ctx context.Context, ownerID string, opts ListOptions) (*Page, error)

	// Update rewrites the whole record identified by m.ID.
	Update(ctx context.Context, m *models.Media) error

	// Delete removes the record, reporting whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)

	ExistsByContentDigest(ctx context.Context, digest models.ContentDigest) (bool, error)

	// Attach links a media record to a cookbook entity. Attaching twice
	// is a no-op.
	Attach(ctx context.Context, mediaID int64, kind LinkKind, targetID string) error

	FindIDsByRecipe(ctx context.Context, recipeID string) ([]int64, error)
	FindIDsByRecipeIngredient(ctx context.Context, ingredientID string) ([]int64, error)
	FindIDsByRecipeStep(ctx context.Context, stepID string) ([]int64, error)

	HealthCheck(ctx context.Context) error
}
