package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

func TestDisconnectedRepository_AllMethodsFail(t *testing.T) {
	ctx := context.Background()
	repo := NewDisconnectedRepository("boot failure")
	digest, _ := models.NewContentDigest(testDigest)

	tests := []struct {
		name string
		call func() error
	}{
		{"Save", func() error { _, err := repo.Save(ctx, &models.Media{}); return err }},
		{"FindByID", func() error { _, err := repo.FindByID(ctx, 1); return err }},
		{"FindByContentDigest", func() error { _, err := repo.FindByContentDigest(ctx, digest); return err }},
		{"FindByUser", func() error { _, err := repo.FindByUser(ctx, "u"); return err }},
		{"FindByUserPaginated", func() error { _, err := repo.FindByUserPaginated(ctx, "u", ListOptions{Limit: 1}); return err }},
		{"Update", func() error { return repo.Update(ctx, &models.Media{}) }},
		{"Delete", func() error { _, err := repo.Delete(ctx, 1); return err }},
		{"Attach", func() error { return repo.Attach(ctx, 1, LinkRecipe, "r-1") }},
		{"ExistsByContentDigest", func() error { _, err := repo.ExistsByContentDigest(ctx, digest); return err }},
		{"FindIDsByRecipe", func() error { _, err := repo.FindIDsByRecipe(ctx, "r"); return err }},
		{"FindIDsByRecipeIngredient", func() error { _, err := repo.FindIDsByRecipeIngredient(ctx, "i"); return err }},
		{"FindIDsByRecipeStep", func() error { _, err := repo.FindIDsByRecipeStep(ctx, "s"); return err }},
		{"HealthCheck", func() error { return repo.HealthCheck(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, common.ErrDatabaseUnavailable)
			assert.ErrorContains(t, err, "boot failure")
		})
	}
}
