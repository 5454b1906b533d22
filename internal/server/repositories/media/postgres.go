package media

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/dbx"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const mediaColumns = `id, content_digest, original_filename, media_type, storage_path, file_size, processing_status, owner_id, created_at, updated_at`

func (r *PostgresRepository) Save(ctx context.Context, m *models.Media) (int64, error) {
	query := `
		INSERT INTO media (content_digest, original_filename, media_type, storage_path, file_size, processing_status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		m.ContentDigest.String(), m.OriginalFilename, m.MediaType, m.StoragePath,
		m.FileSize, m.ProcessingStatus.String(), m.OwnerID, m.CreatedAt, m.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	m.ID = id
	return id, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id=$1;`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByContentDigest(ctx context.Context, digest models.ContentDigest) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE content_digest=$1 ORDER BY id LIMIT 1;`
	return r.scanOne(r.db.QueryRowContext(ctx, query, digest.String()))
}

func (r *PostgresRepository) FindByUser(ctx context.Context, ownerID string) ([]*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE owner_id=$1 ORDER BY id;`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (r *PostgresRepository) FindByUserPaginated(ctx context.Context, ownerID string, opts ListOptions) (*Page, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	} else if limit > 100 {
		limit = 100
	}

	afterID, err := decodeCursor(opts.Cursor)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + mediaColumns + ` FROM media WHERE owner_id=$1 AND id>$2`
	args := []any{ownerID, afterID}
	if opts.Status != "" {
		if opts.Status == "failed" {
			// failed statuses carry a message suffix
			query += ` AND (processing_status = $3 OR processing_status LIKE 'failed: %')`
		} else {
			query += ` AND processing_status = $3`
		}
		args = append(args, opts.Status)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT %d;`, limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	records, err := scanAll(rows)
	if err != nil {
		return nil, err
	}

	page := &Page{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		page.HasMore = true
		page.NextCursor = encodeCursor(page.Records[limit-1].ID)
	}
	return page, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Media) error {
	query := `
		UPDATE media
		SET content_digest=$1, original_filename=$2, media_type=$3, storage_path=$4,
			file_size=$5, processing_status=$6, owner_id=$7, updated_at=$8
		WHERE id=$9;
	`
	res, err := r.db.ExecContext(ctx, query,
		m.ContentDigest.String(), m.OriginalFilename, m.MediaType, m.StoragePath,
		m.FileSize, m.ProcessingStatus.String(), m.OwnerID, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id=$1;`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ExistsByContentDigest(ctx context.Context, digest models.ContentDigest) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM media WHERE content_digest=$1);`, digest.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// linkTables maps a link kind to its join table and entity column.
var linkTables = map[LinkKind]struct{ table, column string }{
	LinkRecipe:     {"recipe_media", "recipe_id"},
	LinkIngredient: {"ingredient_media", "ingredient_id"},
	LinkStep:       {"step_media", "step_id"},
}

func (r *PostgresRepository) Attach(ctx context.Context, mediaID int64, kind LinkKind, targetID string) error {
	lt, ok := linkTables[kind]
	if !ok {
		return fmt.Errorf("%w: unknown link kind %q", common.ErrBadRequest, kind)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, media_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
		lt.table, lt.column)
	if _, err := r.db.ExecContext(ctx, query, targetID, mediaID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindIDsByRecipe(ctx context.Context, recipeID string) ([]int64, error) {
	return r.findIDs(ctx, `SELECT media_id FROM recipe_media WHERE recipe_id=$1 ORDER BY media_id;`, recipeID)
}

func (r *PostgresRepository) FindIDsByRecipeIngredient(ctx context.Context, ingredientID string) ([]int64, error) {
	return r.findIDs(ctx, `SELECT media_id FROM ingredient_media WHERE ingredient_id=$1 ORDER BY media_id;`, ingredientID)
}

func (r *PostgresRepository) FindIDsByRecipeStep(ctx context.Context, stepID string) ([]int64, error) {
	return r.findIDs(ctx, `SELECT media_id FROM step_media WHERE step_id=$1 ORDER BY media_id;`, stepID)
}

func (r *PostgresRepository) findIDs(ctx context.Context, query string, arg any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1;`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Media, error) {
	m, err := scanMedia(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanAll(rows *sql.Rows) ([]*models.Media, error) {
	var result []*models.Media
	for rows.Next() {
		m, err := scanMedia(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func scanMedia(scan func(dest ...any) error) (*models.Media, error) {
	var (
		m          models.Media
		digestHex  string
		statusText string
	)
	err := scan(&m.ID, &digestHex, &m.OriginalFilename, &m.MediaType, &m.StoragePath,
		&m.FileSize, &statusText, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if m.ContentDigest, err = models.NewContentDigest(digestHex); err != nil {
		return nil, fmt.Errorf("corrupt content_digest: %w", err)
	}
	if m.ProcessingStatus, err = models.ParseProcessingStatus(statusText); err != nil {
		return nil, fmt.Errorf("corrupt processing_status: %w", err)
	}
	return &m, nil
}

func encodeCursor(lastID int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(lastID, 10)))
}

func decodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed cursor", common.ErrBadRequest)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed cursor", common.ErrBadRequest)
	}
	return id, nil
}
