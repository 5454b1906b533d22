package media

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/logging"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// DefaultReconnectInterval is how often a disconnected repository retries
// the database when no interval is configured.
const DefaultReconnectInterval = 30 * time.Second

// Dialer opens a fresh, verified database handle. Implementations should
// ping before returning.
type Dialer func(ctx context.Context) (*sql.DB, error)

// state is the repository's connection snapshot. It is immutable once
// published; transitions replace the whole value under the lock.
type state struct {
	repo      Repository
	db        *sql.DB
	connected bool
	reason    string
}

// ReconnectingRepository delegates to a live Postgres repository while the
// database is reachable and to a DisconnectedRepository while it is not.
// Delegated errors that look like connection failures demote it; a
// background loop promotes it back by dialing a fresh handle.
type ReconnectingRepository struct {
	mu       sync.RWMutex
	st       state
	dialer   Dialer
	interval time.Duration
	logger   logging.Logger
}

var _ Repository = (*ReconnectingRepository)(nil)

// NewConnected starts in the connected state over an already verified handle.
func NewConnected(db *sql.DB, dialer Dialer, interval time.Duration, logger logging.Logger) *ReconnectingRepository {
	r := newReconnecting(dialer, interval, logger)
	r.st = state{repo: NewPostgresRepository(db), db: db, connected: true}
	return r
}

// NewDisconnected starts in the disconnected state, recording why.
func NewDisconnected(reason string, dialer Dialer, interval time.Duration, logger logging.Logger) *ReconnectingRepository {
	r := newReconnecting(dialer, interval, logger)
	r.st = state{repo: NewDisconnectedRepository(reason), reason: reason}
	return r
}

func newReconnecting(dialer Dialer, interval time.Duration, logger logging.Logger) *ReconnectingRepository {
	if interval <= 0 {
		interval = DefaultReconnectInterval
	}
	return &ReconnectingRepository{dialer: dialer, interval: interval, logger: logger}
}

// IsConnected reports the current connection state.
func (r *ReconnectingRepository) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.connected
}

func (r *ReconnectingRepository) current() Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.repo
}

// isConnectionError is a substring heuristic over the driver error text.
// Anything mentioning the connection, a timeout or the network is treated
// as a transport failure rather than a data error.
func isConnectionError(err error) bool {
	if err == nil || errors.Is(err, common.ErrDatabaseUnavailable) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network")
}

// observe demotes the repository when a delegated call failed in a way
// that points at the transport.
func (r *ReconnectingRepository) observe(ctx context.Context, err error) {
	if !isConnectionError(err) {
		return
	}

	r.mu.Lock()
	if !r.st.connected {
		r.mu.Unlock()
		return
	}
	old := r.st.db
	reason := err.Error()
	r.st = state{repo: NewDisconnectedRepository(reason), reason: reason}
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	r.logger.Warn(ctx, "database connection lost, entering disconnected mode", "reason", reason)
}

// AttemptReconnection dials a fresh handle and promotes the repository on
// success. The dial happens outside the lock so in-flight calls keep
// failing fast instead of queueing behind it.
func (r *ReconnectingRepository) AttemptReconnection(ctx context.Context) error {
	db, err := r.dialer(ctx)
	if err != nil {
		r.mu.Lock()
		if !r.st.connected {
			reason := err.Error()
			r.st = state{repo: NewDisconnectedRepository(reason), reason: reason}
		}
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	old := r.st.db
	r.st = state{repo: NewPostgresRepository(db), db: db, connected: true}
	r.mu.Unlock()

	if old != nil && old != db {
		old.Close()
	}
	r.logger.Info(ctx, "database connection restored")
	return nil
}

// Run retries the connection at a fixed interval while disconnected. It
// returns when ctx is cancelled.
func (r *ReconnectingRepository) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.IsConnected() {
				continue
			}
			if err := r.AttemptReconnection(ctx); err != nil {
				r.logger.Debug(ctx, "reconnection attempt failed", "error", err)
			}
		}
	}
}

// Close releases the underlying handle if one is held.
func (r *ReconnectingRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.db == nil {
		return nil
	}
	err := r.st.db.Close()
	r.st = state{repo: NewDisconnectedRepository("closed"), reason: "closed"}
	return err
}

func (r *ReconnectingRepository) Save(ctx context.Context, m *models.Media) (int64, error) {
	id, err := r.current().Save(ctx, m)
	r.observe(ctx, err)
	return id, err
}

func (r *ReconnectingRepository) FindByID(ctx context.Context, id int64) (*models.Media, error) {
	m, err := r.current().FindByID(ctx, id)
	r.observe(ctx, err)
	return m, err
}

func (r *ReconnectingRepository) FindByContentDigest(ctx context.Context, digest models.ContentDigest) (*models.Media, error) {
	m, err := r.current().FindByContentDigest(ctx, digest)
	r.observe(ctx, err)
	return m, err
}

func (r *ReconnectingRepository) FindByUser(ctx context.Context, ownerID string) ([]*models.Media, error) {
	ms, err := r.current().FindByUser(ctx, ownerID)
	r.observe(ctx, err)
	return ms, err
}

func (r *ReconnectingRepository) FindByUserPaginated(ctx context.Context, ownerID string, opts ListOptions) (*Page, error) {
	page, err := r.current().FindByUserPaginated(ctx, ownerID, opts)
	r.observe(ctx, err)
	return page, err
}

func (r *ReconnectingRepository) Update(ctx context.Context, m *models.Media) error {
	err := r.current().Update(ctx, m)
	r.observe(ctx, err)
	return err
}

func (r *ReconnectingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := r.current().Delete(ctx, id)
	r.observe(ctx, err)
	return ok, err
}

func (r *ReconnectingRepository) ExistsByContentDigest(ctx context.Context, digest models.ContentDigest) (bool, error) {
	ok, err := r.current().ExistsByContentDigest(ctx, digest)
	r.observe(ctx, err)
	return ok, err
}

func (r *ReconnectingRepository) Attach(ctx context.Context, mediaID int64, kind LinkKind, targetID string) error {
	err := r.current().Attach(ctx, mediaID, kind, targetID)
	r.observe(ctx, err)
	return err
}

func (r *ReconnectingRepository) FindIDsByRecipe(ctx context.Context, recipeID string) ([]int64, error) {
	ids, err := r.current().FindIDsByRecipe(ctx, recipeID)
	r.observe(ctx, err)
	return ids, err
}

func (r *ReconnectingRepository) FindIDsByRecipeIngredient(ctx context.Context, ingredientID string) ([]int64, error) {
	ids, err := r.current().FindIDsByRecipeIngredient(ctx, ingredientID)
	r.observe(ctx, err)
	return ids, err
}

func (r *ReconnectingRepository) FindIDsByRecipeStep(ctx context.Context, stepID string) ([]int64, error) {
	ids, err := r.current().FindIDsByRecipeStep(ctx, stepID)
	r.observe(ctx, err)
	return ids, err
}

func (r *ReconnectingRepository) HealthCheck(ctx context.Context) error {
	err := r.current().HealthCheck(ctx)
	r.observe(ctx, err)
	return err
}
