package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/logger"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// keyMessageSeparator joins key messages into one column. Individual
// messages are validated upstream to a length that cannot contain it
// ambiguously enough to matter for display purposes.
const keyMessageSeparator = ","

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If log is nil, a default
// logger will be used.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a new PostgresTaskStore that runs against the provided
// transaction. The transaction is created and managed by the caller.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity when validation fails and
// store.ErrDuplicate on an external id collision.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.TaskID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, task_id, content_type, brand_voice, topic, platform,
			target_audience, key_messages, status, generated_content, metadata,
			error_message, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.TaskID,
		task.ContentType,
		task.BrandVoice,
		task.Topic,
		task.Platform,
		task.TargetAudience,
		joinKeyMessages(task.KeyMessages),
		task.Status,
		task.GeneratedContent,
		task.Metadata,
		task.ErrorMessage,
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("duplicate task id during create",
				slog.String("task_id", task.TaskID))
			return fmt.Errorf("%w: task id %s", store.ErrDuplicate, task.TaskID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.TaskID))
		return err
	}

	log.Info("task created",
		slog.String("task_id", task.TaskID),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByTaskID implements store.TaskStore.GetByTaskID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByTaskID(ctx context.Context, taskID string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectColumns + ` FROM tasks WHERE task_id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", taskID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, err
	}

	return task, nil
}

// ListByOwner implements store.TaskStore.ListByOwner. Results are ordered
// most-recent-first; a page beyond the available rows yields an empty slice.
func (s *PostgresTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	query := selectColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, size, page*size)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// Transition implements store.TaskStore.Transition. The UPDATE only matches
// when the current status is one of from, which makes the write a
// compare-and-set: a task that reached a terminal state concurrently is
// left untouched and ErrInvalidTransition is returned.
func (s *PostgresTaskStore) Transition(ctx context.Context, taskID string, from []domain.TaskStatus, update store.StatusUpdate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(from) == 0 {
		return fmt.Errorf("%w: no expected statuses given", store.ErrInvalidTransition)
	}

	args := []any{update.Status, update.GeneratedContent, update.Metadata,
		update.ErrorMessage, time.Now().UTC(), taskID}
	placeholders := make([]string, 0, len(from))
	for _, status := range from {
		args = append(args, status)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET status = $1, generated_content = $2, metadata = $3,
			error_message = $4, updated_at = $5
		WHERE task_id = $6 AND status IN (%s)
	`, strings.Join(placeholders, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to transition task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID),
			slog.String("status", string(update.Status)))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		// Distinguish a missing task from a lost CAS.
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM tasks WHERE task_id = $1`, taskID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		log.Warn("task status transition rejected",
			slog.String("task_id", taskID),
			slog.String("current_status", current),
			slog.String("requested_status", string(update.Status)))
		return fmt.Errorf("%w: task is %s", store.ErrInvalidTransition, current)
	}

	log.Info("task status updated",
		slog.String("task_id", taskID),
		slog.String("status", string(update.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, taskID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", taskID))
	return nil
}

const selectColumns = `
	SELECT id, task_id, content_type, brand_voice, topic, platform,
		target_audience, key_messages, status, generated_content, metadata,
		error_message, owner_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in selectColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, keyMessages string

	err := row.Scan(
		&task.ID,
		&task.TaskID,
		&task.ContentType,
		&task.BrandVoice,
		&task.Topic,
		&task.Platform,
		&task.TargetAudience,
		&keyMessages,
		&status,
		&task.GeneratedContent,
		&task.Metadata,
		&task.ErrorMessage,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.KeyMessages = splitKeyMessages(keyMessages)
	return &task, nil
}

func joinKeyMessages(messages []string) string {
	return strings.Join(messages, keyMessageSeparator)
}

func splitKeyMessages(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, keyMessageSeparator)
}
