package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
)

const messageColumns = `id, name, email, subject, body, status, search_query, referrer, created_at, updated_at`

// messageRepo is the concrete implementation of MessageRepository
type messageRepo struct {
	db database.DBTX
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db database.DBTX) MessageRepository {
	return &messageRepo{db: db}
}

// Create inserts a new message
func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.Name, message.Email, message.Subject, message.Body,
		message.Status, message.SearchQuery, message.Referrer,
		message.CreatedAt, message.UpdatedAt,
	)
	return translate(err)
}

// GetByID retrieves a message by ID
func (r *messageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	message, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return message, nil
}

// List returns one page of messages, newest first, and the total match count
func (r *messageRepo) List(ctx context.Context, q models.MessageQuery) ([]*models.Message, int, error) {
	var conditions []string
	var args []interface{}
	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		args = append(args, "%"+escapeILIKE(text)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(subject ILIKE $%d OR body ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM messages %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		messageColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	return messages, total, rows.Err()
}

// UpdateStatus moves a message to a new triage status
func (r *messageRepo) UpdateStatus(ctx context.Context, id string, status models.MessageStatus, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE messages SET status = $2, updated_at = $3 WHERE id = $1", id, status, at,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

// CountByStatus returns the number of messages in each status
func (r *messageRepo) CountByStatus(ctx context.Context) (map[models.MessageStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM messages GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.MessageStatus]int, len(models.MessageStatuses))
	for _, s := range models.MessageStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.MessageStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// TopSearchQueries returns the help-center searches that most often led to a message
func (r *messageRepo) TopSearchQueries(ctx context.Context, limit int) ([]models.SearchQueryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT LOWER(search_query) AS q, COUNT(*) AS n FROM messages
		WHERE search_query <> ''
		GROUP BY q ORDER BY n DESC, q LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queries := make([]models.SearchQueryCount, 0)
	for rows.Next() {
		var qc models.SearchQueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		queries = append(queries, qc)
	}
	return queries, rows.Err()
}

func scanMessage(row scanner) (*models.Message, error) {
	var message models.Message
	err := row.Scan(
		&message.ID, &message.Name, &message.Email, &message.Subject, &message.Body,
		&message.Status, &message.SearchQuery, &message.Referrer,
		&message.CreatedAt, &message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}
