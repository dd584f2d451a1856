package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `seq, id, account_id, text, scheduled_date, status, source, external_id, error, sent_at, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	id, err := newID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (id, account_id, text, scheduled_date, status, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query, id, post.AccountID, post.Text, post.ScheduledDate, post.Status, post.Source).
		Scan(&post.Seq, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	post.ID = id
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (r *postRepository) ListByAccountID(ctx context.Context, accountID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE account_id = $1 ORDER BY scheduled_date ASC, seq ASC`
	return r.list(ctx, query, accountID)
}

func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE status = $1 AND scheduled_date <= $2
		ORDER BY scheduled_date ASC, seq ASC`
	return r.list(ctx, query, models.PostStatusPending, now)
}

func (r *postRepository) MarkSent(ctx context.Context, id, externalID string, at time.Time) error {
	query := `
		UPDATE posts
		SET status = $2,
			external_id = $3,
			sent_at = $4,
			updated_at = $4
		WHERE id = $1 AND status = $5
	`
	return r.transition(ctx, query, ErrPostNotPending, id, models.PostStatusSent, externalID, at, models.PostStatusPending)
}

func (r *postRepository) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	query := `
		UPDATE posts
		SET status = $2,
			error = $3,
			updated_at = $4
		WHERE id = $1 AND status = $5
	`
	return r.transition(ctx, query, ErrPostNotPending, id, models.PostStatusFailed, reason, at, models.PostStatusPending)
}

func (r *postRepository) Requeue(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE posts
		SET status = $2,
			error = '',
			updated_at = $3
		WHERE id = $1 AND status = $4
	`
	return r.transition(ctx, query, ErrPostNotFailed, id, models.PostStatusPending, at, models.PostStatusFailed)
}

func (r *postRepository) transition(ctx context.Context, query string, conflict error, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	if affected != 1 {
		return conflict
	}
	return nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var sentAt sql.NullTime
	err := row.Scan(&post.Seq, &post.ID, &post.AccountID, &post.Text, &post.ScheduledDate, &post.Status, &post.Source,
		&post.ExternalID, &post.Error, &sentAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		post.SentAt = &sentAt.Time
	}
	return &post, nil
}
