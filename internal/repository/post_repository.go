package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/listforge/listforge/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	CompareAndTransition(ctx context.Context, postID int64, expected, next string, extra models.TransitionExtra) error
	UpdateDescription(ctx context.Context, postID int64, text string) error
	FindDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	GetTargets(ctx context.Context, postID int64) ([]string, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, artifact_url, description, status, scheduled_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	var scheduledAt sql.NullTime
	err := row.Scan(&post.ID, &post.UserID, &post.ArtifactURL, &post.Description,
		&post.Status, &scheduledAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		post.ScheduledAt = &t
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, artifact_url, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.ArtifactURL, post.Description, post.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.ArtifactURL, post.Description, post.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1`
	args := []any{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// CompareAndTransition is the only status mutator. The WHERE clause on the
// expected status makes it a compare-and-set: whichever of two racing
// callers runs second matches zero rows and gets ErrConflict.
func (r *postRepository) CompareAndTransition(ctx context.Context, postID int64, expected, next string, extra models.TransitionExtra) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE posts
		SET status = $1,
			scheduled_at = $2,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`

	var scheduledAt sql.NullTime
	if extra.ScheduledAt != nil {
		scheduledAt = sql.NullTime{Time: *extra.ScheduledAt, Valid: true}
	}

	res, err := tx.ExecContext(ctx, query, next, scheduledAt, time.Now(), postID, expected)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}

	if len(extra.Targets) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_targets WHERE post_id = $1`, postID); err != nil {
			slog.Info(err.Error())
			return err
		}
		query := `INSERT INTO post_targets (post_id, location_id) SELECT $1, unnest($2::text[])`
		if _, err := tx.ExecContext(ctx, query, postID, pq.Array(extra.Targets)); err != nil {
			slog.Info(err.Error())
			return err
		}
	}

	return tx.Commit()
}

func (r *postRepository) UpdateDescription(ctx context.Context, postID int64, text string) error {
	query := `
		UPDATE posts
		SET description = $1,
			updated_at = $2
		WHERE id = $3 AND status IN ($4, $5, $6)
	`
	res, err := r.db.ExecContext(ctx, query, text, time.Now(), postID,
		models.PostStatusPending, models.PostStatusApproved, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}
	return nil
}

// FindDue re-queries the full due set on every call; no cursor is kept, so
// a missed tick or a restart recovers naturally on the next scan.
func (r *postRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_at <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) GetTargets(ctx context.Context, postID int64) ([]string, error) {
	query := `SELECT location_id FROM post_targets WHERE post_id = $1`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var locationID string
		if err := rows.Scan(&locationID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, locationID)
	}
	return targets, rows.Err()
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
