package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/listforge/listforge/internal/models"
)

type ConnectionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, conn *models.ListingConnection) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*models.ListingConnection, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ListingConnection, error)
	SetToken(ctx context.Context, userID int64, conn *models.ListingConnection) error
	Remove(ctx context.Context, id int64) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, user_id, account_id, account_name, access_token, refresh_token, token_expires_at, created_at, updated_at`

func (r *connectionRepository) Create(ctx context.Context, tx *sql.Tx, conn *models.ListingConnection) (int64, error) {
	query := `
		INSERT INTO listing_connections (user_id, account_id, account_name, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, conn.UserID, conn.AccountID, conn.AccountName,
			conn.AccessToken, conn.RefreshToken, conn.TokenExpiresAt).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, conn.UserID, conn.AccountID, conn.AccountName,
			conn.AccessToken, conn.RefreshToken, conn.TokenExpiresAt).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *connectionRepository) GetByUserID(ctx context.Context, userID int64) (*models.ListingConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM listing_connections WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var conn models.ListingConnection
	err := row.Scan(&conn.ID, &conn.UserID, &conn.AccountID, &conn.AccountName,
		&conn.AccessToken, &conn.RefreshToken, &conn.TokenExpiresAt, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &conn, nil
}

func (r *connectionRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ListingConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM listing_connections WHERE token_expires_at BETWEEN $1 AND $2`

	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conns []*models.ListingConnection
	for rows.Next() {
		var conn models.ListingConnection
		err := rows.Scan(&conn.ID, &conn.UserID, &conn.AccountID, &conn.AccountName,
			&conn.AccessToken, &conn.RefreshToken, &conn.TokenExpiresAt, &conn.CreatedAt, &conn.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conns = append(conns, &conn)
	}
	return conns, rows.Err()
}

func (r *connectionRepository) SetToken(ctx context.Context, userID int64, conn *models.ListingConnection) error {
	query := `
		UPDATE listing_connections
		SET access_token = $1,
			refresh_token = $2,
			token_expires_at = $3,
			updated_at = $4
		WHERE user_id = $5
	`
	_, err := r.db.ExecContext(ctx, query, conn.AccessToken, conn.RefreshToken, conn.TokenExpiresAt, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM listing_connections WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
