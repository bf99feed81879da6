package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileStatusQuery = `SELECT subscription_status FROM user_profiles WHERE id = $1`

// Querier is the subset of *pgxpool.Pool used here
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresResolver reads subscription status from the profile table
// (Supabase user_profiles)
type PostgresResolver struct {
	db Querier
}

func NewPostgresResolver(db Querier) *PostgresResolver {
	return &PostgresResolver{db: db}
}

// OpenPool connects to the profile database and verifies the connection
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging profile database: %w", err)
	}
	return pool, nil
}

// IsPremium returns false without error when the profile does not exist
func (r *PostgresResolver) IsPremium(ctx context.Context, userID string) (bool, error) {
	var status *string
	err := r.db.QueryRow(ctx, profileStatusQuery, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying subscription status: %w", err)
	}
	if status == nil {
		return false, nil
	}
	return IsPremiumStatus(*status), nil
}
