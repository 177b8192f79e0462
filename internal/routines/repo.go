package routines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, userID int, name, description string) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	createdAt := time.Now()
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO routines (user_id, name, description, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		userID, name, description, createdAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("routine.id", id))

	return &Routine{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   createdAt,
	}, nil
}

// List returns all routines of the user, newest first.
func (r *Repo) List(ctx context.Context, userID int) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, name, description, created_at
			FROM routines
			WHERE user_id = $1
			ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2routines(rows)
}

func rows2routines(rows pgx.Rows) ([]Routine, error) {
	var routines []Routine
	for rows.Next() {
		var routine Routine
		if err := rows.Scan(
			&routine.ID, &routine.UserID, &routine.Name,
			&routine.Description, &routine.CreatedAt,
		); err != nil {
			return nil, err
		}
		routines = append(routines, routine)
	}

	if routines == nil {
		routines = make([]Routine, 0)
	}

	return routines, nil
}
