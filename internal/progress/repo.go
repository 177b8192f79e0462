package progress

import (
	"context"
	"fmt"

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

// Points returns every recorded weight of the user for the given exercise,
// oldest workout first. The exercise name is matched exactly, including
// case.
func (r *Repo) Points(ctx context.Context, userID int, exerciseName string) (_ []Point, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.points")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("exercise.name", exerciseName))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT w.date, we.weight, we.sets, we.reps
			FROM workout_exercises we
			JOIN workouts w ON w.id = we.workout_id
			WHERE w.user_id = $1 AND we.exercise_name = $2
			ORDER BY w.date ASC, we.id ASC;`,
		userID, exerciseName,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2points(rows)
}

// DistinctExercises returns the names of all exercises the user has ever
// logged, alphabetically sorted.
func (r *Repo) DistinctExercises(ctx context.Context, userID int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.distinctExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT DISTINCT we.exercise_name
			FROM workout_exercises we
			JOIN workouts w ON w.id = we.workout_id
			WHERE w.user_id = $1
			ORDER BY we.exercise_name ASC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	exercises := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		exercises = append(exercises, name)
	}

	return exercises, nil
}

func rows2points(rows pgx.Rows) ([]Point, error) {
	points := make([]Point, 0)
	for rows.Next() {
		var point Point
		if err := rows.Scan(&point.Date, &point.Weight, &point.Sets, &point.Reps); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}
