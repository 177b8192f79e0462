package workouts

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

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrMalformedEntries - the submitted exercise arrays were not aligned by index
	ErrMalformedEntries = errors.New("malformed exercise entries")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add inserts the workout and all its exercise rows in a single
// transaction. Entries with an empty exercise name are silently skipped.
// On any failure nothing is committed, so no orphaned partial workout can
// be left behind.
func (r *Repo) Add(
	ctx context.Context,
	userID int,
	routineID *int,
	date time.Time,
	entries []ExerciseEntry,
) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("entries", len(entries)))

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	createdAt := time.Now()
	var workoutID int
	if err = tx.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, routine_id, date, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		userID, routineID, date, createdAt,
	).Scan(&workoutID); err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO workout_exercises (workout_id, exercise_name, sets, reps, weight)
				VALUES ($1, $2, $3, $4, $5);`,
			workoutID, entry.Name, entry.Sets, entry.Reps, entry.Weight,
		); err != nil {
			return nil, fmt.Errorf("insert workout exercise [%s]: %w", entry.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workoutID))

	return &Workout{
		ID:        workoutID,
		UserID:    userID,
		RoutineID: routineID,
		Date:      date,
		CreatedAt: createdAt,
	}, nil
}

// ListSummaries returns all workouts of the user with their exercise
// counts, newest first. The routine name is null for workouts without an
// associated routine.
func (r *Repo) ListSummaries(ctx context.Context, userID int) (_ []Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSummaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(ctx, summariesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2summaries(rows)
}

// RecentSummaries is like ListSummaries, limited to the latest `limit`
// workouts. Used by the dashboard.
func (r *Repo) RecentSummaries(ctx context.Context, userID, limit int) (_ []Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.recentSummaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(ctx, summariesQuery+" LIMIT $2", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2summaries(rows)
}

const summariesQuery = `
	SELECT w.id, w.date, r.name AS routine_name, COUNT(we.id) AS exercise_count
	FROM workouts w
	LEFT JOIN routines r ON w.routine_id = r.id
	LEFT JOIN workout_exercises we ON w.id = we.workout_id
	WHERE w.user_id = $1
	GROUP BY w.id, w.date, r.name
	ORDER BY w.date DESC, w.id DESC`

// Get returns the workout and its exercises. The ownership check is part
// of the query itself: a workout of another user is indistinguishable
// from a missing one and yields ErrWorkoutNotFound.
func (r *Repo) Get(ctx context.Context, userID, workoutID int) (_ *Workout, _ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var workout Workout
	err = r.db.QueryRow(
		ctx,
		`
			SELECT w.id, w.user_id, w.routine_id, w.date, w.created_at, r.name AS routine_name
			FROM workouts w
			LEFT JOIN routines r ON w.routine_id = r.id
			WHERE w.id = $1 AND w.user_id = $2;`,
		workoutID, userID,
	).Scan(
		&workout.ID, &workout.UserID, &workout.RoutineID,
		&workout.Date, &workout.CreatedAt, &workout.RoutineName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrWorkoutNotFound
		}
		return nil, nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, workout_id, exercise_name, sets, reps, weight
			FROM workout_exercises
			WHERE workout_id = $1
			ORDER BY id;`,
		workoutID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("exercises rows: %w", err)
	}

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.ExerciseName, &e.Sets, &e.Reps, &e.Weight,
		); err != nil {
			return nil, nil, err
		}
		exercises = append(exercises, e)
	}

	return &workout, exercises, nil
}

func (r *Repo) Count(ctx context.Context, userID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1;`,
		userID,
	).Scan(&count); err != nil {
		return -1, err
	}

	return count, nil
}

func rows2summaries(rows pgx.Rows) ([]Summary, error) {
	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Date, &s.RoutineName, &s.ExerciseCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if summaries == nil {
		summaries = make([]Summary, 0)
	}

	return summaries, nil
}
