package workouts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/render"
	"github.com/2beens/fittrack/internal/routines"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

const dashboardRecentWorkouts = 5

type workoutsRepo interface {
	Add(ctx context.Context, userID int, routineID *int, date time.Time, entries []ExerciseEntry) (*Workout, error)
	ListSummaries(ctx context.Context, userID int) ([]Summary, error)
	RecentSummaries(ctx context.Context, userID, limit int) ([]Summary, error)
	Get(ctx context.Context, userID, workoutID int) (*Workout, []Exercise, error)
	Count(ctx context.Context, userID int) (int, error)
}

type routinesLister interface {
	List(ctx context.Context, userID int) ([]routines.Routine, error)
}

type Handler struct {
	repo     workoutsRepo
	routines routinesLister
	renderer render.Renderer
	metrics  *metrics.Manager
}

func NewHandler(
	repo workoutsRepo,
	routinesRepo routinesLister,
	renderer render.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:     repo,
		routines: routinesRepo,
		renderer: renderer,
		metrics:  metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/dashboard", handler.handleDashboard).Methods("GET").Name("dashboard")
	mainRouter.HandleFunc("/log_workout", handler.handleLogWorkoutPage).Methods("GET").Name("log-workout-page")
	mainRouter.HandleFunc("/log_workout", handler.handleLogWorkout).Methods("POST").Name("log-workout")
	mainRouter.HandleFunc("/history", handler.handleHistory).Methods("GET").Name("history")
	mainRouter.HandleFunc("/workout/{id}", handler.handleDetail).Methods("GET").Name("workout-detail")
}

type dashboardPageData struct {
	Session        *auth.Session
	Flash          *render.Flash
	Routines       []routines.Routine
	RecentWorkouts []Summary
	TotalWorkouts  int
}

type logWorkoutPageData struct {
	Session  *auth.Session
	Flash    *render.Flash
	Routines []routines.Routine
}

type historyPageData struct {
	Session  *auth.Session
	Flash    *render.Flash
	Workouts []Summary
}

type detailPageData struct {
	Session   *auth.Session
	Flash     *render.Flash
	Workout   *Workout
	Exercises []Exercise
}

func (handler *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.dashboard")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	userRoutines, err := handler.routines.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("dashboard, list routines for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	recentWorkouts, err := handler.repo.RecentSummaries(ctx, session.UserID, dashboardRecentWorkouts)
	if err != nil {
		log.Errorf("dashboard, recent workouts for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	totalWorkouts, err := handler.repo.Count(ctx, session.UserID)
	if err != nil {
		log.Errorf("dashboard, workouts count for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "dashboard.html", dashboardPageData{
		Session:        session,
		Flash:          render.PopFlash(w, r),
		Routines:       userRoutines,
		RecentWorkouts: recentWorkouts,
		TotalWorkouts:  totalWorkouts,
	})
}

func (handler *Handler) handleLogWorkoutPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logWorkoutPage")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	userRoutines, err := handler.routines.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("log workout page, list routines for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "log_workout.html", logWorkoutPageData{
		Session:  session,
		Flash:    render.PopFlash(w, r),
		Routines: userRoutines,
	})
}

func (handler *Handler) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logWorkout")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("log workout failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	var routineID *int
	if routineIDStr := r.Form.Get("routine_id"); routineIDStr != "" {
		id, err := strconv.Atoi(routineIDStr)
		if err != nil {
			render.SetFlash(w, "error", "Unknown routine")
			http.Redirect(w, r, "/log_workout", http.StatusSeeOther)
			return
		}
		routineID = &id
	}

	date, err := time.Parse("2006-01-02", r.Form.Get("date"))
	if err != nil {
		render.SetFlash(w, "error", "Invalid workout date")
		http.Redirect(w, r, "/log_workout", http.StatusSeeOther)
		return
	}

	entries, err := parseExerciseEntries(r)
	if err != nil {
		log.Tracef("log workout, parse exercise entries: %s", err)
		render.SetFlash(w, "error", "Malformed workout form")
		http.Redirect(w, r, "/log_workout", http.StatusSeeOther)
		return
	}

	workout, err := handler.repo.Add(ctx, session.UserID, routineID, date, entries)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			render.SetFlash(w, "error", "Unknown routine")
			http.Redirect(w, r, "/log_workout", http.StatusSeeOther)
			return
		}
		log.Errorf("log workout for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsLogged.Inc()
	log.Debugf("new workout %d for user %d, %d exercise entries", workout.ID, session.UserID, len(entries))

	render.SetFlash(w, "success", "Workout logged successfully!")
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// parseExerciseEntries reads the parallel exercise_name[]/sets[]/reps[]/
// weight[] form arrays, aligned by index. Rows with an empty exercise name
// are dropped without looking at their sets/reps, unequal array lengths
// make the whole submission malformed.
func parseExerciseEntries(r *http.Request) ([]ExerciseEntry, error) {
	names := r.Form["exercise_name[]"]
	setsList := r.Form["sets[]"]
	repsList := r.Form["reps[]"]
	weights := r.Form["weight[]"]

	if len(setsList) != len(names) || len(repsList) != len(names) || len(weights) != len(names) {
		return nil, ErrMalformedEntries
	}

	entries := make([]ExerciseEntry, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		sets, err := strconv.Atoi(setsList[i])
		if err != nil {
			return nil, ErrMalformedEntries
		}
		reps, err := strconv.Atoi(repsList[i])
		if err != nil {
			return nil, ErrMalformedEntries
		}
		entries = append(entries, ExerciseEntry{
			Name:   name,
			Sets:   sets,
			Reps:   reps,
			Weight: weights[i],
		})
	}

	return entries, nil
}

func (handler *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	summaries, err := handler.repo.ListSummaries(ctx, session.UserID)
	if err != nil {
		log.Errorf("history for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "history.html", historyPageData{
		Session:  session,
		Flash:    render.PopFlash(w, r),
		Workouts: summaries,
	})
}

func (handler *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.detail")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		render.SetFlash(w, "error", "Workout not found")
		http.Redirect(w, r, "/history", http.StatusSeeOther)
		return
	}

	workout, exercises, err := handler.repo.Get(ctx, session.UserID, workoutID)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			render.SetFlash(w, "error", "Workout not found")
			http.Redirect(w, r, "/history", http.StatusSeeOther)
			return
		}
		log.Errorf("workout %d detail for user %d: %s", workoutID, session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "workout_detail.html", detailPageData{
		Session:   session,
		Flash:     render.PopFlash(w, r),
		Workout:   workout,
		Exercises: exercises,
	})
}
