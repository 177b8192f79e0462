package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/render"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progress_test

type progressRepo interface {
	Points(ctx context.Context, userID int, exerciseName string) ([]Point, error)
	DistinctExercises(ctx context.Context, userID int) ([]string, error)
}

type Handler struct {
	repo     progressRepo
	renderer render.Renderer
}

func NewHandler(repo progressRepo, renderer render.Renderer) *Handler {
	return &Handler{
		repo:     repo,
		renderer: renderer,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/progress/{exercise}", handler.handleProgressPage).Methods("GET").Name("progress-page")
	mainRouter.HandleFunc("/api/progress/{exercise}", handler.handleProgressData).Methods("GET").Name("progress-data")
	mainRouter.HandleFunc("/api/exercises", handler.handleExercises).Methods("GET").Name("exercises-list")
}

type progressPageData struct {
	Session   *auth.Session
	Flash     *render.Flash
	Exercise  string
	Exercises []string
	Points    []Point
}

func (handler *Handler) handleProgressPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.page")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	exercises, err := handler.repo.DistinctExercises(ctx, session.UserID)
	if err != nil {
		log.Errorf("progress page, distinct exercises for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	exerciseName := mux.Vars(r)["exercise"]
	points, err := handler.repo.Points(ctx, session.UserID, exerciseName)
	if err != nil {
		log.Errorf("progress page, points for user %d, exercise %q: %s", session.UserID, exerciseName, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "progress.html", progressPageData{
		Session:   session,
		Flash:     render.PopFlash(w, r),
		Exercise:  exerciseName,
		Exercises: exercises,
		Points:    points,
	})
}

func (handler *Handler) handleProgressData(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.data")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	exerciseName := mux.Vars(r)["exercise"]
	points, err := handler.repo.Points(ctx, session.UserID, exerciseName)
	if err != nil {
		log.Errorf("progress data for user %d, exercise %q: %s", session.UserID, exerciseName, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	series, err := BuildSeries(points)
	if err != nil {
		if errors.Is(err, ErrBadWeight) {
			log.Errorf("progress data for user %d, exercise %q: %s", session.UserID, exerciseName, err)
			pkg.WriteJSONError(w, "corrupted workout data", http.StatusInternalServerError)
			return
		}
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	seriesJSON, err := json.Marshal(series)
	if err != nil {
		log.Errorf("progress data, marshal series: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, seriesJSON)
}

func (handler *Handler) handleExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.exercises")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	exercises, err := handler.repo.DistinctExercises(ctx, session.UserID)
	if err != nil {
		log.Errorf("exercises list for user %d: %s", session.UserID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(struct {
		Exercises []string `json:"exercises"`
	}{Exercises: exercises})
	if err != nil {
		log.Errorf("exercises list, marshal: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}
