package routines

import (
	"context"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/render"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routines_test

type routinesRepo interface {
	Add(ctx context.Context, userID int, name, description string) (*Routine, error)
	List(ctx context.Context, userID int) ([]Routine, error)
}

type Handler struct {
	repo     routinesRepo
	renderer render.Renderer
	metrics  *metrics.Manager
}

func NewHandler(
	repo routinesRepo,
	renderer render.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:     repo,
		renderer: renderer,
		metrics:  metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/routines", handler.handleList).Methods("GET").Name("routines")
	mainRouter.HandleFunc("/add_routine", handler.handleAddPage).Methods("GET").Name("add-routine-page")
	mainRouter.HandleFunc("/add_routine", handler.handleAdd).Methods("POST").Name("add-routine")
}

type routinesPageData struct {
	Session  *auth.Session
	Flash    *render.Flash
	Routines []Routine
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	userRoutines, err := handler.repo.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("list routines for user %d: %s", session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, "routines.html", routinesPageData{
		Session:  session,
		Flash:    render.PopFlash(w, r),
		Routines: userRoutines,
	})
}

func (handler *Handler) handleAddPage(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	handler.renderer.Render(w, "add_routine.html", routinesPageData{
		Session: session,
		Flash:   render.PopFlash(w, r),
	})
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.add")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add routine failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	name := r.Form.Get("name")
	if name == "" {
		render.SetFlash(w, "error", "Routine name is required")
		http.Redirect(w, r, "/add_routine", http.StatusSeeOther)
		return
	}

	routine, err := handler.repo.Add(ctx, session.UserID, name, r.Form.Get("description"))
	if err != nil {
		log.Errorf("add routine [%s] for user %d: %s", name, session.UserID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRoutinesCreated.Inc()
	log.Debugf("new routine %d [%s] for user %d", routine.ID, routine.Name, session.UserID)

	render.SetFlash(w, "success", "Routine created successfully!")
	http.Redirect(w, r, "/routines", http.StatusSeeOther)
}
