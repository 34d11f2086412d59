package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/briangreenhill/mapty/internal/metrics"
	"github.com/briangreenhill/mapty/internal/render"
	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	codeBadRequest     = "BAD_REQUEST"
	codeInvalidInput   = "INVALID_INPUT"
	codeNotFound       = "NOT_FOUND"
	codeMapUnavailable = "MAP_UNAVAILABLE"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createResponse struct {
	Workout WorkoutJSON      `json:"workout"`
	Warning string           `json:"warning,omitempty"`
	Notices []tracker.Notice `json:"notices,omitempty"`
}

func NewAPI(logger *slog.Logger, activityService *Service, gatherer prometheus.Gatherer, uiDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/workouts", handleListWorkouts(logger, activityService))
		r.Get("/workouts.html", handleListWorkoutsHTML(logger, activityService))
		r.Post("/workouts", handleCreateWorkout(logger, activityService))
		r.Get("/workouts/{id}", handleGetWorkout(logger, activityService))
		r.Post("/workouts/{id}/select", handleSelectWorkout(logger, activityService))
		r.Get("/map", handleGetMap(logger, activityService))
	})
	r.Handle("/metrics", metrics.Handler(gatherer))
	r.Handle("/*", http.FileServer(http.Dir(uiDir)))

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("Request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("Error encoding response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Error writing response", slog.Any("error", err))
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, code, message string) {
	writeJSON(logger, w, status, apiError{Code: code, Message: message})
}

func handleListWorkouts(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workouts := activityService.List()
		out := make([]WorkoutJSON, 0, len(workouts))
		for _, wo := range workouts {
			out = append(out, NewWorkoutJSON(wo))
		}
		writeJSON(logger, w, http.StatusOK, out)
	}
}

func handleListWorkoutsHTML(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := render.HTMLList(&buf, activityService.List()); err != nil {
			logger.Error("Error rendering workouts", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			logger.Error("Error writing workouts", slog.Any("error", err))
		}
	}
}

func handleCreateWorkout(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(logger, w, http.StatusBadRequest, codeBadRequest, "request body must be a workout form")
			return
		}

		res, err := activityService.Add(r.Context(), req)
		var verr *workout.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(logger, w, http.StatusUnprocessableEntity, codeInvalidInput, verr.Message())
			return
		case errors.Is(err, tracker.ErrMapUnavailable):
			writeError(logger, w, http.StatusServiceUnavailable, codeMapUnavailable, "the map is unavailable, workouts cannot be added")
			return
		case err != nil:
			writeError(logger, w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}

		resp := createResponse{Workout: NewWorkoutJSON(res.Workout), Notices: res.Notices}
		if !res.Saved {
			resp.Warning = "Changes not saved."
		}
		writeJSON(logger, w, http.StatusCreated, resp)
	}
}

func handleGetWorkout(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		wo, ok := activityService.Get(id)
		if !ok {
			writeError(logger, w, http.StatusNotFound, codeNotFound, "workout not found: "+id)
			return
		}
		writeJSON(logger, w, http.StatusOK, NewWorkoutJSON(wo))
	}
}

func handleSelectWorkout(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, err := activityService.Select(id)
		switch {
		case errors.Is(err, tracker.ErrNotFound):
			writeError(logger, w, http.StatusNotFound, codeNotFound, "workout not found: "+id)
			return
		case errors.Is(err, tracker.ErrMapUnavailable):
			writeError(logger, w, http.StatusServiceUnavailable, codeMapUnavailable, "the map is unavailable")
			return
		case err != nil:
			logger.Error("Error selecting workout", slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(logger, w, http.StatusOK, activityService.Map())
	}
}

func handleGetMap(logger *slog.Logger, activityService *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusOK, activityService.Map())
	}
}
