// Package api wires HTTP routes to the service layer and translates service
// errors into HTTP responses.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kingstonroots/yaadstory/internal/middleware"
	"github.com/kingstonroots/yaadstory/internal/services"
	"github.com/kingstonroots/yaadstory/internal/utils"
)

// BuildInfo carries version metadata stamped at build time.
type BuildInfo struct {
	Commit    string
	BuildTime string
}

type Router struct {
	auth          *services.AuthService
	questions     *services.QuestionService
	responses     *services.ResponseService
	transcription *services.TranscriptionService
	tokens        *middleware.TokenAuth
	log           *zap.Logger
	build         BuildInfo
}

func NewRouter(
	auth *services.AuthService,
	questions *services.QuestionService,
	responses *services.ResponseService,
	transcription *services.TranscriptionService,
	tokens *middleware.TokenAuth,
	log *zap.Logger,
	build BuildInfo,
) *Router {
	return &Router{
		auth:          auth,
		questions:     questions,
		responses:     responses,
		transcription: transcription,
		tokens:        tokens,
		log:           log,
		build:         build,
	}
}

// Handler assembles the route tree. mediaDir is served under /media; when
// staticDir is set the built frontend is served for everything else.
func (rt *Router) Handler(staticDir, mediaDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(rt.log))
	r.Use(middleware.CORS)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Locale)
	r.Use(rt.tokens.WithAuth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)
		r.Get("/questions", rt.handleListQuestions)
		r.Post("/transcribe", rt.handleTranscribe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/responses", rt.handleSaveResponse)
			r.Get("/responses/{id}", rt.handleGetResponse)
			r.Get("/user/responses", rt.handleListMyResponses)
			r.Delete("/user/responses", rt.handleDeleteMyResponses)
			r.Post("/upload-audio", rt.handleUploadAudio)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/admin/responses", rt.handleAdminResponses)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		locale := middleware.LocaleFromContext(req.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"name":   "Yaadstory API",
			"locale": locale,
			"msg":    utils.T(locale, "health.ok"),
		})
	})
	r.Get("/version", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"commit":     rt.build.Commit,
			"build_time": rt.build.BuildTime,
		})
	})

	if mediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
		r.Handle("/media/*", fs)
	}
	if staticDir != "" {
		r.NotFound(http.FileServer(http.Dir(staticDir)).ServeHTTP)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service error codes to HTTP statuses. Anything outside the
// taxonomy is a dependency failure: it is logged and answered with a generic
// 500 so internals never leak to clients.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid, services.ErrorConflict:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorUnavailable:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]string{"error": se.Message})
		return
	}
	rt.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
