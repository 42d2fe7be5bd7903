package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	authhandler "github.com/pcheng/weather-qna/backend/internal/handler/auth"
	chathandler "github.com/pcheng/weather-qna/backend/internal/handler/chat"
	"github.com/pcheng/weather-qna/backend/internal/middleware"
	authservice "github.com/pcheng/weather-qna/backend/internal/service/auth"
	"github.com/pcheng/weather-qna/backend/internal/service/qa"
	"github.com/pcheng/weather-qna/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(authSvc *authservice.Service, qaSvc *qa.Service, reg *prometheus.Registry, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	authHandler := authhandler.New(authSvc)
	chatHandler := chathandler.New(qaSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health/", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Server is up!"})
		})

		authHandler.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Session(authSvc))
			chatHandler.RegisterRoutes(protected)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
