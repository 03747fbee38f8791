package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rjschwei/public-cloud-info-service/internal/pint"
	"github.com/rjschwei/public-cloud-info-service/internal/render"
)

// RouterOptions carries the dependencies and tunables for the HTTP router.
type RouterOptions struct {
	Service           pint.Service
	Logger            zerolog.Logger
	AllowedOrigins    []string
	RequestsPerMinute int
	RedirectURL       string
}

// Router builds the full HTTP surface: the versioned lookup routes plus
// health, readiness, and metrics endpoints.
func Router(opts RouterOptions) http.Handler {
	h := &handler{
		svc:         opts.Service,
		log:         opts.Logger,
		redirectURL: opts.RedirectURL,
	}

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = 600
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(opts.Logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(rpm, time.Minute))
	r.Use(formatSuffix)

	// registered before the /v1 subrouter so it inherits the handlers;
	// anything unmatched is a malformed lookup, reported as an empty 400
	r.NotFound(badRequest)
	r.MethodNotAllowed(badRequest)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Get("/", h.redirect)
	r.Get("/package-version", h.packageVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/providers", h.providers)
		r.Get("/images/states", h.imageStates)

		r.Route("/{provider}", func(r chi.Router) {
			r.Get("/dataversion", h.dataVersion)
			r.Get("/regions", h.regions)
			r.Get("/servers/types", h.serverTypes)
			r.Get("/servers/{serverType}", h.serversForType)
			r.Get("/images/{state}", h.imagesForState)
			r.Get("/{category}", h.category)
			r.Get("/{region}/servers/{serverType}", h.serversForRegionAndType)
			r.Get("/{region}/images/{state}", h.imagesForRegionAndState)
			r.Get("/{region}/{category}", h.categoryForRegion)
		})
	})

	return r
}

func badRequest(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// formatSuffix strips a trailing .json or .xml from versioned paths and
// records the requested representation. Paths outside /v1/ keep their
// suffix and fall through to the catch-all.
func formatSuffix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := render.FormatJSON

		if strings.HasPrefix(r.URL.Path, "/v1/") {
			switch {
			case strings.HasSuffix(r.URL.Path, ".json"):
				r.URL.Path = strings.TrimSuffix(r.URL.Path, ".json")
			case strings.HasSuffix(r.URL.Path, ".xml"):
				r.URL.Path = strings.TrimSuffix(r.URL.Path, ".xml")
				format = render.FormatXML
			}
		}

		next.ServeHTTP(w, r.WithContext(render.WithFormat(r.Context(), format)))
	})
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
