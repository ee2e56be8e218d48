package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gomembros/docs" // Registra a especificação Swagger
	"gomembros/internal/api/catalog"
	"gomembros/internal/api/member"
	"gomembros/internal/domain"
	"gomembros/internal/pkg/cache"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/pkg/middleware"
)

// Options reúne a infraestrutura que o roteador aplica como middleware.
type Options struct {
	TokenService         middleware.TokenService
	Cache                cache.Client
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
	AdminRoles           []domain.UserRole
	Metrics              http.Handler
	Logger               logger.Logger
	// TrustProxy liga o chimw.RealIP. Só deve valer atrás de um proxy que reescreve
	// X-Forwarded-For; sem ele o cliente escolheria a própria chave do rate limit.
	TrustProxy bool
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(memberHandler *member.Handler, catalogHandler *catalog.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	// --- 1. Health check, métricas e documentação ---
	r.Get("/ping", PingHandler)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. API v1 (autenticada e com rate limit) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(opts.Cache, opts.RateLimitMaxRequests, opts.RateLimitPeriod, opts.Logger))
		r.Use(middleware.NewAuthMiddleware(opts.TokenService))

		r.Get("/catalog", catalogHandler.GetCatalogHandler)

		r.Get("/registration/next", memberHandler.NextRegistrationHandler)
		r.Post("/registration/normalize", memberHandler.NormalizeRegistrationHandler)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", memberHandler.ListMembersHandler)
			r.Post("/", memberHandler.CreateMemberHandler)
			r.Get("/draft", memberHandler.DraftMemberHandler)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", memberHandler.GetMemberByIDHandler)
				r.Put("/", memberHandler.UpdateMemberHandler)
				r.With(middleware.PermissionMiddleware(opts.AdminRoles...)).Delete("/", memberHandler.DeleteMemberHandler)

				r.Get("/notes", memberHandler.ListNotesHandler)
				r.Post("/notes", memberHandler.AddNoteHandler)
			})
		})

		r.Get("/reports/members", memberHandler.StatsHandler)
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
