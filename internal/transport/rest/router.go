package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/dntt"
	"github.com/frahmantamala/business-management/internal/file"
	"github.com/frahmantamala/business-management/internal/notification"
	"github.com/frahmantamala/business-management/internal/project"
	"github.com/frahmantamala/business-management/internal/pyc"
	"github.com/frahmantamala/business-management/internal/reference"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/internal/transport/middleware"
	"github.com/frahmantamala/business-management/internal/transport/swagger"
	"github.com/frahmantamala/business-management/internal/user"
	"github.com/frahmantamala/business-management/internal/web"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Access levels: 1 Admin, 2 Director, 3 Manager, 4 Staff.
const (
	LevelDirector = 2
	LevelManager  = 3
)

type Handlers struct {
	Health       *HealthHandler
	Gateway      *auth.Gateway
	Auth         *auth.Handler
	Pages        *web.Pages
	User         *user.Handler
	Project      *project.Handler
	PYC          *pyc.Handler
	DNTT         *dntt.Handler
	Notification *notification.Handler
	File         *file.Handler
	Reference    *reference.Handler
	AccessLevels middleware.AccessLevelLookup
}

type RouterConfig struct {
	AllowedOrigins string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	director := middleware.RequireAccessLevel(h.AccessLevels, LevelDirector)
	manager := middleware.RequireAccessLevel(h.AccessLevels, LevelManager)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(h.Gateway.Middleware)
	router.Use(revalidate.Middleware)

	// OpenAPI document and Swagger UI
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, cfg.OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Pages
	router.Get("/", h.Pages.Login)
	router.Get("/login", h.Pages.Login)
	router.Get("/dashboard", h.Pages.Dashboard)
	router.Get("/auth/auth-code-error", h.Pages.AuthError)

	// OAuth
	router.Get("/auth/login", h.Auth.Login)
	router.Get("/auth/callback", h.Auth.Callback)
	router.Post("/auth/logout", h.Auth.Logout)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Get("/auth/me", h.Auth.Me)

		r.Route("/personnel", func(pr chi.Router) {
			pr.Get("/", h.User.List)
			pr.Get("/options", h.User.ListOptions)
			pr.Get("/export", h.User.Export)
			pr.Get("/{email}", h.User.Get)
			pr.Group(func(dr chi.Router) {
				dr.Use(director)
				dr.Post("/", h.User.Create)
				dr.Patch("/{email}", h.User.Update)
				dr.Delete("/{email}", h.User.Delete)
				dr.Post("/{email}/projects", h.User.AssignProject)
				dr.Delete("/{email}/projects/{projectID}", h.User.RemoveProject)
			})
		})

		r.Route("/projects", func(pr chi.Router) {
			pr.Get("/", h.Project.List)
			pr.Post("/", h.Project.Create)
			pr.Route("/{id}", func(ir chi.Router) {
				ir.Get("/", h.Project.Get)
				ir.Patch("/", h.Project.Update)
				ir.Delete("/", h.Project.Delete)
				ir.Get("/personnel", h.Project.ListPersonnel)
				ir.Get("/items", h.Project.ListItems)
				ir.Post("/items", h.Project.CreateItem)
				ir.Post("/items/bulk", h.Project.CreateItems)
				ir.Get("/items/{itemID}", h.Project.GetItem)
				ir.Patch("/items/{itemID}", h.Project.UpdateItem)
				ir.Delete("/items/{itemID}", h.Project.DeleteItem)
			})
		})

		r.Route("/pyc", func(pr chi.Router) {
			pr.Get("/", h.PYC.List)
			pr.Post("/", h.PYC.Create)
			pr.Route("/{id}", func(ir chi.Router) {
				ir.Get("/", h.PYC.Get)
				ir.Patch("/", h.PYC.Update)
				ir.Delete("/", h.PYC.Delete)
				ir.Post("/submit", h.PYC.Submit)
				ir.Post("/approve", h.PYC.Approve)
				ir.Post("/reject", h.PYC.Reject)
			})
		})

		r.Route("/dntt", func(dr chi.Router) {
			dr.Get("/", h.DNTT.List)
			dr.Post("/", h.DNTT.Create)
			dr.Route("/{id}", func(ir chi.Router) {
				ir.Get("/", h.DNTT.Get)
				ir.Patch("/", h.DNTT.Update)
				ir.Delete("/", h.DNTT.Delete)
				ir.With(manager).Post("/approve", h.DNTT.Approve)
				ir.With(manager).Post("/reject", h.DNTT.Reject)
				ir.With(director).Post("/paid", h.DNTT.MarkPaid)
			})
		})

		r.Route("/notifications", func(nr chi.Router) {
			nr.Get("/", h.Notification.List)
			nr.Post("/", h.Notification.Create)
			nr.Get("/unread-count", h.Notification.UnreadCount)
			nr.Post("/read-all", h.Notification.MarkAllRead)
			nr.Get("/{id}", h.Notification.Get)
			nr.Post("/{id}/read", h.Notification.MarkRead)
			nr.Delete("/{id}", h.Notification.Delete)
		})

		r.Route("/files", func(fr chi.Router) {
			fr.Get("/", h.File.List)
			fr.Post("/", h.File.Create)
			fr.Get("/{id}", h.File.Get)
			fr.Patch("/{id}", h.File.Update)
			fr.Delete("/{id}", h.File.Delete)
		})

		r.Route("/reference", func(rr chi.Router) {
			rr.Get("/", h.Reference.Tables)
			rr.Get("/{table}", h.Reference.List)
			rr.Get("/{table}/{id}", h.Reference.Get)
			rr.Group(func(dr chi.Router) {
				dr.Use(director)
				dr.Post("/{table}", h.Reference.Create)
				dr.Patch("/{table}/{id}", h.Reference.Update)
				dr.Delete("/{table}/{id}", h.Reference.Delete)
			})
		})
	})
}
