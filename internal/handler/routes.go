package handler

import (
	"log/slog"
	"net/http"

	"dealdesk/internal/auth"
	"dealdesk/internal/domain/services"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
	"dealdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds what the HTTP layer needs
type RouterConfig struct {
	TreeService docsysSvc.TreeService
	Resolver    docsysSvc.BreadcrumbResolver
	Tracker     docsysSvc.RequirementTracker
	Authorizer  services.DealAuthorizer
	Verifier    auth.JWTVerifier
	Logger      *slog.Logger
}

// NewRouter wires handlers and middleware.
// Order: RequestID → logging → Recovery → Auth → role/deal checks → handler.
func NewRouter(cfg RouterConfig) http.Handler {
	nodes := NewNodeHandler(cfg.TreeService, cfg.Resolver, cfg.Authorizer, cfg.Logger)
	reqs := NewRequirementHandler(cfg.Tracker, cfg.Authorizer, cfg.Logger)
	nav := NewNavigationHandler()
	access := middleware.NewDealAccess(cfg.Authorizer, cfg.Logger)
	bankOnly := middleware.BankOnly()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.AuthMiddleware(cfg.Verifier, cfg.Logger))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Deal-scoped routes
		r.Route("/deals/{dealID}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(access.Read)
				r.Get("/nodes", nodes.ListChildren)
				r.Get("/tree", nodes.GetTree)
				r.Get("/requirements", reqs.ListRequirements)
				r.Get("/requirements/summary", reqs.Summarize)
			})
			r.Group(func(r chi.Router) {
				r.Use(bankOnly, access.Write)
				r.Post("/folders", nodes.CreateFolder)
				r.Post("/files", nodes.CreateFile)
				r.Post("/requirements", reqs.CreateRequirement)
				r.Post("/requirements/seed", reqs.SeedDefaults)
			})
		})

		// Node routes authorize against the node's deal
		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Get("/", nodes.GetNode)
			r.Get("/breadcrumb", nodes.GetBreadcrumb)
			r.With(bankOnly).Patch("/", nodes.UpdateNode)
			r.With(bankOnly).Put("/content", nodes.ReplaceContent)
			r.With(bankOnly).Delete("/", nodes.DeleteNode)
		})

		// Requirement routes authorize against the requirement's deal
		r.Route("/requirements/{requirementID}", func(r chi.Router) {
			r.Get("/", reqs.GetRequirement)
			r.With(bankOnly).Patch("/", reqs.UpdateRequirement)
			r.With(bankOnly).Delete("/", reqs.DeleteRequirement)
			r.With(bankOnly).Post("/link", reqs.LinkUpload)
			r.With(bankOnly).Post("/unlink", reqs.Unlink)
		})

		r.Get("/navigation/breadcrumbs", nav.Breadcrumbs)
	})

	return r
}
