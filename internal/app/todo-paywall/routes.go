// Package todopaywall предоставляет маршруты для основного приложения.
package todopaywall

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/health"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/subscription/activate"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/todo/adminlist"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/todo/create"
	"github.com/magabrotheeeer/todo-paywall/internal/http/handlers/todo/list"
	"github.com/magabrotheeeer/todo-paywall/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/todo-paywall/internal/services/auth"
	subservice "github.com/magabrotheeeer/todo-paywall/internal/services/subscription"
	todoservice "github.com/magabrotheeeer/todo-paywall/internal/services/todo"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.AuthService, todoService *todoservice.TodoService,
	subscriptionService *subservice.SubscriptionService, storageChecker health.Checker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/todos", list.New(logger, todoService).ServeHTTP)
			r.Post("/todos", create.New(logger, todoService).ServeHTTP)
			r.Post("/subscription", activate.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription", status.New(logger, subscriptionService).ServeHTTP)

			// Группа для администраторов
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoleMiddleware(logger, "admin"))
				r.Get("/admin/todos", adminlist.New(logger, todoService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, storageChecker).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
