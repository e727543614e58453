package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

// NewLogger returns the JSON logger in ECS layout used by the request logger
// and the rest of the service.
func NewLogger(app, version, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}

func NewRouter(
	cfg RouterConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	storeMiddleware *middleware.StoreMiddleware,
	attendanceHandler AttendanceHandler,
	ledgerHandler LedgerHandler,
	payrollHandler PayrollHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// The one-time token is the credential here.
		r.Post("/attendance/qr/use", attendanceHandler.RedeemLink)
		r.Post("/attendance/qr/use/{token}", attendanceHandler.RedeemLink)

		// EventSource cannot send headers; the stream checks its own short-lived token.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.RequireEmployeeProfile)
				r.Post("/check", attendanceHandler.Check)
				r.Post("/link", attendanceHandler.IssueLink)
				r.Get("/status", attendanceHandler.Status)
				r.Get("/logs", attendanceHandler.Logs)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
			})

			// Manager / owner
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Use(middleware.RequireStore)

				r.Route("/employees/{id}", func(r chi.Router) {
					r.Use(storeMiddleware.RequireStoreEmployee)
					r.Get("/ledger", ledgerHandler.List)
					r.Post("/ledger", ledgerHandler.Record)
					r.Get("/payrolls", payrollHandler.List)
					r.Post("/payrolls/generate", payrollHandler.Generate)
					r.Post("/payrolls/mark-paid", payrollHandler.MarkPaid)
				})

				r.Route("/payrolls/{id}", func(r chi.Router) {
					r.Use(storeMiddleware.RequireStorePayroll)
					r.Get("/", payrollHandler.Get)
					r.Patch("/", payrollHandler.Update)
					r.Delete("/", payrollHandler.Delete)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})

	return r
}
