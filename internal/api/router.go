package api

import (
	"net/http"
	"time"

	"andromeda/internal/api/handler"
	"andromeda/internal/app/service"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	issuer *security.TokenIssuer,
	authService *service.AuthService,
	adminService *service.AdminService,
	userService *service.UserService,
	studentService *service.StudentService,
	catalogService *service.CatalogService,
	trackingService *service.TrackingService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Parses a bearer token when present and parks it in the context. Routes
	// that require auth add the Authenticator middleware on top.
	r.Use(jwtauth.Verifier(issuer.Auth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)

			adminHandler := handler.NewAdminHandler(adminService, userService)
			auth.Route("/admin", adminHandler.RegisterRoutes)
		})

		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", userHandler.RegisterRoutes)

		studentHandler := handler.NewStudentHandler(studentService, trackingService)
		v1.Route("/students", studentHandler.RegisterRoutes)

		catalogHandler := handler.NewCatalogHandler(catalogService)
		v1.Route("/behaviors", catalogHandler.RegisterBehaviorRoutes)
		v1.Route("/strategies", catalogHandler.RegisterResourceRoutes(model.KindStrategy))
		v1.Route("/supports", catalogHandler.RegisterResourceRoutes(model.KindSupport))
		v1.Route("/accommodations", catalogHandler.RegisterResourceRoutes(model.KindAccommodation))
	})

	return r
}
