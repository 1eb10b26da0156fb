package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/metrics"
	"github.com/sumire/charity/internal/service"
	"github.com/sumire/charity/internal/validate"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Auth      *service.AuthService
	Projects  *service.ProjectService
	Donations *service.DonationService
	Tasks     *service.TaskService
	Rates     RateSource
	Schemas   validate.SchemaValidator
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	BodyLimit string
}

// NewServer builds the echo instance with every route behind the error
// wrapper.
func NewServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewAppValidator(deps.Schemas)

	wrapper := NewErrorWrapper(deps.Logger, deps.Metrics)
	e.HTTPErrorHandler = wrapper.HTTPErrorHandler

	e.Use(RequestID())
	e.Use(RequestLogger(deps.Logger, deps.Metrics))
	e.Use(wrapper.Wrap)
	if deps.BodyLimit != "" {
		e.Use(middleware.BodyLimit(deps.BodyLimit))
	}

	e.GET("/health", func(c echo.Context) error {
		return JSON(c, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	registerRoutes(e.Group("/api/v1"), deps)
	return e
}

func registerRoutes(api *echo.Group, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	projectHandler := NewProjectHandler(deps.Projects)
	donationHandler := NewDonationHandler(deps.Donations)
	taskHandler := NewTaskHandler(deps.Tasks)
	currencyHandler := NewCurrencyHandler(deps.Rates)

	v := deps.Schemas
	authed := JWTAuth(deps.Auth)
	admin := RequireRole(domain.RoleAdmin)

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, ValidateBody[registerRequest](v))
	auth.POST("/login", authHandler.Login, ValidateBody[loginRequest](v))
	auth.POST("/refresh", authHandler.Refresh, ValidateBody[refreshRequest](v))
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/me", authHandler.Me, authed)

	projects := api.Group("/projects")
	projects.GET("", projectHandler.List, OptionalJWT(deps.Auth))
	projects.GET("/:id", projectHandler.Get, OptionalJWT(deps.Auth))
	projects.POST("", projectHandler.Create, authed, admin, ValidateBody[createProjectRequest](v))
	projects.PATCH("/:id", projectHandler.Update, authed, admin, ValidateBody[updateProjectRequest](v))
	projects.DELETE("/:id", projectHandler.Delete, authed, admin)

	projects.POST("/:id/donations", donationHandler.Create, ValidateBody[donationRequest](v))
	projects.GET("/:id/donations", donationHandler.List, authed, admin)

	tasks := api.Group("/tasks", authed, admin)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create, ValidateBody[createTaskRequest](v))
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus, ValidateBody[taskStatusRequest](v))
	tasks.DELETE("/:id", taskHandler.Delete)

	api.GET("/currency/rates", currencyHandler.Rates)
}
