package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	appmw "herbarium/internal/middleware"
	httprouters "herbarium/internal/transport/http"
	"herbarium/internal/transport/http/dto/response"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m            *http.ServeMux
	log          *slog.Logger
	e            *echo.Echo
	routers      *httprouters.Routers
	host         string
	port         string
	uploadsDir   string
	loginLimiter *appmw.RateLimiter
	apiLimiter   *appmw.RateLimiter
}

func New(log *slog.Logger, sessionSecret, host, port, uploadsDir string, loginPerMinute, apiPerMinute int, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionSecret))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:            mux,
		log:          log,
		e:            e,
		routers:      routers,
		host:         host,
		port:         port,
		uploadsDir:   uploadsDir,
		loginLimiter: appmw.NewRateLimiter(loginPerMinute, time.Minute),
		apiLimiter:   appmw.NewRateLimiter(apiPerMinute, time.Minute),
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// adminOnlyMiddleware пропускает запросы с действительным access-токеном
// администратора в заголовке Authorization либо с cookie-сессией,
// установленной при входе.
func (s *Server) adminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			subject, err := s.routers.AuthService.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
			}

			c.Set("subject", subject)
			return next(c)
		}

		sess, err := session.Get("session", c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		subject, ok := sess.Values["subject"].(string)
		if !ok || subject == "" {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		c.Set("subject", subject)
		return next(c)
	}
}

func (s *Server) BuildRouters() {
	api := s.e.Group("/api/v1", s.apiLimiter.Middleware("api"))
	{
		admin := api.Group("/admin")
		{
			admin.POST("/login", s.routers.Login, s.loginLimiter.Middleware("login"))
			admin.POST("/refresh", s.routers.Refresh)
			admin.POST("/logout", s.routers.Logout, s.adminOnlyMiddleware)
			admin.GET("/check", s.routers.CheckAuth, s.adminOnlyMiddleware)
		}

		api.GET("/health", s.routers.Health)

		herbs := api.Group("/herbs")
		{
			herbs.GET("", s.routers.ListHerbs)
			herbs.GET("/:slug", s.routers.GetHerb)
			herbs.POST("", s.routers.CreateHerb, s.adminOnlyMiddleware)
			herbs.PATCH("/:slug", s.routers.UpdateHerb, s.adminOnlyMiddleware)
			herbs.DELETE("/:slug", s.routers.DeleteHerb, s.adminOnlyMiddleware)

			herbs.GET("/:slug/sections", s.routers.GetSections)
			herbs.PUT("/:slug/sections", s.routers.ReplaceSections, s.adminOnlyMiddleware)
			herbs.POST("/:slug/sections", s.routers.AddSection, s.adminOnlyMiddleware)
			herbs.POST("/:slug/sections/reorder", s.routers.ReorderSections, s.adminOnlyMiddleware)
			herbs.GET("/:slug/sections/edit", s.routers.SectionsEditView, s.adminOnlyMiddleware)
			herbs.PUT("/:slug/sections/edit", s.routers.SaveSectionsEditView, s.adminOnlyMiddleware)
			herbs.PATCH("/:slug/sections/:section_id", s.routers.UpdateSection, s.adminOnlyMiddleware)
			herbs.DELETE("/:slug/sections/:section_id", s.routers.RemoveSection, s.adminOnlyMiddleware)

			herbs.GET("/:slug/images", s.routers.ListImages)
			herbs.POST("/:slug/images", s.routers.UploadImages, s.adminOnlyMiddleware)
			herbs.POST("/:slug/images/reorder", s.routers.ReorderImages, s.adminOnlyMiddleware)
			herbs.PUT("/:slug/images/primary", s.routers.SetPrimaryImage, s.adminOnlyMiddleware)
			herbs.PATCH("/:slug/images/:image_id/alt", s.routers.UpdateImageAlt, s.adminOnlyMiddleware)
			herbs.DELETE("/:slug/images/:image_id", s.routers.DeleteImage, s.adminOnlyMiddleware)
		}
	}

	s.e.GET("/health", s.routers.Liveness)

	s.e.Static("/uploads", s.uploadsDir)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
