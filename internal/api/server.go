package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinHdezVaz/Lumorah-back/internal/api/handlers"
	"github.com/KevinHdezVaz/Lumorah-back/internal/api/middleware"
	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/health"
	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
)

type Server struct {
	router   *gin.Engine
	services *services.Container
	checker  *health.Checker
}

func NewServer(svc *services.Container, checker *health.Checker) *Server {
	if !svc.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.GinMiddleware())
	router.Use(logger.GinRecovery())
	router.Use(middleware.CORS(svc.Config.CORSOrigin))

	server := &Server{
		router:   router,
		services: svc,
		checker:  checker,
	}

	server.setupRoutes()
	return server
}

// Handler exposes the router for the HTTP server and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.checker.Health)
	s.router.GET("/ready", s.checker.Ready)

	// Uploaded promotion and prize images.
	s.router.Static("/storage", s.services.Config.ImageStoragePath)

	authHandler := handlers.NewAuthHandler(s.services)
	chatHandler := handlers.NewChatHandler(s.services)
	rewardsHandler := handlers.NewRewardsHandler(s.services)

	v1 := s.router.Group("/api/v1")
	{
		// Public auth routes, rate limited per IP.
		authGroup := v1.Group("/auth")
		authGroup.Use(middleware.RateLimit(s.services.RateLimiter, auth.RateLimitAuth))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
			authGroup.POST("/facebook", authHandler.FacebookLogin)
		}

		// Public catalog listings.
		v1.GET("/promociones", rewardsHandler.ListPromociones)
		v1.GET("/premios", rewardsHandler.ListPremios)

		// Bearer token protected routes.
		protected := v1.Group("")
		protected.Use(middleware.Auth(s.services.Auth))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.Profile)
			protected.POST("/profile/name", authHandler.UpdateName)

			chat := protected.Group("/chat")
			{
				chat.GET("/sessions", chatHandler.ListSessions)
				chat.GET("/sessions/:id/messages", chatHandler.GetSessionMessages)
				chat.POST("/sessions", chatHandler.SaveSession)
				chat.DELETE("/sessions/:id", chatHandler.DeleteSession)
				chat.POST("/start-session", chatHandler.StartSession)
				chat.POST("/summarize", chatHandler.Summarize)

				limited := chat.Group("")
				limited.Use(middleware.UserRateLimit(s.services.RateLimiter, auth.RateLimitChat))
				{
					limited.POST("/send-message", chatHandler.SendMessage)
					limited.POST("/send-temporary-message", chatHandler.SendTemporaryMessage)
				}
			}

			protected.POST("/tickets", rewardsHandler.SubmitTicket)
			protected.GET("/tickets", rewardsHandler.ListTickets)
			protected.POST("/premios/:id/canjear", rewardsHandler.RedeemPremio)
			protected.GET("/puntos", rewardsHandler.GetBalance)

			protected.GET("/ws", chatHandler.ServeWs)
		}

		// Admin panel, cookie session protected.
		v1.POST("/admin/login", authHandler.AdminLogin)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(s.services.Auth))
		{
			admin.POST("/logout", authHandler.AdminLogout)

			admin.POST("/promociones", rewardsHandler.CreatePromocion)
			admin.DELETE("/promociones/:id", rewardsHandler.DeletePromocion)

			admin.POST("/premios", rewardsHandler.CreatePremio)
			admin.DELETE("/premios/:id", rewardsHandler.DeletePremio)

			admin.GET("/tickets", rewardsHandler.ListTicketsAdmin)
			admin.POST("/tickets/:id/aprobar", rewardsHandler.ApproveTicket)
			admin.POST("/tickets/:id/rechazar", rewardsHandler.RejectTicket)
		}
	}
}
