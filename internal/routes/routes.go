package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/felipekgouvea/cerg/internal/handlers"
	"github.com/felipekgouvea/cerg/internal/middleware"
)

// SetupRoutes wires every route group on the engine: the public surface
// (login, enrollment form) and the authenticated back office.
func SetupRoutes(router *gin.Engine) {
	public := router.Group("/public")
	{
		public.POST("/pre-registrations", handlers.CreatePreRegistrationHandler)
		public.GET("/services", handlers.ListServicesHandler)
	}

	router.POST("/login", handlers.LoginHandler)
	router.POST("/logout", handlers.LogoutHandler)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		setupAuthRoutes(api)
		setupAPIRoutes(api)
	}
}

func setupAuthRoutes(api *gin.RouterGroup) {
	api.GET("/profile", handlers.GetProfileHandler)

	// users_manage belongs to no role list, so only admin passes.
	api.GET("/users", middleware.RequirePermission("users_manage"), handlers.ListUsersHandler)
	api.POST("/users", middleware.RequirePermission("users_manage"), handlers.CreateUserHandler)
}
