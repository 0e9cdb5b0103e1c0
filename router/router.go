package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/controllers"
	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/services"
)

// Deps carries the shared services the handlers need.
type Deps struct {
	DB            *gorm.DB
	Hub           *realtime.Hub
	Sessions      *services.SessionService
	Orders        *services.OrderService
	Payments      *services.PaymentService
	Subscriptions *services.SubscriptionService
	GatewayKeyID  string
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// gin snapshots each route's handler chain at registration time, so
	// the global limiter must be attached before any route below.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	authCtrl := controllers.NewAuthController(deps.DB)
	restaurantCtrl := controllers.NewRestaurantController(deps.DB)
	categoryCtrl := controllers.NewCategoryController(deps.DB)
	menuCtrl := controllers.NewMenuController(deps.DB)
	sessionCtrl := controllers.NewSessionController(deps.DB, deps.Sessions)
	orderCtrl := controllers.NewOrderController(deps.DB, deps.Orders)
	paymentCtrl := controllers.NewPaymentController(deps.DB, deps.Payments, deps.GatewayKeyID)
	adminCtrl := controllers.NewAdminController(deps.DB, deps.Subscriptions)
	realtimeCtrl := controllers.NewRealtimeController(deps.DB, deps.Hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
	}
	api.GET("/auth/me", middlewares.AuthMiddleware(), authCtrl.GetProfile)

	// Customer-facing, no login: the session token is the credential.
	api.GET("/restaurants/:slug/menu", restaurantCtrl.GetPublicMenu)
	api.POST("/sessions/open", sessionCtrl.OpenSession)
	api.GET("/sessions/:token", sessionCtrl.GetSession)
	api.POST("/sessions/:token/close", sessionCtrl.CloseSession)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/payment/config", paymentCtrl.GatewayConfig)
	api.POST("/payment/verify", paymentCtrl.VerifyOnlinePayment)
	api.GET("/settings/plan", adminCtrl.GetPlanSettings)
	api.GET("/realtime/ws/session/:token", realtimeCtrl.SessionWS)

	// ----------------------------------------------------------------
	//                      OWNER ROUTES
	// ----------------------------------------------------------------
	owner := api.Group("/")
	owner.Use(middlewares.AuthMiddleware())
	owner.Use(middlewares.RequireRole("owner"))
	owner.Use(middlewares.RequireRestaurant(deps.DB))
	{
		owner.GET("/restaurants/mine", restaurantCtrl.GetMine)
		owner.PATCH("/restaurants/mine", restaurantCtrl.UpdateMine)

		owner.POST("/categories", categoryCtrl.CreateCategory)
		owner.GET("/categories", categoryCtrl.GetCategories)
		owner.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
		owner.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

		owner.POST("/menu-items", menuCtrl.CreateMenuItem)
		owner.GET("/menu-items", menuCtrl.GetMenuItems)
		owner.PATCH("/menu-items/:item_id", menuCtrl.UpdateMenuItem)
		owner.PATCH("/menu-items/:item_id/availability", menuCtrl.ToggleAvailability)
		owner.DELETE("/menu-items/:item_id", menuCtrl.DeleteMenuItem)

		owner.GET("/orders", orderCtrl.GetAllOrders)
		owner.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		owner.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		owner.POST("/payment/counter/:session_id/confirm", paymentCtrl.ConfirmCounterPayment)

		owner.GET("/realtime/orders", realtimeCtrl.PollOrders)
		owner.GET("/realtime/sessions", realtimeCtrl.PollSessions)
	}

	// WebSocket upgrade cannot carry an Authorization header.
	api.GET("/realtime/ws/restaurant",
		middlewares.WebSocketAuthMiddleware(),
		middlewares.RequireRole("owner"),
		middlewares.RequireRestaurant(deps.DB),
		realtimeCtrl.RestaurantWS)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireRole("super_admin"))
	{
		admin.GET("/users", adminCtrl.GetUsers)
		admin.PATCH("/users/:user_id/approve", adminCtrl.ApproveUser)
		admin.PATCH("/users/:user_id/reject", adminCtrl.RejectUser)
		admin.POST("/users/:user_id/subscription", adminCtrl.GrantSubscription)
		admin.PATCH("/users/:user_id/subscription/extend", adminCtrl.ExtendSubscription)
		admin.DELETE("/users/:user_id/subscription", adminCtrl.RevokeSubscription)
		admin.PUT("/settings", adminCtrl.UpsertSettings)
	}

	return r
}
