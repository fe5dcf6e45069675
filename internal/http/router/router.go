package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/config"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/middleware"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	chatHandler *handlers.ChatHandler,
	offerHandler *handlers.OfferHandler,
	workOfferHandler *handlers.WorkOfferHandler,
	orderHandler *handlers.OrderHandler,
	claimHandler *handlers.ClaimHandler,
	mediaHandler *handlers.MediaHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Websocket проверяет токен сам: браузерный WebSocket API не умеет
	// выставлять заголовок Authorization.
	api.GET("/ws", wsHandler.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/chats", chatHandler.ListMyChats)
		protected.POST("/chats", chatHandler.CreateChat)
		protected.GET("/chats/:id", middleware.UUIDValidator("id"), chatHandler.GetChat)
		protected.DELETE("/chats/:id", middleware.UUIDValidator("id"), chatHandler.DeleteChat)
		protected.GET("/chats/:id/messages", middleware.UUIDValidator("id"), chatHandler.ListMessages)
		protected.POST("/chats/:id/messages", middleware.UUIDValidator("id"), chatHandler.SendMessage)
		protected.POST("/chats/:id/read", middleware.UUIDValidator("id"), chatHandler.MarkRead)

		protected.POST("/chats/:id/offers", middleware.UUIDValidator("id"), offerHandler.SendOffer)
		protected.POST("/offers/:messageId/accept", middleware.UUIDValidator("messageId"), offerHandler.AcceptOffer)
		protected.POST("/offers/:messageId/reject", middleware.UUIDValidator("messageId"), offerHandler.RejectOffer)

		protected.POST("/chats/:id/work-offers", middleware.UUIDValidator("id"), workOfferHandler.SendWorkOffer)
		protected.POST("/work-offers/:messageId/accept", middleware.UUIDValidator("messageId"), workOfferHandler.Accept)
		protected.POST("/work-offers/:messageId/reject", middleware.UUIDValidator("messageId"), workOfferHandler.Reject)
		protected.POST("/work-offers/:messageId/ready", middleware.UUIDValidator("messageId"), workOfferHandler.MarkReady)
		protected.POST("/work-offers/:messageId/deliver", middleware.UUIDValidator("messageId"), workOfferHandler.Deliver)
		protected.POST("/work-offers/:messageId/delivery/accept", middleware.UUIDValidator("messageId"), workOfferHandler.AcceptDelivery)
		protected.POST("/work-offers/:messageId/delivery/reject", middleware.UUIDValidator("messageId"), workOfferHandler.RejectDelivery)

		protected.GET("/orders/my", orderHandler.ListMyOrders)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		protected.POST("/orders/:id/submit", middleware.UUIDValidator("id"), orderHandler.Submit)
		protected.POST("/orders/:id/approve", middleware.UUIDValidator("id"), orderHandler.Approve)
		protected.POST("/orders/:id/revision", middleware.UUIDValidator("id"), orderHandler.RequestRevision)
		protected.POST("/orders/:id/deadline", middleware.UUIDValidator("id"), orderHandler.ExtendDeadline)
		protected.POST("/orders/:id/cancel-overdue", middleware.UUIDValidator("id"), orderHandler.CancelOverdue)

		protected.POST("/claims", claimHandler.CreateClaim)
		protected.GET("/claims/my", claimHandler.ListMyClaims)

		protected.POST("/media", mediaHandler.Upload)
		protected.GET("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Download)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
	}

	return r
}
