package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"equipment-reservation-backend/config"
	"equipment-reservation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	responses := mw.NewResponseCache(cacheTTL)
	caching := mw.Cache(responses, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter, mw.EntryGate(cfg.Access.EntryPassword), mw.InvalidateOnWrite(responses))
	{
		api.GET("/reservations", caching, handler.ListReservations)
		api.POST("/reservations", handler.SubmitReservation)
		api.POST("/reservations/check", handler.CheckOverlap)
		api.DELETE("/reservations/:id", handler.CancelReservation)

		api.GET("/calendar", caching, handler.GetCalendar)
		api.GET("/durations", handler.GetDurations)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		admin := api.Group("/admin")
		admin.Use(mw.AdminGate(cfg.Access.AdminPassword))
		{
			admin.GET("/reservations/:id/warning", handler.GetApprovalWarning)
			admin.POST("/reservations/:id/approve", handler.ApproveReservation)
			admin.POST("/reservations/:id/reject", handler.RejectReservation)
			admin.PUT("/reservations/:id", handler.EditReservation)
			admin.DELETE("/reservations/:id", handler.DeleteReservation)

			admin.GET("/subscriptions", handler.GetSubscription)
			admin.PUT("/subscriptions", handler.PutSubscription)
			admin.DELETE("/subscriptions", handler.DeleteSubscription)
		}
	}

	return r
}
