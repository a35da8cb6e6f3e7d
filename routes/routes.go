package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonflow/handlers"
)

// HandlerBundle aggregates the handlers the router needs.
type HandlerBundle struct {
	Booking  *handlers.BookingHandler
	Waitlist *handlers.WaitlistHandler
}

// RegisterChatRoutes sets up the conversational booking endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.POST("/message", hb.Booking.HandleMessage)
		api.POST("/action", hb.Booking.HandleAction)
		api.DELETE("/session/:customerId", hb.Booking.CancelSession)
	}
}

// RegisterBookingRoutes sets up confirmed-booking management endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.DELETE("/:bookingId", hb.Booking.CancelBooking)
	}
}

// RegisterWaitlistRoutes sets up the waitlist queue endpoints.
func RegisterWaitlistRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/waitlist")
	{
		api.POST("", hb.Waitlist.Enqueue)
		api.GET("/:customerId", hb.Waitlist.Status)
		api.POST("/offer/:id/respond", hb.Waitlist.RespondToOffer)
	}
	r.POST("/api/slots/released", hb.Waitlist.SlotReleased)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes wires CORS and all route groups onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterChatRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWaitlistRoutes(r, hb)
}
