package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/config"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/handlers"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/middleware"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/payments"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/users"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/storage"
)

func NewRouter(logger *slog.Logger, db *gorm.DB, cfg *config.Config, gw payments.Gateway, photos storage.Storage) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(cors.Default())

	userSvc := users.NewService(db)
	listingRepo := listings.NewRepo(db)
	bookingSvc := bookings.NewService(db)

	paymentSvc := payments.NewService(db, gw)
	paymentSvc.SetLogger(logger)
	reconciler := payments.NewReconciler(db)
	reconciler.SetLogger(logger)

	authH := handlers.NewAuthHandler(userSvc, cfg.JWTSecret)
	housesH := handlers.NewHousesHandler(logger, listingRepo, bookingSvc, photos)
	bookingsH := handlers.NewBookingsHandler(bookingSvc)
	paymentsH := handlers.NewPaymentsHandler(paymentSvc)
	callbackH := handlers.NewCallbackHandler(logger, reconciler)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Unauthenticated by necessity: Daraja posts here out-of-band.
	r.POST("/callbacks/mpesa", callbackH.Handle)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)

		api.GET("/houses", housesH.List)
		api.GET("/houses/:id", housesH.Get)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			authed.POST("/houses", housesH.Create)
			authed.GET("/dashboard", housesH.Dashboard)
			authed.POST("/houses/:id/book", bookingsH.Book)
			authed.POST("/bookings/:id/pay", paymentsH.Initiate)
			authed.GET("/payments/:id", paymentsH.Get)
		}
	}

	return r
}
