package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayease/pg-management-backend/internal/config"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/handlers"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/internal/services"
	"github.com/stayease/pg-management-backend/pkg/geocode"
	"github.com/stayease/pg-management-backend/pkg/jwt"
	"github.com/stayease/pg-management-backend/pkg/mailer"
	"github.com/stayease/pg-management-backend/pkg/payment"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	pgDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Unexpected database implementation")
	}

	// Repositories
	userRepo := database.NewUserRepository(pgDB.DB)
	listingRepo := database.NewListingRepository(pgDB.DB)
	roomRepo := database.NewRoomRepository(pgDB.DB)
	residentRepo := database.NewResidentRepository(pgDB.DB)
	paymentRepo := database.NewPaymentRepository(pgDB.DB)
	reviewRepo := database.NewReviewRepository(pgDB.DB)

	// External collaborators
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var mail mailer.Sender
	if cfg.Mail.Mode == "production" {
		mail = mailer.NewSMTPMailer(mailer.Config{
			Host:        cfg.Mail.Host,
			Port:        cfg.Mail.Port,
			Username:    cfg.Mail.Username,
			Password:    cfg.Mail.Password,
			FromAddress: cfg.Mail.FromAddress,
			DialTimeout: cfg.Mail.DialTimeout,
		}, logger)
	} else {
		mail = mailer.NewLogMailer(logger)
	}

	gateway := payment.NewRazorpayGateway(payment.Config{
		KeyID:          cfg.Payment.KeyID,
		KeySecret:      cfg.Payment.KeySecret,
		RequestTimeout: cfg.Payment.RequestTimeout,
	}, logger)

	geocoder := geocode.NewNominatimGeocoder(geocode.Config{
		BaseURL:        cfg.Geocoder.BaseURL,
		RequestTimeout: cfg.Geocoder.RequestTimeout,
	})

	// Services
	occupancyService := services.NewOccupancyService(roomRepo, residentRepo, logger)
	authService := services.NewAuthService(userRepo, jwtService, mail, logger, cfg.Security.BcryptCost)
	listingService := services.NewListingService(listingRepo, reviewRepo, userRepo, geocoder, mail, logger)
	roomService := services.NewRoomService(roomRepo, residentRepo, listingRepo, occupancyService, logger)
	residentService := services.NewResidentService(
		residentRepo, roomRepo, listingRepo, userRepo, occupancyService, mail, logger, cfg.App.BaseURL)
	paymentService := services.NewPaymentService(
		paymentRepo, residentRepo, listingRepo, roomRepo, userRepo,
		gateway, mail, logger, cfg.Payment.Currency, cfg.Payment.PaymentLinkBase)
	reviewService := services.NewReviewService(reviewRepo, residentRepo, listingRepo, userRepo, mail, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	listingHandler := handlers.NewListingHandler(listingService, reviewService, logger)
	roomHandler := handlers.NewRoomHandler(roomService, logger)
	residentHandler := handlers.NewResidentHandler(residentService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Public surface
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/listings", listingHandler.ListAll)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/listings/:id/reviews", listingHandler.PublicReviews)
	api.GET("/listings/:id/available-rooms", roomHandler.ListAvailablePublic)
	api.GET("/payments/order/:orderId", paymentHandler.GetByOrder)
	api.POST("/payments/confirmation", paymentHandler.Confirm)
	api.POST("/payments/failure", paymentHandler.Fail)
	api.PUT("/residents/:residentId/confirm", residentHandler.Confirm)
	api.GET("/residents/by-user/:userId", residentHandler.GetStay)

	// Authenticated, any role
	account := api.Group("/auth")
	account.Use(middleware.AuthMiddleware(jwtService))
	account.GET("/account", authHandler.Account)
	account.PUT("/account", authHandler.EditUser)

	// Host surface
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RolePgAdmin))
	admin.GET("/my-listings", listingHandler.MyListings)
	admin.POST("/listings", listingHandler.Create)
	admin.PUT("/listings/:id", listingHandler.Update)
	admin.DELETE("/listings/:id", listingHandler.Delete)

	admin.POST("/listings/:id/rooms", roomHandler.CreateBatch)
	admin.GET("/listings/:id/rooms", roomHandler.List)
	admin.GET("/listings/:id/rooms/available", roomHandler.ListAvailable)
	admin.GET("/listings/:id/rooms/unavailable", roomHandler.ListUnavailable)
	admin.GET("/listings/:id/rooms/:roomId", roomHandler.Get)
	admin.PUT("/listings/:id/rooms/:roomId", roomHandler.Update)
	admin.DELETE("/listings/:id/rooms/:roomId", roomHandler.Delete)

	admin.POST("/listings/:id/residents", residentHandler.Create)
	admin.GET("/listings/:id/residents", residentHandler.List)
	admin.GET("/listings/:id/residents/deleted", residentHandler.ListDeleted)
	admin.GET("/listings/:id/residents/:residentId", residentHandler.Get)
	admin.PUT("/listings/:id/residents/:residentId", residentHandler.Update)
	admin.DELETE("/listings/:id/residents/:residentId", residentHandler.Delete)
	admin.POST("/listings/:id/residents/:residentId/confirmation-link", residentHandler.SendConfirmationLink)

	admin.POST("/listings/:id/payments/reminders", paymentHandler.SendReminders)
	admin.GET("/listings/:id/payments/completed", paymentHandler.ListCompleted)
	admin.GET("/listings/:id/payments/pending", paymentHandler.ListPending)
	admin.GET("/listings/:id/payments/totals", paymentHandler.Totals)
	admin.GET("/listings/:id/residents/:residentId/payments", paymentHandler.ListByResident)

	admin.GET("/listings/:id/reviews/all", reviewHandler.ListForHost)
	admin.GET("/listings/:id/reviews/average", reviewHandler.AverageRating)

	// Resident surface
	resident := api.Group("")
	resident.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RolePgResident))
	resident.POST("/listings/:id/reviews", reviewHandler.Add)
	resident.PUT("/reviews/:reviewId", reviewHandler.Update)
	resident.DELETE("/reviews/:reviewId", reviewHandler.Delete)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
		}).Info("Server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}
