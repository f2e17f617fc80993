package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/internal/auth"
	"domainmarket/marketplace-backend/internal/config"
	"domainmarket/marketplace-backend/internal/listings"
	"domainmarket/marketplace-backend/internal/notifications"
	ws "domainmarket/marketplace-backend/internal/notifications/websocket"
	"domainmarket/marketplace-backend/internal/offers"
	"domainmarket/marketplace-backend/internal/verification"
	"domainmarket/marketplace-backend/pkg/dnscheck"
	"domainmarket/marketplace-backend/pkg/email"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&listings.Listing{},
		&listings.ListingView{},
		&listings.Favorite{},
		&verification.Request{},
		&verification.History{},
		&notifications.Notification{},
		&notifications.EmailDeadLetter{},
		&offers.Offer{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	var sender email.Sender
	if cfg.Email.FromAddress != "" {
		sesSender, err := email.NewSESSender(context.Background(), cfg.Email.Region, cfg.Email.FromAddress)
		if err != nil {
			logger.Fatal("Failed to create email sender", zap.Error(err))
		}
		sender = sesSender
	}

	wsManager := ws.NewManager()
	defer wsManager.Close()

	// ---------------- NOTIFICATIONS ----------------
	notificationStore := notifications.NewStore(db)
	dispatcher := notifications.NewDispatcher(notificationStore, sender, wsManager, logger)
	notificationHandler := notifications.NewHandler(notificationStore)

	// ---------------- LISTINGS ----------------
	listingRepo := listings.NewRepository(db)
	listingService := listings.NewService(listingRepo)
	listingHandler := listings.NewHandler(listingService)

	// ---------------- VERIFICATION ----------------
	dnsClient := dnscheck.NewClient(cfg.Verification.Resolvers, cfg.Verification.CheckTimeout)
	checker := verification.NewChecker(dnsClient, cfg.Verification.CheckTimeout)
	verificationRepo := verification.NewRepository(db)
	verificationService := verification.NewService(verificationRepo, listingService, checker, dispatcher, logger, cfg.Verification.PublicURL)
	verificationHandler := verification.NewHandler(verificationService)

	// ---------------- OFFERS ----------------
	offerRepo := offers.NewRepository(db)
	offerService := offers.NewService(offerRepo, listingService, dispatcher, logger)
	offerHandler := offers.NewHandler(offerService)

	r := gin.Default()

	requireAuth := auth.Middleware(cfg.Security.JWTSecret)
	requireAdmin := auth.RequireAdmin()

	v1 := r.Group("/api/v1")
	listingsGroup := v1.Group("/listings")
	verificationsGroup := v1.Group("/verifications")
	offersGroup := v1.Group("/offers")
	notificationsGroup := v1.Group("/notifications")

	listings.RegisterRoutes(listingsGroup, listingHandler, requireAuth)
	verification.RegisterRoutes(listingsGroup, verificationsGroup, verificationHandler, requireAuth, requireAdmin)
	offers.RegisterRoutes(listingsGroup, offersGroup, offerHandler, requireAuth)
	notifications.RegisterRoutes(notificationsGroup, notificationHandler, requireAuth)

	// Realtime notification stream.
	r.GET("/ws", requireAuth, func(c *gin.Context) {
		userID := auth.UserID(c)
		if _, err := wsManager.HandleConnection(c.Writer, c.Request, userID.String()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
	})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	addr := cfg.Server.GetServerAddr()
	logger.Info("Server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
