package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"admarket/internal/config"
	"admarket/internal/database"
	"admarket/internal/domain"
	"admarket/internal/middleware"
	"admarket/internal/modules/ads"
	"admarket/internal/modules/approval"
	"admarket/internal/modules/attribution"
	"admarket/internal/modules/auth"
	"admarket/internal/modules/ledger"
	"admarket/internal/modules/payment"
	"admarket/internal/modules/serve"
	"admarket/internal/modules/stats"
	jwtsvc "admarket/internal/pkg/jwt"
	"admarket/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Website{},
		&domain.Category{},
		&domain.Ad{},
		&domain.AdSelection{},
		&domain.PaymentTracker{},
		&domain.PaymentTransaction{},
	); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	websiteRepo := repository.NewWebsiteRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	adRepo := repository.NewAdRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	trackerRepo := repository.NewTrackerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	ownership := middleware.NewOwnershipChecker(websiteRepo, adRepo)
	loggerf := log.Printf

	hub := stats.NewHub()
	defer hub.Close()

	authHandler := auth.NewHandler(auth.NewService(userRepo, j, loggerf))
	adsHandler := ads.NewHandler(ads.NewService(adRepo, websiteRepo, categoryRepo, selectionRepo), ownership)
	approvalHandler := approval.NewHandler(approval.NewService(selectionRepo, loggerf), ownership)
	serveHandler := serve.NewHandler(serve.NewService(categoryRepo, cfg.PublicBaseURL, loggerf), loggerf)
	attributionHandler := attribution.NewHandler(attribution.NewService(db, hub), loggerf)
	ledgerHandler := ledger.NewHandler(ledger.NewService(trackerRepo, categoryRepo, websiteRepo, loggerf))
	statsHandler := stats.NewHandler(hub, j, adRepo, loggerf)

	gateway := payment.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewaySecretKey)
	paymentService := payment.NewService(
		transactionRepo,
		adRepo,
		trackerRepo,
		gateway,
		cfg.GatewayWebhookHash,
		cfg.CheckoutPageURL,
		loggerf,
	)
	paymentHandler := payment.NewHandler(paymentService, loggerf)

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger())

	// Embed surface: widget fragment, beacons, websocket. Served to pages we
	// do not control, so CORS is wide open and nothing here requires auth.
	widget := r.Group("/")
	widget.Use(middleware.WidgetCORS())
	{
		serveHandler.RegisterRoutes(widget)
		attributionHandler.RegisterRoutes(widget)
	}
	statsHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.CORS())
	{
		authHandler.RegisterRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			adsHandler.RegisterRoutes(protected)
			approvalHandler.RegisterRoutes(protected)
			ledgerHandler.RegisterRoutes(protected, ownership.CheckAdOwnership())
			paymentHandler.RegisterProtectedRoutes(protected)
		}
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
