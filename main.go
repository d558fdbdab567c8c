// @title           Craftmarket API
// @version         1.0
// @description     Marketplace backend - requests, applications, offers, orders and conversations.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	_ "craftmarket/docs"
	"craftmarket/handlers"
	"craftmarket/repository"
	"craftmarket/services"
	"craftmarket/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://app.craftmarket.example",
		"http://localhost:9000",
		"http://localhost:3000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func main() {
	db := storage.InitDB()

	if err := storage.RunMigrations(); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	gormDB := storage.InitGormDB()
	blob := storage.NewDiskBlobStore()

	// Repositories
	requestRepo := repository.NewGormRequestRepository(gormDB)
	applicationRepo := repository.NewGormApplicationRepository(gormDB)
	conversationRepo := repository.NewGormConversationRepository(gormDB)
	offerRepo := repository.NewGormOfferRepository(gormDB)
	orderRepo := repository.NewGormOrderRepository(gormDB)
	documentRepo := repository.NewGormDocumentRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// Services
	guard := services.NewStatusGuard(db)
	notifier := services.NewEmailNotifier()
	conversationSvc := services.NewConversationService(conversationRepo, requestRepo)
	linker := services.NewDocumentLinker(blob, documentRepo)
	requestSvc := services.NewRequestService(requestRepo)
	applicationSvc := services.NewApplicationService(applicationRepo, requestRepo, orderRepo, conversationSvc, guard)
	offerSvc := services.NewOfferService(offerRepo, requestRepo, userRepo, conversationSvc, linker, guard, notifier)
	orderSvc := services.NewOrderService(orderRepo, offerRepo, requestRepo, userRepo, conversationSvc, linker, guard, notifier)

	// Hourly maintenance: retry failed compensating blob deletes, drop stale sessions
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("@hourly", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous maintenance run still active, skipping")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		if err := linker.SweepPendingDeletes(); err != nil {
			log.Printf("Pending delete sweep failed: %v", err)
		}
		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	auth := handlers.SessionAuth(db)

	// ==================== AUTH ====================
	r.POST("/api/validate-session", handlers.ValidateSession(db))

	// ==================== REQUESTS ====================
	r.POST("/api/requests", auth, handlers.CreateRequest(requestSvc))
	r.GET("/api/requests", auth, handlers.ListRequests(requestSvc))
	r.GET("/api/requests/:id", auth, handlers.GetRequest(requestSvc))

	// ==================== APPLICATIONS ====================
	r.GET("/api/requests/:id/applications", auth, handlers.ListApplications(applicationSvc))
	r.POST("/api/applications/:id/decision", auth, handlers.DecideApplication(applicationSvc))

	// ==================== OFFERS ====================
	r.POST("/api/offers", auth, handlers.CreateOffer(offerSvc))
	r.POST("/api/offers/:id/accept", auth, handlers.AcceptOffer(offerSvc))
	r.POST("/api/offers/:id/decline", auth, handlers.DeclineOffer(offerSvc))
	r.GET("/api/offers/:id/pdf", auth, handlers.OfferPDF(offerSvc))
	r.GET("/api/offers/:id/signature-qr", auth, handlers.OfferSignatureQR(offerSvc))

	// ==================== ORDERS ====================
	r.POST("/api/orders", auth, handlers.CreateOrder(orderSvc))
	r.POST("/api/orders/:id/cancel", auth, handlers.CancelOrder(orderSvc))
	r.GET("/api/export/orders", auth, handlers.ExportOrders(orderSvc))

	// ==================== CONVERSATIONS & DOCUMENTS ====================
	r.GET("/api/requests/:id/messages", auth, handlers.ListConversationMessages(conversationSvc))
	r.POST("/api/requests/:id/messages", auth, handlers.PostConversationMessage(conversationSvc))
	r.GET("/api/requests/:id/documents", auth, handlers.ListRequestDocuments(conversationSvc, linker, blob))
	r.POST("/api/requests/:id/documents", auth, handlers.UploadRequestDocument(conversationSvc, linker, blob))
	r.GET("/api/files", handlers.ServeFile(blob))

	// ==================== SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Cron jobs did not finish in time")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
