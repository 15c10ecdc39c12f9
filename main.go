package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"sitepulse/api/database"
	"sitepulse/api/handlers"
	"sitepulse/api/middleware"
	"sitepulse/api/registry"
	"sitepulse/api/store"
	"sitepulse/api/utils"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL (users, organizations, projects) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse (entries stream) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Initialize stores ---
	userStore := store.NewUserStore(dbClient.DB)
	projectStore := store.NewProjectStore(dbClient.DB)
	entryStore := store.NewEntryStore(chClient)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := entryStore.EnsureSchema(bootCtx); err != nil {
		bootCancel()
		log.Fatalf("Failed to ensure entries schema: %v", err)
	}

	// --- Origin registry: bulk load at boot, optional periodic refresh ---
	originRegistry := registry.NewOriginRegistry(projectStore)
	if err := originRegistry.Load(bootCtx); err != nil {
		bootCancel()
		log.Fatalf("Failed to load project origins: %v", err)
	}
	bootCancel()
	log.Printf("Origin registry loaded: %d projects with a registered origin", originRegistry.Len())

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	defer refreshCancel()
	if intervalStr := os.Getenv("ORIGIN_REFRESH_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			log.Fatalf("Invalid ORIGIN_REFRESH_INTERVAL: %v", err)
		}
		go originRegistry.Run(refreshCtx, interval)
	}

	// --- Ingest token codec ---
	ingestSecret := os.Getenv("INGEST_JWT_SECRET")
	if ingestSecret == "" {
		ingestSecret = os.Getenv("JWT_SECRET")
	}
	if ingestSecret == "" {
		log.Fatalf("INGEST_JWT_SECRET or JWT_SECRET must be set")
	}
	codec := utils.NewTokenCodec([]byte(ingestSecret))

	// --- Initialize handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore)
	ingestHandlers := handlers.NewIngestHandlers(entryStore, projectStore, codec)
	statsHandlers := handlers.NewStatsHandlers(entryStore, projectStore)

	// --- Ingest surface (consumed by the tag script) ---
	ingest := gin.Default()
	ingest.GET("/:projectId/token", middleware.AuthRequired(), ingestHandlers.IssueToken)

	events := ingest.Group("/:token",
		middleware.IngestTokenRequired(codec),
		middleware.ProjectCORS(originRegistry),
	)
	{
		events.POST("/:eventType", middleware.SessionRequired(), ingestHandlers.RecordEvent)
		// Preflight is answered inside ProjectCORS.
		events.OPTIONS("/:eventType", func(c *gin.Context) {})
	}

	// --- Dashboard API surface ---
	r := gin.Default()
	r.Use(middleware.DashboardCORS())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/projects", statsHandlers.ListProjects)
			protected.GET("/projects/:slug", statsHandlers.GetProject)
			protected.GET("/projects/:slug/stats/hourly", statsHandlers.GetHourlySeries)
			protected.GET("/projects/:slug/stats/key-numbers", statsHandlers.GetKeyNumbers)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	ingestPort := os.Getenv("INGEST_PORT")
	if ingestPort == "" {
		ingestPort = "4500"
	}

	apiSrv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	ingestSrv := &http.Server{
		Addr:    ":" + ingestPort,
		Handler: ingest,
	}

	go func() {
		log.Printf("Dashboard API server starting on http://localhost:%s", port)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Dashboard API server failed to start: %v", err)
		}
	}()
	go func() {
		log.Printf("Ingest server starting on http://localhost:%s", ingestPort)
		if err := ingestSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ingest server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down servers...")
	refreshCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ingestSrv.Shutdown(ctx); err != nil {
		log.Printf("Ingest server forced to shutdown: %v", err)
	}
	if err := apiSrv.Shutdown(ctx); err != nil {
		log.Fatalf("Dashboard API server forced to shutdown: %v", err)
	}

	log.Println("Servers exiting.")
}
