package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"chirp/auth"
	"chirp/content"
	"chirp/counter"
	"chirp/database"
	"chirp/engagement"
	"chirp/feed"
	"chirp/handlers"
	"chirp/media"
	"chirp/routes"
	"chirp/search"
	"chirp/social"
	"chirp/store/mongostore"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	mongoURI := os.Getenv("MONGODB_URI")
	if jwtSecret == "" || mongoURI == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ===== CONNECT TO MONGODB WITH RETRY =====
	var db *mongo.Database
	var dbErr error
	for i := 1; i <= 3; i++ {
		d, err := database.Connect(mongoURI, "chirp")
		if err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		db = d
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("failed to connect to MongoDB: ", dbErr)
	}
	defer database.Disconnect()

	st := mongostore.New(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := st.EnsureIndexes(ctx); err != nil {
			cancel()
			log.Fatal("failed to create indexes: ", err)
		}
		cancel()
	}

	tokens := auth.NewJWTIssuer(jwtSecret, 24*time.Hour)
	hasher := auth.BcryptHasher{}
	counters := counter.NewLedger(st)
	graph := social.NewGraph(st, logger)

	api := &handlers.API{
		Accounts:   auth.NewAccounts(st, tokens, hasher, logger),
		Content:    content.NewService(st, counters, logger),
		Engagement: engagement.NewService(st, counters, logger),
		Graph:      graph,
		Feed:       feed.NewAssembler(st, graph, logger),
		Search:     search.NewIndex(st),
		Store:      st,
	}

	if url := os.Getenv("CLOUDINARY_URL"); url != "" {
		mediaStore, err := media.NewCloudinaryStore(url, "chirp/media")
		if err != nil {
			log.Fatal("cloudinary configuration error: ", err)
		}
		api.Media = mediaStore
	} else {
		log.Println("CLOUDINARY_URL not set, media uploads disabled")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(api, tokens)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("forced shutdown: ", err)
	}
	log.Println("server stopped")
}
