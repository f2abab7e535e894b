// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/repository"
	"go-storefront/routes"
	"go-storefront/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Fatal(err)
		}
	}()

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}

	images, err := utils.NewImageProcessor(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	tokens := utils.NewTokenManager([]byte(cfg.JWTSecret))
	mail := utils.NewEmailService(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress)

	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)

	// Initialize controllers
	userController := controllers.NewUserController(userRepo, tokens, mail)
	productController := controllers.NewProductController(productRepo, images)
	cartController := controllers.NewCartController(cartRepo, productRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, authMiddleware, userController, productController, cartController, cfg.UploadDir)

	// Outer chain: recovery -> logging -> CORS -> rate limit -> routes
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	handler := handlers.RecoveryHandler()(
		handlers.LoggingHandler(os.Stdout,
			cors(limiter.Limit(router)),
		),
	)

	// Start the server
	fmt.Printf("Server is running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
