package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"cityfix-be/config"
	"cityfix-be/controllers"
	"cityfix-be/repository"
	"cityfix-be/routes"
	"cityfix-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var issueStore repository.IssueStore
	var userStore repository.UserStore

	if os.Getenv("STORE") == "memory" {
		log.Println("Using in-memory store")
		issueStore = repository.NewMemoryIssueStore()
		userStore = repository.NewMemoryUserStore()
	} else {
		db := config.ConnectDB()
		if db == nil {
			log.Fatal("Failed to connect to MongoDB")
		}

		mongoIssues := repository.NewMongoIssueStore(db)
		mongoUsers := repository.NewMongoUserStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongoIssues.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create issue indexes: %v", err)
		}
		if err := mongoUsers.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create user indexes: %v", err)
		}
		cancel()

		issueStore = mongoIssues
		userStore = mongoUsers
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := config.SeedUsers(seedCtx, userStore); err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}
	cancel()

	rateLimited := false
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedis()
		rateLimited = true
	} else {
		log.Println("REDIS_ADDRESS not set, issue rate limiting disabled")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	imageStorage, err := services.NewLocalImageStorage(uploadDir, "/uploads")
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	issueService := services.NewIssueService(issueStore)
	followUpService := services.NewFollowUpService(issueStore)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Static("/uploads", uploadDir)

	routes.AuthRoutes(r, controllers.NewAuthController(userStore))
	routes.IssueRoutes(r,
		controllers.NewIssueController(issueService),
		controllers.NewFollowUpController(followUpService),
		rateLimited,
	)
	routes.UploadRoutes(r, controllers.NewUploadController(imageStorage))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
