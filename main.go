package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"civic-issue-tracker/config"
	"civic-issue-tracker/controllers"
	"civic-issue-tracker/realtime"
	"civic-issue-tracker/routes"
	"civic-issue-tracker/services"
	"civic-issue-tracker/store"
	"civic-issue-tracker/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const dailyIssueLimit = 10

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	defer config.DisconnectDB()

	config.ConnectRedis()

	issueStore := store.NewIssueStore(config.GetCollection("issues"))
	userStore := store.NewUserStore(config.GetCollection("users"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := issueStore.EnsureIndexes(ctx); err != nil {
		log.Println("Failed to create issue indexes:", err)
	}
	cancel()

	hub := realtime.NewHub()
	go hub.Run()

	files, err := utils.NewFileStoreFromEnv(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	issueService := &services.IssueService{
		Issues: issueStore,
		Users:  userStore,
		RT:     hub,
		Mail:   utils.EmailNotifier{},
	}
	adminService := &services.AdminService{Issues: issueStore, Users: userStore}
	userService := &services.UserService{Issues: issueStore, Users: userStore}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	routes.AuthRoutes(r)
	routes.IssueRoutes(r, controllers.NewIssueController(issueService, files), dailyIssueLimit)
	routes.AdminRoutes(r, controllers.NewAdminController(issueService, adminService))
	routes.UserRoutes(r, controllers.NewUserController(userService))

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		r.Static("/uploads", dir)
	} else {
		r.Static("/uploads", "uploads")
	}

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"status":    "OK",
			"clients":   hub.ClientCount(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
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
