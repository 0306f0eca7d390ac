package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/payments"
	"civicfix-be/routes"
	"civicfix-be/services"
	"civicfix-be/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	issueCol := config.GetCollection("issues")
	userCol := config.GetCollection("users")
	paymentCol := config.GetCollection("payments")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureIndexes(ctx, userCol, paymentCol); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	issues := store.NewMongoIssues(issueCol)
	users := store.NewMongoUsers(userCol)
	paymentStore := store.NewMongoPayments(paymentCol)

	var gateway payments.Gateway
	if base := os.Getenv("PAYMENT_GATEWAY_URL"); base != "" {
		gateway = payments.NewHTTPGateway(base, os.Getenv("PAYMENT_GATEWAY_KEY"))
	} else {
		log.Println("PAYMENT_GATEWAY_URL not set, using in-process fake gateway")
		gateway = payments.NewFakeGateway()
	}

	issueService := services.NewIssueService(issues, users)
	paymentService := services.NewPaymentService(paymentStore, issues, users, gateway,
		config.BoostFee(), config.SubscriptionFee())
	statsService := services.NewStatsService(issues, users, paymentStore)
	userService := services.NewUserService(users)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origin := os.Getenv("CLIENT_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	routes.AuthRoutes(r, &controllers.AuthController{Users: users})
	routes.UserRoutes(r, &controllers.UserController{Users: userService})
	routes.IssueRoutes(r, &controllers.IssueController{Issues: issueService})
	routes.StaffRoutes(r, &controllers.StaffController{Issues: issueService, Stats: statsService})
	routes.AdminRoutes(r, &controllers.AdminController{
		Issues:   issueService,
		Users:    userService,
		Stats:    statsService,
		Payments: paymentService,
	})
	routes.PaymentRoutes(r, &controllers.PaymentController{Payments: paymentService})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
