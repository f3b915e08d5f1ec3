package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/payments"
)

// newRouter builds the engine and the full route table. Method mismatches
// must answer 405, not 404: the payment processor treats any non-2xx/405 on
// the webhook endpoint as retryable, so the distinction matters.
func newRouter(db *mongo.Database, pay *payments.Client, mail mailer.Sender) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	r.GET("/", handlers.Home())
	r.GET("/admin/login", handlers.AdminLoginPage)
	r.GET("/admin/schools", handlers.AdminSchoolsPage)
	r.GET("/admin/menu", handlers.AdminMenuPage)
	r.GET("/admin/orders", handlers.AdminOrdersPage)
	r.GET("/admin/runsheet", handlers.AdminRunSheetPage)

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/schools", handlers.GetSchools(db))
	r.GET("/menu", handlers.GetMenu(db))
	r.GET("/menu/featured", handlers.GetFeaturedItems(db))

	// payment processor callback, raw-body signature check inside
	r.POST("/webhooks/stripe", handlers.HandleStripeWebhook(db, config.AppEnv.StripeWebhookSecret, mail))

	user := r.Group("/user")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.POST("/checkout", handlers.CreateCheckout(
			db,
			pay,
			config.AppEnv.CheckoutSuccessURL,
			config.AppEnv.CheckoutCancelURL,
			config.AppEnv.PendingOrderTTL,
		))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:orderId", handlers.GetMyOrderMeals(db))
		user.GET("/children", handlers.GetChildren(db))
		user.POST("/children", handlers.AddChild(db))
		user.PUT("/children/:childId", handlers.UpdateChild(db))
		user.DELETE("/children/:childId", handlers.DeleteChild(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/schools", handlers.GetAllSchools(db))
		admin.POST("/schools", handlers.CreateSchool(db))
		admin.PUT("/schools/:id", handlers.UpdateSchool(db))
		admin.DELETE("/schools/:id", handlers.DeleteSchool(db))

		admin.GET("/menu", handlers.GetAllMenuItems(db))
		admin.POST("/menu", handlers.CreateMenuItem(db))
		admin.PUT("/menu/:id", handlers.UpdateMenuItem(db))
		admin.DELETE("/menu/:id", handlers.DeleteMenuItem(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.POST("/orders", handlers.CreateManualOrder(db))
		admin.GET("/orders/:id", handlers.GetOrder(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.GET("/runsheet", handlers.GetRunSheet(db))
		admin.POST("/pending-orders/sweep", handlers.SweepExpiredOrders(db))
	}

	return r
}

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsurePendingOrderIndexes(db); err != nil {
		log.Printf("pending order index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureMealIndexes(db); err != nil {
		log.Printf("meal index warning: %v", err)
	}
	if err := database.EnsureMenuItemIndexes(db); err != nil {
		log.Printf("menu item index warning: %v", err)
	}

	pay := payments.NewClient(config.AppEnv.StripeSecretKey)
	mail := mailer.NewClient(
		config.AppEnv.SendgridAPIKey,
		config.AppEnv.FromEmail,
		config.AppEnv.FromName,
	)

	r := newRouter(db, pay, mail)
	r.LoadHTMLGlob("templates/**/*")
	r.Static("/public", "./public")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
