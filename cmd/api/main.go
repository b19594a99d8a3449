package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-social-shop/internal/handler"
	"go-social-shop/internal/middleware"
	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/internal/service"
	"go-social-shop/internal/ws"
	"go-social-shop/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.ProductSPU{}, &model.ProductSKU{},
		&model.Attribute{}, &model.AttributeValue{},
		&model.ProductSPUAttribute{}, &model.ProductSKUAttributeValue{},
		&model.Inventory{}, &model.ProductImage{}, &model.ProductReview{},
		&model.CartItem{}, &model.Address{},
		&model.ProductFavorite{}, &model.PostFavorite{}, &model.OwnedProduct{},
		&model.Tag{}, &model.PostImage{}, &model.Post{}, &model.Reply{},
		&model.Artist{}, &model.Album{}, &model.Music{}, &model.Video{}, &model.Notice{},
	); err != nil {
		log.Fatal("migration failed: ", err)
	}

	// 3. Seed staff account
	seedStaffUser(db)

	// 4. Setup WebSocket Hub for catalog events
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	spuRepo := repository.NewSPURepo(db)
	skuRepo := repository.NewSKURepo(db)
	attributeRepo := repository.NewAttributeRepo(db)

	categoryService := service.NewCategoryService(categoryRepo, db)
	attributeService := service.NewAttributeService(attributeRepo, db)
	catalogService := service.NewCatalogService(spuRepo, skuRepo, attributeRepo, categoryRepo, db, wsHub)
	cartService := service.NewCartService(skuRepo, spuRepo, db)
	authService := service.NewAuthService(userRepo, db)
	userService := service.NewUserService(userRepo, catalogService, db)
	forumService := service.NewForumService(db)
	publishService := service.NewPublishService(db)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	catalogHandler := handler.NewCatalogHandler(catalogService, attributeService)
	cartHandler := handler.NewCartHandler(cartService)
	forumHandler := handler.NewForumHandler(forumService)
	publishHandler := handler.NewPublishHandler(publishService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Social Shop API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	api.Get("/categories", categoryHandler.List)
	api.Get("/categories/:id/descendants", categoryHandler.Descendants)

	// Listings personalize favorite flags when a token is present.
	api.Get("/products", middleware.OptionalAuth(), catalogHandler.ListProducts)
	api.Get("/products/:id", middleware.OptionalAuth(), catalogHandler.GetProduct)
	api.Get("/products/:id/skus", middleware.OptionalAuth(), catalogHandler.ListSKUs)
	api.Get("/products/:id/reviews", middleware.OptionalAuth(), catalogHandler.ListReviews)
	api.Get("/attributes", catalogHandler.ListAttributes)

	api.Get("/posts", middleware.OptionalAuth(), forumHandler.ListPosts)
	api.Get("/posts/:id", middleware.OptionalAuth(), forumHandler.GetPost)
	api.Get("/posts/:id/replies", forumHandler.ListReplies)
	api.Get("/tags", forumHandler.ListTags)

	api.Get("/users/:id", userHandler.GetUser)

	api.Get("/artists", publishHandler.ListArtists)
	api.Get("/albums", publishHandler.ListAlbums)
	api.Get("/music", publishHandler.ListMusic)
	api.Get("/videos", publishHandler.ListVideos)
	api.Get("/notices", publishHandler.ListNotices)

	// ============ AUTHENTICATED ROUTES ============
	protected := api.Group("", middleware.RequireAuth())

	protected.Get("/auth/profile", authHandler.Profile)
	protected.Put("/auth/profile", authHandler.UpdateProfile)
	protected.Put("/auth/avatar", authHandler.UpdateAvatar)
	protected.Post("/auth/change-password", authHandler.ChangePassword)
	protected.Delete("/auth/account", authHandler.DeleteAccount)

	protected.Post("/products/:id/reviews", catalogHandler.CreateReview)
	protected.Post("/products/:id/favorite", userHandler.ToggleProductFavorite)
	protected.Get("/favorites/products", userHandler.ListProductFavorites)
	protected.Post("/posts/:id/favorite", userHandler.TogglePostFavorite)
	protected.Get("/favorites/posts", userHandler.ListPostFavorites)

	protected.Get("/cart", cartHandler.List)
	protected.Post("/cart", cartHandler.Add)
	protected.Put("/cart/:id", cartHandler.Update)
	protected.Delete("/cart/:id", cartHandler.Remove)
	protected.Post("/cart/batch-remove", cartHandler.RemoveBatch)
	protected.Post("/cart/checkout", cartHandler.Checkout)
	protected.Get("/owned-products", cartHandler.ListOwned)

	protected.Get("/addresses", cartHandler.ListAddresses)
	protected.Post("/addresses", cartHandler.CreateAddress)
	protected.Put("/addresses/:id", cartHandler.UpdateAddress)
	protected.Delete("/addresses/:id", cartHandler.DeleteAddress)

	protected.Post("/posts", forumHandler.CreatePost)
	protected.Put("/posts/:id", forumHandler.UpdatePost)
	protected.Delete("/posts/:id", forumHandler.DeletePost)
	protected.Post("/posts/:id/replies", forumHandler.CreateReply)
	protected.Delete("/replies/:id", forumHandler.DeleteReply)

	// ============ STAFF ROUTES ============
	admin := api.Group("/admin", middleware.RequireAuth(), middleware.RequireStaff())

	admin.Post("/categories", categoryHandler.Create)
	admin.Put("/categories/:id", categoryHandler.Update)
	admin.Delete("/categories/:id", categoryHandler.Delete)

	admin.Post("/products", catalogHandler.CreateProduct)
	admin.Put("/products/:id", catalogHandler.UpdateProduct)
	admin.Delete("/products/:id", catalogHandler.DeleteProduct)
	admin.Put("/products/:id/attributes", catalogHandler.SetProductAttributes)
	admin.Post("/products/:id/skus", catalogHandler.CreateSKU)
	admin.Put("/skus/:code", catalogHandler.UpdateSKU)
	admin.Delete("/skus/:code", catalogHandler.DeleteSKU)

	admin.Post("/attributes", catalogHandler.CreateAttribute)
	admin.Delete("/attributes/:id", catalogHandler.DeleteAttribute)
	admin.Post("/attributes/:id/values", catalogHandler.AddAttributeValue)
	admin.Delete("/attribute-values/:id", catalogHandler.DeleteAttributeValue)

	admin.Post("/artists", publishHandler.CreateArtist)
	admin.Post("/albums", publishHandler.CreateAlbum)
	admin.Delete("/albums/:id", publishHandler.DeleteAlbum)
	admin.Post("/music", publishHandler.CreateMusic)
	admin.Post("/videos", publishHandler.CreateVideo)
	admin.Post("/notices", publishHandler.CreateNotice)
	admin.Delete("/notices/:id", publishHandler.DeleteNotice)

	// WebSocket Route (stock updates)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedStaffUser creates the initial staff account from ADMIN_EMAIL /
// ADMIN_PASSWORD if no staff user exists yet.
func seedStaffUser(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := db.Model(&model.User{}).Where("is_staff = ?", true).Count(&count).Error; err != nil {
		log.Printf("Warning: staff lookup failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	admin := &model.User{
		Username:   "admin",
		Email:      email,
		Gender:     "O",
		AvatarPath: model.DefaultAvatarPath,
		IsStaff:    true,
		IsActive:   true,
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: failed to hash admin password: %v", err)
		return
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("Warning: failed to create admin user: %v", err)
		return
	}
	log.Printf("Staff user created: %s", email)
}
