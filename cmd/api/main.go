package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-orders/internal/events"
	"go-inventory-orders/internal/handler"
	"go-inventory-orders/internal/middleware"
	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
	"go-inventory-orders/internal/service"
	"go-inventory-orders/internal/ws"
	"go-inventory-orders/pkg/config"
	"go-inventory-orders/pkg/database"
	"go-inventory-orders/pkg/jwt"
	"go-inventory-orders/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

type handlers struct {
	auth      *handler.AuthHandler
	products  *handler.ProductHandler
	orders    *handler.OrderHandler
	users     *handler.UserHandler
	dashboard *handler.DashboardHandler
}

func main() {
	// 1. Load config and logger
	cfg := config.Load()
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	defer database.Close(db)

	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Order{}, &model.StockMovement{}); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}

	// 3. Setup WebSocket Hub and event sinks
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	publisher := events.Publisher(wsHub)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			zlog.Fatal("init kafka publisher", zap.Error(err))
		}
		defer kafka.Close()
		publisher = events.Multi(zlog.Named("events"), wsHub, kafka)
		zlog.Info("kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// 4. Dependency Injection (Wiring Layers)
	uow := repository.NewUnitOfWork(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, tokens, zlog)
	userService := service.NewUserService(userRepo, zlog)
	catalogService := service.NewCatalogService(uow, productRepo, movementRepo, publisher, zlog)
	orderService := service.NewOrderService(service.OrderServiceDeps{
		UnitOfWork: uow,
		Products:   productRepo,
		Orders:     orderRepo,
		Movements:  movementRepo,
		Events:     publisher,
		Logger:     zlog,
	})
	dashService := service.NewDashboardService(movementRepo, orderRepo)

	// 5. Seed admin account
	if _, err := userService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminPassword); err != nil {
		zlog.Fatal("seed admin", zap.Error(err))
	}

	h := handlers{
		auth:      handler.NewAuthHandler(authService, userService),
		products:  handler.NewProductHandler(catalogService),
		orders:    handler.NewOrderHandler(orderService),
		users:     handler.NewUserHandler(userService),
		dashboard: handler.NewDashboardHandler(dashService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Inventory Orders v1.0",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/healthz", handler.Health(func(ctx context.Context) error { return database.Ping(ctx, db) }))
	registerRoutes(app, cfg, authService, h)
	registerWebSocket(app, wsHub)

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	zlog.Info("server started", zap.String("port", cfg.Port))

	<-ctx.Done()
	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}

func registerRoutes(app *fiber.App, cfg config.Config, authService service.AuthService, h handlers) {
	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests", "kind": "rate_limited"})
		},
	}))

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", h.auth.Register)
	auth.Post("/login", h.auth.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(authService))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	protected.Post("/auth/change-password", h.auth.ChangePassword)

	// Product Routes
	protected.Get("/products", h.products.GetProducts)
	protected.Get("/products/:id", h.products.GetProduct)
	protected.Post("/products", adminOnly, h.products.CreateProduct)
	protected.Put("/products/:id", adminOnly, h.products.UpdateProduct)
	protected.Patch("/products/:id", adminOnly, h.products.PatchProduct)
	protected.Delete("/products/:id", adminOnly, h.products.DeleteProduct)

	// Order Routes; /mine must be registered before /:orderId
	protected.Post("/orders", h.orders.CreateOrder)
	protected.Get("/orders", adminOnly, h.orders.ListOrders)
	protected.Get("/orders/mine", h.orders.ListOwnOrders)
	protected.Get("/orders/:orderId", h.orders.GetOrder)
	protected.Patch("/orders/:orderId/cancel", h.orders.CancelOrder)
	protected.Patch("/orders/:orderId/lines/:productId", h.orders.UpdateLineQuantity)
	protected.Patch("/orders/:orderId/shipping-address", h.orders.UpdateShippingAddress)
	protected.Patch("/orders/:orderId/status", adminOnly, h.orders.UpdateOrderStatus)
	protected.Get("/orders/:orderId/movements", adminOnly, h.orders.ListOrderMovements)

	// User and Dashboard Routes
	protected.Get("/users", adminOnly, h.users.GetUsers)
	protected.Get("/dashboard/stats", adminOnly, h.dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", adminOnly, h.dashboard.GetStockMovement)
}

func registerWebSocket(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			return
		}
		defer hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
