package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/RestVisor/restvisor-back/docs"
	v1 "github.com/RestVisor/restvisor-back/internal/api/handler/v1"
	"github.com/RestVisor/restvisor-back/internal/api/middleware"
	"github.com/RestVisor/restvisor-back/internal/config"
	"github.com/RestVisor/restvisor-back/internal/repository"
	"github.com/RestVisor/restvisor-back/internal/repository/dao"
	"github.com/RestVisor/restvisor-back/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	productHandler := s.initProductHandler(db)
	tableHandler := s.initTableHandler(db)
	kitchenHandler := s.initKitchenHandler(db)
	orderHandler := s.initOrderHandler(db, kitchenHandler)
	stockHandler := s.initStockHandler(db)
	s.MountHandlers(authHandler, userHandler, productHandler, tableHandler, orderHandler, stockHandler, kitchenHandler)

	go kitchenHandler.Run()

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initProductHandler(db *gorm.DB) *v1.ProductHandler {
	productDAO := dao.NewProductDAO(db)
	repo := repository.NewProductRepository(productDAO)
	svc := service.NewProductService(repo)
	handler := v1.NewProductHandler(svc)

	return handler
}

func (s *Server) initTableHandler(db *gorm.DB) *v1.TableHandler {
	tableDAO := dao.NewTableDAO(db)
	repo := repository.NewTableRepository(tableDAO)
	svc := service.NewTableService(repo)
	handler := v1.NewTableHandler(svc)

	return handler
}

func (s *Server) initKitchenHandler(db *gorm.DB) *v1.KitchenHandler {
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewKitchenHandler(uSvc)

	return handler
}

func (s *Server) initOrderHandler(db *gorm.DB, feed *v1.KitchenHandler) *v1.OrderHandler {
	orderDAO := dao.NewOrderDAO(db)
	repo := repository.NewOrderRepository(orderDAO)
	tableRepo := repository.NewTableRepository(dao.NewTableDAO(db))
	svc := service.NewOrderService(repo, tableRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewOrderHandler(svc, uSvc, feed)

	return handler
}

func (s *Server) initStockHandler(db *gorm.DB) *v1.StockHandler {
	movementDAO := dao.NewMovementDAO(db)
	repo := repository.NewMovementRepository(movementDAO)
	productRepo := repository.NewProductRepository(dao.NewProductDAO(db))
	svc := service.NewStockService(repo, productRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewStockHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	productHandler *v1.ProductHandler,
	tableHandler *v1.TableHandler,
	orderHandler *v1.OrderHandler,
	stockHandler *v1.StockHandler,
	kitchenHandler *v1.KitchenHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)

		authenticated.GET("/products", productHandler.HandleGetProducts)
		authenticated.GET("/products/:productID", productHandler.HandleGetProduct)
		authenticated.POST("/products", productHandler.HandleCreateProduct)
		authenticated.DELETE("/products/:productID", productHandler.HandleDeleteProduct)

		authenticated.GET("/tables", tableHandler.HandleGetTables)
		authenticated.POST("/tables", tableHandler.HandleCreateTable)
		authenticated.PUT("/tables/:tableID/state", tableHandler.HandleUpdateTableState)

		authenticated.GET("/orders", orderHandler.HandleGetOrders)
		authenticated.GET("/orders/active", orderHandler.HandleGetActiveOrders)
		authenticated.POST("/orders", orderHandler.HandleCreateOrder)
		authenticated.GET("/orders/:orderID", orderHandler.HandleGetOrder)
		authenticated.PATCH("/orders/:orderID/status", orderHandler.HandleUpdateOrderStatus)
		authenticated.DELETE("/orders/:orderID", orderHandler.HandleDeleteOrder)
		authenticated.GET("/orders/:orderID/lines", orderHandler.HandleGetOrderLines)
		authenticated.POST("/orders/:orderID/lines", orderHandler.HandleAddOrderLine)

		authenticated.GET("/tables/number/:tableNumber/orders", orderHandler.HandleGetTableOrders)
		authenticated.GET("/tables/number/:tableNumber/order", orderHandler.HandleGetConsolidatedOrder)
		authenticated.GET("/tables/number/:tableNumber/history", orderHandler.HandleGetTableHistory)
		authenticated.POST("/tables/number/:tableNumber/settle", orderHandler.HandleSettleTable)

		authenticated.GET("/stock-movements", stockHandler.HandleGetMovements)
		authenticated.POST("/stock-movements", stockHandler.HandleCreateMovement)
		authenticated.GET("/stock-movements/:movementID", stockHandler.HandleGetMovement)
		authenticated.PUT("/stock-movements/:movementID", stockHandler.HandleUpdateMovement)
		authenticated.DELETE("/stock-movements/:movementID", stockHandler.HandleDeleteMovement)
		authenticated.POST("/stock-movements/:movementID/reverse", stockHandler.HandleReverseMovement)

		// Kitchen live feed
		authenticated.GET("/kitchen/feed", kitchenHandler.HandleFeed)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "RestVisor API"
	docs.SwaggerInfo.Description = "Restaurant point-of-sale backend: orders, tables, inventory and the stock ledger."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
