package routes

import (
	"backend/controllers"
	"backend/middleware"

	"github.com/gin-gonic/gin"
)

func InitializeRoutes(router *gin.Engine) {
	router.POST("/register", controllers.Register)
	router.POST("/login", controllers.Login)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/events", controllers.Events)
		api.GET("/dashboard", controllers.Dashboard)

		api.GET("/products", controllers.GetProducts)
		api.GET("/products/:id", controllers.GetProductByID)

		api.GET("/providers", controllers.GetProviders)
		api.GET("/workers", controllers.GetWorkers)

		api.GET("/inventory", controllers.GetInventory)
		api.GET("/purchases", controllers.GetPurchases)
		api.POST("/purchases", controllers.RecordPurchase)
		api.POST("/transfers", controllers.TransferToBar)

		api.GET("/shifts/active", controllers.GetActiveShift)
		api.POST("/shifts/open", controllers.OpenShift)
		api.POST("/shifts/sales", controllers.RecordSale)
		api.POST("/shifts/loans", controllers.RecordLoan)
		api.POST("/shifts/close", controllers.CloseShift)

		api.GET("/cashflow", controllers.GetCashflow)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware("admin"))
	{
		admin.POST("/products", controllers.CreateProduct)
		admin.PUT("/products/:id", controllers.EditProduct)

		admin.POST("/providers", controllers.CreateProvider)
		admin.PUT("/providers/:id", controllers.EditProvider)
		admin.POST("/providers/:id/settle", controllers.SettleProvider)
		admin.GET("/providersettlements", controllers.GetProviderSettlements)

		admin.POST("/workers", controllers.CreateWorker)
		admin.PUT("/workers/:id", controllers.EditWorker)
		admin.GET("/workersettlements", controllers.GetWorkerSettlements)

		admin.POST("/cashflow", controllers.RecordManualEntry)
	}
}
