package router

import (
	"github.com/gin-gonic/gin"

	"sportcat_dev_v1_202608/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, catalogCtl *controller.CatalogController) {
	api := r.Group("/api")
	{
		// catalog 目录查询
		products := api.Group("/products")
		{
			// GET /api/products
			products.GET("", catalogCtl.GetProducts)
			// GET /api/products/stats
			products.GET("/stats", catalogCtl.GetStats)
			// GET /api/products/:sku
			products.GET("/:sku", catalogCtl.GetProduct)
		}

		// 维护操作
		api.POST("/repair", catalogCtl.Repair)
		api.GET("/health", catalogCtl.Health)
	}
}

// SetupRouter 构建 gin 引擎
func SetupRouter(catalogCtl *controller.CatalogController) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, catalogCtl)
	return r
}
