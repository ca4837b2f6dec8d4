package controller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
	"sportcat_dev_v1_202608/internal/service"
)

type CatalogController struct {
	catalogRepo repository.CatalogRepository
	repairSvc   *service.RepairService
	generator   service.Generator
}

func NewCatalogController(catalogRepo repository.CatalogRepository, repairSvc *service.RepairService, generator service.Generator) *CatalogController {
	return &CatalogController{
		catalogRepo: catalogRepo,
		repairSvc:   repairSvc,
		generator:   generator,
	}
}

// ==================== 查询接口 ====================

// GetProducts 获取目录商品列表
// @Summary 分页查询目录记录，可按名称/SKU 关键字过滤
// @Tags Catalog
// @Param keyword query string false "名称或SKU搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Router /api/products [get]
func (ctrl *CatalogController) GetProducts(c *gin.Context) {
	products, err := ctrl.catalogRepo.Load()
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "读取目录失败: " + err.Error()})
		return
	}

	keyword := strings.ToLower(c.Query("keyword"))
	if keyword != "" {
		filtered := make([]model.Product, 0, len(products))
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.ProductName), keyword) ||
				strings.Contains(strings.ToLower(p.ProductSKU), keyword) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(products)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.JSON(200, gin.H{
		"code":      0,
		"message":   "success",
		"data":      products[start:end],
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProduct 按 SKU 获取单条记录
// @Summary 获取单个商品详情
// @Tags Catalog
// @Param sku path string true "商品SKU"
// @Router /api/products/{sku} [get]
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	sku := c.Param("sku")

	products, err := ctrl.catalogRepo.Load()
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "读取目录失败: " + err.Error()})
		return
	}

	for _, p := range products {
		if p.ProductSKU == sku {
			c.JSON(200, gin.H{"code": 0, "message": "success", "data": p})
			return
		}
	}

	c.JSON(404, gin.H{"code": 404, "message": "未找到 SKU: " + sku})
}

// GetStats 目录统计
// @Summary 按类型/充实状态汇总目录
// @Tags Catalog
// @Router /api/products/stats [get]
func (ctrl *CatalogController) GetStats(c *gin.Context) {
	products, err := ctrl.catalogRepo.Load()
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "读取目录失败: " + err.Error()})
		return
	}

	var simple, configurable, unenriched int
	for i := range products {
		switch products[i].ProductType {
		case model.ProductTypeSimple:
			simple++
		case model.ProductTypeConfigurable:
			configurable++
		}
		if service.IsDefaultDescription(products[i].Description, products[i].ShortDescription, products[i].ProductName) {
			unenriched++
		}
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"total":        len(products),
			"simple":       simple,
			"configurable": configurable,
			"unenriched":   unenriched,
		},
	})
}

// ==================== 维护接口 ====================

// Repair 触发一次目录修复
// @Summary 对当前目录执行一次文案修复
// @Tags Catalog
// @Router /api/repair [post]
func (ctrl *CatalogController) Repair(c *gin.Context) {
	result, err := ctrl.repairSvc.Run(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "修复失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "success", "data": result})
}

// Health 健康检查，附带生成服务可达性
// @Summary 探活
// @Tags Catalog
// @Router /api/health [get]
func (ctrl *CatalogController) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"status":       "ok",
			"ollama_ready": ctrl.generator.CheckServer(),
		},
	})
}
