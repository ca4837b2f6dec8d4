package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sportcat_dev_v1_202608/internal/model"
)

// ==================== 类目映射 ====================

// categoryMap 类目路径 -> 层级类目ID，对应导入端的固定类目树
var categoryMap = map[string][]int{
	"ao-bong-da-ban-player-2022": {1, 2, 3}, // Sản phẩm > Áo bóng đá > Áo bóng đá bản Player
	"ao-bong-da-ban-fan":         {1, 2, 4}, // Sản phẩm > Áo bóng đá > Áo bóng đá bản Fan
	"giay-puma":                  {1, 5, 6}, // Sản phẩm > Giày bóng đá > Giày Puma
	"giay-nike":                  {1, 5, 7}, // Sản phẩm > Giày bóng đá > Giày Nike
	"giay-adidas":                {1, 5, 8}, // Sản phẩm > Giày bóng đá > Giày Adidas
	"giay-bong-da":               {1, 5},    // Sản phẩm > Giày bóng đá
	"frontpage":                  {1},       // Sản phẩm
	"all":                        {1},       // Sản phẩm
	"ao-giu-nhiet":               {1},       // Sản phẩm
}

// CategoryIDs 解析类目路径，未知路径返回空列表而不是报错
func CategoryIDs(categoryPath string) []int {
	if ids, ok := categoryMap[categoryPath]; ok {
		return ids
	}
	return []int{}
}

// ==================== 价格解析 ====================

// ParsePrice 去掉货币符号和千分位后按浮点解析
// 例: "1,234,567₫" -> 1234567.0；解析失败属于输入错误，直接抛出
func ParsePrice(priceText string) (float64, error) {
	cleaned := strings.ReplaceAll(priceText, "₫", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("价格格式非法: %q", priceText)
	}
	return price, nil
}

// ==================== 记录构建 ====================

// nowISO 时间戳统一用 ISO 字符串存储，和历史目录文件保持一致
func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}

// splitAndTrim 按逗号拆分并去空白，丢弃空项
func splitAndTrim(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BuildProduct 把一行源数据映射成目录记录
// 除时间戳外是纯函数；size/color 任一非空则展开为 CONFIGURABLE
func BuildProduct(row model.SourceRow, description, shortDescription string) (*model.Product, error) {
	price, err := ParsePrice(row.Price)
	if err != nil {
		return nil, err
	}

	sizes := splitAndTrim(row.Sizes)
	colors := splitAndTrim(row.Colors)

	productType := model.ProductTypeSimple
	if len(sizes) > 0 || len(colors) > 0 {
		productType = model.ProductTypeConfigurable
	}

	now := nowISO()

	// 图库：逗号拆分，位置从 1 开始；空字段得到空图库
	urls := splitAndTrim(row.ImageURLs)
	gallery := make([]model.MediaEntry, 0, len(urls))
	for idx, url := range urls {
		gallery = append(gallery, model.MediaEntry{
			URL:        url,
			Alt:        row.ProductName,
			Label:      row.ProductName,
			Position:   idx + 1,
			IsDisabled: false,
			IsDeleted:  false,
			CreatedAt:  now,
			UpdatedAt:  now,
			DeletedAt:  nil,
		})
	}

	enrichStatus := model.EnrichStatusGenerated
	if IsDefaultDescription(description, shortDescription, row.ProductName) {
		enrichStatus = model.EnrichStatusFallback
	}

	product := &model.Product{
		ProductName:      row.ProductName,
		ProductSKU:       row.SKU,
		CategoryIDs:      CategoryIDs(row.Category),
		Price:            price,
		SpecialPrice:     nil,
		FallbackPrice:    price,
		SalableQty:       0,
		ShortDescription: shortDescription,
		Description:      description,
		MediaGallery:     gallery,
		ProductType:      productType,
		Variants:         []model.Variant{},
		Attributes:       []model.AttributeDef{},
		IsDisabled:       false,
		IsDeleted:        false,
		CreatedAt:        now,
		UpdatedAt:        now,
		DeletedAt:        nil,
		EnrichStatus:     enrichStatus,
	}

	if productType == model.ProductTypeConfigurable {
		// 轴顺序固定：先 size 后 color
		if len(sizes) > 0 {
			appendAxis(product, "size", "Size", sizes, price, now)
		}
		if len(colors) > 0 {
			appendAxis(product, "color", "Color", colors, price, now)
		}
	}

	return product, nil
}

// appendAxis 为一个属性轴追加属性定义和变体条目
func appendAxis(product *model.Product, code, name string, values []string, price float64, now string) {
	product.Attributes = append(product.Attributes, model.AttributeDef{
		Code:      code,
		Name:      name,
		Value:     code,
		IsEnabled: true,
		CreatedAt: now,
		UpdatedAt: now,
		DeletedAt: nil,
	})

	attrs := make([]model.VariantAttribute, 0, len(values))
	for _, v := range values {
		attrs = append(attrs, model.VariantAttribute{
			Code:            code,
			Name:            name,
			Value:           v,
			PriceAdjustment: 0,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	imageURL := ""
	if len(product.MediaGallery) > 0 {
		imageURL = product.MediaGallery[0].URL
	}

	product.Variants = append(product.Variants, model.Variant{
		Attributes:    attrs,
		Price:         price,
		StockQuantity: 0,
		Name:          name,
		Code:          code,
		ImageURL:      imageURL,
		IsDisabled:    false,
		IsDeleted:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}
