package model

// 目录(catalog)是一个 JSON 数组文件，不走数据库。
// 字段名和历史数据保持逐字节兼容，改动 json tag 会导致旧目录无法识别。

// ==================== 商品类型常量 ====================

const (
	ProductTypeSimple       = "SIMPLE"
	ProductTypeConfigurable = "CONFIGURABLE"
)

// ==================== 文案状态常量 ====================

// 新写入的记录带显式状态；历史文件没有该字段，
// 只能靠默认文案逐字节比对来识别（见 service.IsDefaultDescription）
const (
	EnrichStatusPending   = "pending"
	EnrichStatusGenerated = "generated"
	EnrichStatusFallback  = "fallback"
)

// ==================== 目录记录 ====================

// MediaEntry 商品图库条目
type MediaEntry struct {
	URL        string  `json:"url"`
	Alt        string  `json:"alt"`
	Label      string  `json:"label"`
	Position   int     `json:"position"`
	IsDisabled bool    `json:"isDisabled"`
	IsDeleted  bool    `json:"isDeleted"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
	DeletedAt  *string `json:"deletedAt"`
}

// VariantAttribute 变体轴下的单个可选值
// priceAdjustment 固定为 0，当前不支持按选项加价
type VariantAttribute struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Value           string  `json:"value"`
	PriceAdjustment float64 `json:"priceAdjustment"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// Variant 一个属性轴(size/color)对应一个变体条目
type Variant struct {
	Attributes    []VariantAttribute `json:"attributes"`
	Price         float64            `json:"price"`
	StockQuantity int                `json:"stockQuantity"`
	Name          string             `json:"name"`
	Code          string             `json:"code"`
	ImageURL      string             `json:"imageUrl"`
	IsDisabled    bool               `json:"isDisabled"`
	IsDeleted     bool               `json:"isDeleted"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
}

// AttributeDef 轴级别的属性定义，value 固定等于 code
type AttributeDef struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Value     string  `json:"value"`
	IsEnabled bool    `json:"isEnabled"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	DeletedAt *string `json:"deletedAt"`
}

// Product 目录中的单个商品记录
type Product struct {
	ProductName      string         `json:"product_name"`
	ProductSKU       string         `json:"product_sku"`
	CategoryIDs      []int          `json:"categoryIds"`
	Price            float64        `json:"price"`
	SpecialPrice     *float64       `json:"special_price"`
	FallbackPrice    float64        `json:"fallbackPrice"`
	SalableQty       int            `json:"salable_qty"`
	ShortDescription string         `json:"short_description"`
	Description      string         `json:"description"`
	MediaGallery     []MediaEntry   `json:"mediaGallery"`
	ProductType      string         `json:"product_type"`
	Variants         []Variant      `json:"variants"`
	Attributes       []AttributeDef `json:"attributes"`
	IsDisabled       bool           `json:"isDisabled"`
	IsDeleted        bool           `json:"isDeleted"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
	DeletedAt        *string        `json:"deletedAt"`

	// 显式状态字段，历史文件可能缺失(omitempty)
	EnrichStatus string `json:"enrich_status,omitempty"`
}
