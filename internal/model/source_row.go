package model

// SourceRow 源表(CSV)的一行，只读
// Sizes / Colors 为可选列，缺失时为空字符串
type SourceRow struct {
	ProductName string
	SKU         string
	Category    string
	Price       string
	ImageURLs   string
	Sizes       string
	Colors      string
}
