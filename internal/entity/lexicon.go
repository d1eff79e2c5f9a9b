package entity

import (
	"github.com/lib/pq"
)

// Stock is a listed company from the stock roster table.
type Stock struct {
	StockCode     string         `gorm:"column:stock_code;primaryKey" json:"stock_code"`
	StockName     string         `gorm:"column:stock_name;not null" json:"stock_name"`
	Themes        pq.StringArray `gorm:"column:themes;type:text[]" json:"themes"`
	IndustryGroup *string        `gorm:"column:industry_group" json:"industry_group,omitempty"`
}

func (Stock) TableName() string {
	return "tmp_stock"
}

// ThemeInfo is a known investment theme.
type ThemeInfo struct {
	ThemeName string `gorm:"column:theme_name;primaryKey" json:"theme_name"`
}

func (ThemeInfo) TableName() string {
	return "theme_info"
}

// IndustryInfo is a known industry group.
type IndustryInfo struct {
	IndustryName string `gorm:"column:industry_name;primaryKey" json:"industry_name"`
}

func (IndustryInfo) TableName() string {
	return "industry_info"
}
