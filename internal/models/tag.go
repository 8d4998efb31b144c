package models

// Tag 标签，只读参考数据
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"` // #RRGGBB
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}
