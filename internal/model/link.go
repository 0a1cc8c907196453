package model

// Link 短链映射。ShortCode 一经创建不可变，唯一性由数据库唯一索引保证。
type Link struct {
	BaseModel
	ShortCode   string `gorm:"column:short_code;uniqueIndex;size:8;not null" json:"shortCode"`
	OriginalURL string `gorm:"column:original_url;size:2048;not null" json:"originalUrl"`
}

// LinkWithClickCount 看板列表行：短链 + 累计点击数
type LinkWithClickCount struct {
	Link
	ClickCount int64 `json:"clickCount"`
}
