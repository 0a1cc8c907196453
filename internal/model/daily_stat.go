package model

// DailyStat 每日访问统计（由定时任务从 Redis 计数器落库）
type DailyStat struct {
	BaseModel
	LinkID uint   `gorm:"column:link_id;index" json:"linkId"`
	Date   string `gorm:"type:date;index" json:"date"` // YYYY-MM-DD
	PV     int64  `gorm:"default:0" json:"pv"`
	UV     int64  `gorm:"default:0" json:"uv"`
}
