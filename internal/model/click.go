package model

import "time"

// Click 一次短链访问记录。创建后仅 Fingerprint / WebrtcIP 允许更新。
type Click struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"column:link_id;index;not null" json:"linkId"`
	Link      Link      `gorm:"foreignKey:LinkID" json:"-"`
	IP        *string   `gorm:"column:ip;size:64" json:"ip"`
	UserAgent *string   `gorm:"column:user_agent;size:512" json:"userAgent"`
	Referrer  *string   `gorm:"column:referrer;size:512" json:"referrer"`
	Country   *string   `gorm:"column:country;size:64" json:"country"`
	City      *string   `gorm:"column:city;size:128" json:"city"`
	Lat       *float64  `gorm:"column:lat" json:"lat"`
	Lng       *float64  `gorm:"column:lng" json:"lng"`
	// WebrtcIP 只写一次：首个携带候选键的指纹合并写入后不再覆盖
	WebrtcIP    *string   `gorm:"column:webrtc_ip;size:64" json:"webrtcIp"`
	Fingerprint JSONMap   `gorm:"column:fingerprint;type:json" json:"fingerprint"`
	ClickedAt   time.Time `gorm:"column:clicked_at;autoCreateTime" json:"clickedAt"`
}
