package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "linktrace:"
	Separator  = ":"
)

// Redis 键模板
const (
	LinkCache = BasePrefix + "link" + Separator + "%s"                  // linktrace:link:shortcode
	GeoCache  = BasePrefix + "geo" + Separator + "%s"                   // linktrace:geo:ip
	DailyPV   = BasePrefix + "pv" + Separator + "%s"                    // linktrace:pv:yyyyMMdd
	DailyUV   = BasePrefix + "uv" + Separator + "%s" + Separator + "%s" // linktrace:uv:yyyyMMdd:shortcode
)

// 缓存有效期
const (
	LinkCacheTTL    = 3600 // 正缓存 1 小时
	LinkNegCacheTTL = 300  // 空值缓存 5 分钟，防止穿透
	GeoCacheTTL     = 3600
	DailyCounterTTL = 3 * 24 * 3600 // 计数器保留 3 天，落库后自然过期
)

// GetLinkCacheKey 生成短链缓存 key
func GetLinkCacheKey(shortCode string) string {
	return fmt.Sprintf(LinkCache, shortCode)
}

// GetGeoCacheKey 生成 IP 地理位置缓存 key
func GetGeoCacheKey(ip string) string {
	return fmt.Sprintf(GeoCache, ip)
}

// GetDateKey 生成当前日期的键（格式：yyyyMMdd）
func GetDateKey() string {
	return time.Now().Format("20060102")
}

// GetDailyPVKey 生成每日 PV 键（格式：linktrace:pv:yyyyMMdd）
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey 生成每日 UV 键（格式：linktrace:uv:yyyyMMdd:shortcode）
func GetDailyUVKey(shortCode, date string) string {
	return fmt.Sprintf(DailyUV, date, shortCode)
}
