package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"linktrace-go/constant"
	"linktrace-go/pkg/logging"
	"linktrace-go/pkg/utils"
)

// Location 粗粒度地理位置。字段为空表示解析不可用。
type Location struct {
	Country *string  `json:"country"`
	City    *string  `json:"city"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// GeoService IP 地理位置解析。纯增强逻辑：任何失败都降级为空结果，
// 不允许阻塞或失败重定向主流程。
type GeoService struct {
	client  *http.Client
	baseURL string
	pool    *redis.Pool
}

// NewGeoService 从配置构造解析器。pool 允许为 nil（不启用缓存）。
func NewGeoService(pool *redis.Pool) *GeoService {
	baseURL := viper.GetString("geo.base_url")
	if baseURL == "" {
		baseURL = "https://ipinfo.io"
	}

	timeout := viper.GetInt("geo.timeout_seconds")
	if timeout <= 0 {
		timeout = 5
	}

	return &GeoService{
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		pool:    pool,
	}
}

// ipinfo 风格响应，loc 为 "lat,lng"
type geoAPIResponse struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Loc     string `json:"loc"`
}

// ResolveIP 解析客户端 IP。私网 / 环回 / 未指定地址直接跳过；
// 超时或接口异常返回 ok=false，调用方按"不可用"处理。
func (g *GeoService) ResolveIP(ctx context.Context, ip string) (Location, bool) {
	if !utils.IsPublicIP(ip) {
		return Location{}, false
	}

	if loc, ok := g.fromCache(ip); ok {
		return loc, true
	}

	url := fmt.Sprintf("%s/%s/json", g.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logging.Logger.Warn("Geo lookup failed",
			zap.String("ip", ip),
			zap.Error(err))
		return Location{}, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		logging.Logger.Warn("Geo lookup unexpected status",
			zap.String("ip", ip),
			zap.Int("status", resp.StatusCode))
		return Location{}, false
	}

	var body geoAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logging.Logger.Warn("Geo lookup bad response",
			zap.String("ip", ip),
			zap.Error(err))
		return Location{}, false
	}

	loc := Location{}
	if body.Country != "" {
		loc.Country = &body.Country
	}
	if body.City != "" {
		loc.City = &body.City
	}
	if lat, lng, ok := parseLoc(body.Loc); ok {
		loc.Lat = &lat
		loc.Lng = &lng
	}

	g.toCache(ip, loc)
	return loc, true
}

// parseLoc 解析 "lat,lng" 形式的坐标
func parseLoc(loc string) (float64, float64, bool) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (g *GeoService) fromCache(ip string) (Location, bool) {
	if g.pool == nil {
		return Location{}, false
	}

	conn := g.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
			)
		}
	}()

	raw, err := redis.Bytes(conn.Do("GET", constant.GetGeoCacheKey(ip)))
	if err != nil {
		if err != redis.ErrNil {
			logging.Logger.Warn("Error getting geo cache",
				zap.String("ip", ip),
				zap.Error(err))
		}
		return Location{}, false
	}

	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return Location{}, false
	}
	return loc, true
}

func (g *GeoService) toCache(ip string, loc Location) {
	if g.pool == nil {
		return
	}

	conn := g.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
			)
		}
	}()

	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if _, err := conn.Do("SET", constant.GetGeoCacheKey(ip), raw, "EX", constant.GeoCacheTTL); err != nil {
		logging.Logger.Warn("Failed to cache geo result",
			zap.String("ip", ip),
			zap.Error(err))
	}
}
