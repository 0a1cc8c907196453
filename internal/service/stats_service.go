package service

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"linktrace-go/constant"
	"linktrace-go/internal/model"
	"linktrace-go/internal/repository"
	"linktrace-go/pkg/logging"
)

// StatsService 访问统计：重定向路径上打 Redis 计数器，
// 定时任务把每日 PV/UV 落到 daily_stats 表。
type StatsService struct {
	store repository.Store
	pool  *redis.Pool
}

func NewStatsService(store repository.Store, pool *redis.Pool) *StatsService {
	return &StatsService{store: store, pool: pool}
}

// RecordVisit 记录一次访问的 PV/UV 计数。失败只记日志。
func (s *StatsService) RecordVisit(shortCode, ip string) {
	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
			)
		}
	}()

	date := constant.GetDateKey()

	// 每日 PV
	dailyPvKey := constant.GetDailyPVKey(date)
	if _, err := conn.Do("HINCRBY", dailyPvKey, shortCode, 1); err != nil {
		logging.Logger.Error("Failed to record daily PV",
			zap.String("key", dailyPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
	if _, err := conn.Do("EXPIRE", dailyPvKey, constant.DailyCounterTTL); err != nil {
		logging.Logger.Error("Failed to set daily PV expire",
			zap.String("key", dailyPvKey),
			zap.Error(err))
	}

	// 每日 UV（HyperLogLog）
	dailyUvKey := constant.GetDailyUVKey(shortCode, date)
	if _, err := conn.Do("PFADD", dailyUvKey, ip); err != nil {
		logging.Logger.Error("Failed to record daily UV",
			zap.String("key", dailyUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}
	if _, err := conn.Do("EXPIRE", dailyUvKey, constant.DailyCounterTTL); err != nil {
		logging.Logger.Error("Failed to set daily UV expire",
			zap.String("key", dailyUvKey),
			zap.Error(err))
	}
}

// FlushDailyStats 把当日 Redis 计数器落库，由 cron 周期触发
func (s *StatsService) FlushDailyStats(ctx context.Context) error {
	logging.Logger.Info("FlushDailyStats start")

	links, err := s.store.ListLinks(ctx)
	if err != nil {
		logging.Logger.Error("获取短链列表失败", zap.Error(err))
		return err
	}

	today := time.Now().Format("2006-01-02")
	dateKey := constant.GetDateKey()
	for _, link := range links {
		s.flushLink(ctx, link, today, dateKey)
	}

	logging.Logger.Info("FlushDailyStats end")
	return nil
}

func (s *StatsService) flushLink(ctx context.Context, link model.Link, today, dateKey string) {
	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
			)
		}
	}()

	pv, err := redis.Int64(conn.Do("HGET", constant.GetDailyPVKey(dateKey), link.ShortCode))
	if err != nil && err != redis.ErrNil {
		logging.Logger.Error("Failed to get daily PV",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}

	uv, err := redis.Int64(conn.Do("PFCOUNT", constant.GetDailyUVKey(link.ShortCode, dateKey)))
	if err != nil && err != redis.ErrNil {
		logging.Logger.Error("Failed to get daily UV",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}

	if pv == 0 && uv == 0 {
		return
	}

	stat := &model.DailyStat{
		LinkID: link.ID,
		Date:   today,
		PV:     pv,
		UV:     uv,
	}
	if err := s.store.UpsertDailyStat(ctx, stat); err != nil {
		logging.Logger.Error("Failed to upsert daily stat",
			zap.Uint("link_id", link.ID),
			zap.String("date", today),
			zap.Int64("pv", pv),
			zap.Int64("uv", uv),
			zap.Error(err))
	}
}
