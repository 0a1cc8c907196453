package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"linktrace-go/constant"
	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/model"
	"linktrace-go/internal/repository"
	"linktrace-go/pkg/logging"
	"linktrace-go/pkg/utils"
	"linktrace-go/response"
)

// maxCreateAttempts 短码生成重试预算。唯一性以数据库唯一索引为准，
// 冲突时换码重试，预算耗尽报 CodeExhausted 而不是死循环。
const maxCreateAttempts = 10

// LinkService 短链创建与解析
type LinkService struct {
	store      repository.Store
	pool       *redis.Pool
	codeLength int

	// 便于测试注入的短码生成函数
	genCode func(length int) (string, error)
}

// NewLinkService 构造短链服务。pool 允许为 nil（不启用缓存）。
func NewLinkService(store repository.Store, pool *redis.Pool) *LinkService {
	return &LinkService{
		store:      store,
		pool:       pool,
		codeLength: utils.ShortCodeLength,
		genCode:    utils.GenerateShortCode,
	}
}

// CreateLink 生成短码并原子插入。短码冲突时换码重试；
// 其他存储错误立即失败并向调用方暴露。
func (s *LinkService) CreateLink(ctx context.Context, originalURL string) (*model.Link, error) {
	if err := utils.ValidateOriginalURL(originalURL); err != nil {
		return nil, apperrors.InvalidRequestError(err.Error())
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := s.genCode(s.codeLength)
		if err != nil {
			return nil, apperrors.SystemErrorDefault()
		}

		// 保留路径名不允许作为短码放出
		if constant.IsReservedPath(code) {
			continue
		}

		link, err := s.store.CreateLink(ctx, code, originalURL)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, repository.ErrDuplicateCode) {
			logging.Logger.Info("Short code collision, regenerating",
				zap.String("short_code", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		logging.Logger.Warn("Failed to create link",
			zap.Error(err))
		return nil, apperrors.PersistenceError(err)
	}

	return nil, apperrors.CodeExhaustedError()
}

// ResolveShortCode 按短码查短链。读多写少，走 Redis 读穿缓存，
// 空值也缓存（短 TTL）防止穿透。
func (s *LinkService) ResolveShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	if err := utils.ValidateShortCode(shortCode); err != nil {
		return nil, apperrors.NotFoundError("error.link_not_found")
	}

	if s.pool != nil {
		if link, hit, negative := s.fromCache(shortCode); hit {
			if negative {
				return nil, apperrors.NotFoundError("error.link_not_found")
			}
			return link, nil
		}
	}

	link, err := s.store.GetLinkByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cacheNegative(shortCode)
			return nil, apperrors.NotFoundError("error.link_not_found")
		}
		logging.Logger.Warn("Failed to query link",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.PersistenceError(err)
	}

	s.cacheLink(link)
	return link, nil
}

// ListLinks 分页查询短链列表（带累计点击数）
func (s *LinkService) ListLinks(ctx context.Context, page, size int, shortCode string) (*response.PageResponse[model.LinkWithClickCount], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	rows, total, err := s.store.ListLinksWithClickCounts(ctx, shortCode, (page-1)*size, size)
	if err != nil {
		logging.Logger.Warn("Failed to list links", zap.Error(err))
		return nil, apperrors.PersistenceError(err)
	}

	totalPage := (int(total) + size - 1) / size
	return &response.PageResponse[model.LinkWithClickCount]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      rows,
	}, nil
}

// ListClicks 分页查询某条短链的点击明细
func (s *LinkService) ListClicks(ctx context.Context, linkID uint, page, size int) (*response.PageResponse[model.Click], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	clicks, total, err := s.store.ListClicksForLink(ctx, linkID, (page-1)*size, size)
	if err != nil {
		logging.Logger.Warn("Failed to list clicks",
			zap.Uint("link_id", linkID),
			zap.Error(err))
		return nil, apperrors.PersistenceError(err)
	}

	totalPage := (int(total) + size - 1) / size
	return &response.PageResponse[model.Click]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      clicks,
	}, nil
}

// GetDailyStats 查询某条短链的每日 PV/UV
func (s *LinkService) GetDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	stats, err := s.store.ListDailyStats(ctx, linkID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return stats, nil
}

// fromCache 查缓存。hit 表示命中，negative 表示命中的是空值缓存。
func (s *LinkService) fromCache(shortCode string) (link *model.Link, hit bool, negative bool) {
	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
			)
		}
	}()

	cacheKey := constant.GetLinkCacheKey(shortCode)
	raw, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err != nil {
		if err != redis.ErrNil {
			logging.Logger.Warn("Error getting from Redis",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
		return nil, false, false
	}

	if len(raw) == 0 {
		return nil, true, true
	}

	var cached model.Link
	if err := json.Unmarshal(raw, &cached); err != nil {
		logging.Logger.Warn("Failed to unmarshal cached link",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
		return nil, false, false
	}
	return &cached, true, false
}

func (s *LinkService) cacheLink(link *model.Link) {
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

	raw, err := json.Marshal(link)
	if err != nil {
		return
	}

	cacheKey := constant.GetLinkCacheKey(link.ShortCode)
	if _, err := conn.Do("SET", cacheKey, raw, "EX", constant.LinkCacheTTL); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}

func (s *LinkService) cacheNegative(shortCode string) {
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

	cacheKey := constant.GetLinkCacheKey(shortCode)
	if _, err := conn.Do("SET", cacheKey, "", "EX", constant.LinkNegCacheTTL); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}
