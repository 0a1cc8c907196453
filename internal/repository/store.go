package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"linktrace-go/internal/model"
)

// 持久层哨兵错误。调用方只依赖这两个分类，不做错误文本匹配。
var (
	// ErrDuplicateCode 短码唯一键冲突
	ErrDuplicateCode = errors.New("repository: duplicate short code")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("repository: record not found")
)

// Store 持久化网关。只暴露短链/点击生命周期需要的操作。
type Store interface {
	// CreateLink 原子插入短链，短码冲突返回 ErrDuplicateCode
	CreateLink(ctx context.Context, shortCode, originalURL string) (*model.Link, error)
	// GetLinkByCode 按短码查询，纯读操作
	GetLinkByCode(ctx context.Context, code string) (*model.Link, error)
	// CreateClick 插入点击记录并回填 ID
	CreateClick(ctx context.Context, click *model.Click) error
	// GetClickByID 按 ID 加载点击记录
	GetClickByID(ctx context.Context, id uint) (*model.Click, error)
	// UpdateClickFingerprint 整体写回指纹；webrtc_ip 列只在当前为空时写入
	UpdateClickFingerprint(ctx context.Context, id uint, fp model.JSONMap, webrtcIP *string) error

	// 看板查询。code 非空时按短码模糊过滤
	ListLinksWithClickCounts(ctx context.Context, code string, offset, limit int) ([]model.LinkWithClickCount, int64, error)
	ListClicksForLink(ctx context.Context, linkID uint, offset, limit int) ([]model.Click, int64, error)

	// 统计任务
	ListLinks(ctx context.Context) ([]model.Link, error)
	UpsertDailyStat(ctx context.Context, stat *model.DailyStat) error
	ListDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore 基于 gorm 连接构造 Store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateLink(ctx context.Context, shortCode, originalURL string) (*model.Link, error) {
	link := &model.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
	}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return link, nil
}

func (s *gormStore) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	err := s.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (s *gormStore) CreateClick(ctx context.Context, click *model.Click) error {
	return s.db.WithContext(ctx).Create(click).Error
}

func (s *gormStore) GetClickByID(ctx context.Context, id uint) (*model.Click, error) {
	var click model.Click
	err := s.db.WithContext(ctx).First(&click, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &click, nil
}

func (s *gormStore) UpdateClickFingerprint(ctx context.Context, id uint, fp model.JSONMap, webrtcIP *string) error {
	// COALESCE 保证 webrtc_ip 首次写入后不被覆盖
	res := s.db.WithContext(ctx).Model(&model.Click{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"fingerprint": fp,
			"webrtc_ip":   gorm.Expr("COALESCE(webrtc_ip, ?)", webrtcIP),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListLinksWithClickCounts(ctx context.Context, code string, offset, limit int) ([]model.LinkWithClickCount, int64, error) {
	base := s.db.WithContext(ctx).Model(&model.Link{})
	if code != "" {
		base = base.Where("short_code LIKE ?", "%"+code+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]model.LinkWithClickCount, 0, limit)
	err := base.Session(&gorm.Session{}).
		Select("links.*, COUNT(clicks.id) AS click_count").
		Joins("LEFT JOIN clicks ON clicks.link_id = links.id").
		Group("links.id").
		Order("links.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *gormStore) ListClicksForLink(ctx context.Context, linkID uint, offset, limit int) ([]model.Click, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Click{}).
		Where("link_id = ?", linkID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clicks := make([]model.Click, 0, limit)
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("clicked_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		return nil, 0, err
	}
	return clicks, total, nil
}

func (s *gormStore) ListLinks(ctx context.Context) ([]model.Link, error) {
	var links []model.Link
	if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (s *gormStore) UpsertDailyStat(ctx context.Context, stat *model.DailyStat) error {
	return s.db.WithContext(ctx).
		Where("link_id = ? AND date = ?", stat.LinkID, stat.Date).
		Assign("pv", stat.PV, "uv", stat.UV).
		FirstOrCreate(stat).Error
}

func (s *gormStore) ListDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	var stats []model.DailyStat
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("date DESC").
		Find(&stats).Error
	return stats, err
}
