package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"linktrace-go/internal/model"
	"linktrace-go/internal/repository"
	"linktrace-go/pkg/logging"
)

// webrtcIPCandidateKeys 指纹里 WebRTC IP 的候选键，按优先级取第一个非空值
var webrtcIPCandidateKeys = []string{
	"local_ipv4",
	"local_ipv6",
	"public_ip",
	"webrtc_ip",
}

// ClickSnapshot 重定向瞬间采集到的请求快照
type ClickSnapshot struct {
	IP          string
	UserAgent   string
	Referrer    string
	Location    Location
	Fingerprint model.JSONMap
}

// ClickService 点击记录的创建与后续指纹合并
type ClickService struct {
	store repository.Store
}

func NewClickService(store repository.Store) *ClickService {
	return &ClickService{store: store}
}

// RecordClick 同步插入点击记录并返回其 ID。
// ID 会随重定向响应下发，客户端脚本凭它回传更完整的指纹。
func (s *ClickService) RecordClick(ctx context.Context, linkID uint, snap ClickSnapshot) (uint, error) {
	click := &model.Click{
		LinkID:      linkID,
		IP:          nullableString(snap.IP),
		UserAgent:   nullableString(snap.UserAgent),
		Referrer:    nullableString(snap.Referrer),
		Country:     snap.Location.Country,
		City:        snap.Location.City,
		Lat:         snap.Location.Lat,
		Lng:         snap.Location.Lng,
		Fingerprint: snap.Fingerprint,
	}

	if err := s.store.CreateClick(ctx, click); err != nil {
		return 0, err
	}
	return click.ID, nil
}

// MergeFingerprint 把客户端回传的指纹浅合并到已有记录上。
// 遥测上报是 fire-and-forget：非法参数与存储失败都只记日志，不向调用方冒错。
func (s *ClickService) MergeFingerprint(ctx context.Context, clickID int64, partial map[string]interface{}) {
	// 防御：clickId 非正数或载荷为空直接丢弃
	if clickID <= 0 || len(partial) == 0 {
		return
	}

	click, err := s.store.GetClickByID(ctx, uint(clickID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 点击记录尚不存在或已删除，静默丢弃
			return
		}
		logging.Logger.Warn("Failed to load click for fingerprint merge",
			zap.Int64("click_id", clickID),
			zap.Error(err))
		return
	}

	merged := mergeFingerprint(click.Fingerprint, partial)

	var webrtcIP *string
	if click.WebrtcIP == nil {
		webrtcIP = deriveWebrtcIP(merged)
	}

	if err := s.store.UpdateClickFingerprint(ctx, click.ID, merged, webrtcIP); err != nil {
		logging.Logger.Warn("Failed to persist fingerprint merge",
			zap.Int64("click_id", clickID),
			zap.Error(err))
	}
}

// mergeFingerprint 浅合并：同键以新值为准，未提到的键原样保留
func mergeFingerprint(existing model.JSONMap, partial map[string]interface{}) model.JSONMap {
	merged := make(model.JSONMap, len(existing)+len(partial))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// deriveWebrtcIP 从指纹候选键里取第一个非空字符串
func deriveWebrtcIP(fp model.JSONMap) *string {
	for _, key := range webrtcIPCandidateKeys {
		raw, ok := fp[key]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		str = strings.TrimSpace(str)
		if str != "" {
			return &str
		}
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
