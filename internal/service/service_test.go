package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"linktrace-go/internal/model"
	"linktrace-go/internal/repository"
	"linktrace-go/pkg/logging"
)

func init() {
	// 单测不落日志文件
	logging.Logger = zap.NewNop()
	zap.ReplaceGlobals(logging.Logger)
}

// fakeStore 内存版 Store，单测专用
type fakeStore struct {
	links      map[string]*model.Link
	clicks     map[uint]*model.Click
	dailyStats []model.DailyStat
	nextLinkID uint
	nextClick  uint

	createClickErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		links:  make(map[string]*model.Link),
		clicks: make(map[uint]*model.Click),
	}
}

func (f *fakeStore) CreateLink(ctx context.Context, shortCode, originalURL string) (*model.Link, error) {
	if _, exists := f.links[shortCode]; exists {
		return nil, repository.ErrDuplicateCode
	}
	f.nextLinkID++
	link := &model.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
	}
	link.ID = f.nextLinkID
	f.links[shortCode] = link
	return link, nil
}

func (f *fakeStore) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	link, ok := f.links[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return link, nil
}

func (f *fakeStore) CreateClick(ctx context.Context, click *model.Click) error {
	if f.createClickErr != nil {
		return f.createClickErr
	}
	f.nextClick++
	click.ID = f.nextClick
	stored := *click
	f.clicks[click.ID] = &stored
	return nil
}

func (f *fakeStore) GetClickByID(ctx context.Context, id uint) (*model.Click, error) {
	click, ok := f.clicks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *click
	return &copied, nil
}

func (f *fakeStore) UpdateClickFingerprint(ctx context.Context, id uint, fp model.JSONMap, webrtcIP *string) error {
	click, ok := f.clicks[id]
	if !ok {
		return repository.ErrNotFound
	}
	click.Fingerprint = fp
	// 模拟 COALESCE(webrtc_ip, ?) 的只写一次语义
	if click.WebrtcIP == nil {
		click.WebrtcIP = webrtcIP
	}
	return nil
}

func (f *fakeStore) ListLinksWithClickCounts(ctx context.Context, code string, offset, limit int) ([]model.LinkWithClickCount, int64, error) {
	rows := make([]model.LinkWithClickCount, 0, len(f.links))
	for _, link := range f.links {
		count := int64(0)
		for _, click := range f.clicks {
			if click.LinkID == link.ID {
				count++
			}
		}
		rows = append(rows, model.LinkWithClickCount{Link: *link, ClickCount: count})
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeStore) ListClicksForLink(ctx context.Context, linkID uint, offset, limit int) ([]model.Click, int64, error) {
	clicks := make([]model.Click, 0)
	for _, click := range f.clicks {
		if click.LinkID == linkID {
			clicks = append(clicks, *click)
		}
	}
	return clicks, int64(len(clicks)), nil
}

func (f *fakeStore) ListLinks(ctx context.Context) ([]model.Link, error) {
	links := make([]model.Link, 0, len(f.links))
	for _, link := range f.links {
		links = append(links, *link)
	}
	return links, nil
}

func (f *fakeStore) UpsertDailyStat(ctx context.Context, stat *model.DailyStat) error {
	for i := range f.dailyStats {
		if f.dailyStats[i].LinkID == stat.LinkID && f.dailyStats[i].Date == stat.Date {
			f.dailyStats[i].PV = stat.PV
			f.dailyStats[i].UV = stat.UV
			return nil
		}
	}
	f.dailyStats = append(f.dailyStats, *stat)
	return nil
}

func (f *fakeStore) ListDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	stats := make([]model.DailyStat, 0)
	for _, s := range f.dailyStats {
		if s.LinkID == linkID {
			stats = append(stats, s)
		}
	}
	return stats, nil
}

func (f *fakeStore) clickCount() int {
	return len(f.clicks)
}

func newTestLinkService(t *testing.T, store repository.Store) *LinkService {
	t.Helper()
	return NewLinkService(store, nil)
}
