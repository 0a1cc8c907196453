package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"linktrace-go/internal/model"
	"linktrace-go/internal/repository"
	"linktrace-go/internal/service"
	"linktrace-go/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Logger = zap.NewNop()
	zap.ReplaceGlobals(logging.Logger)
}

// fakeStore 内存版 Store，路由测试不依赖 MySQL
type fakeStore struct {
	mu        sync.Mutex
	links     map[string]*model.Link
	clicks    map[uint]*model.Click
	nextLink  uint
	nextClick uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		links:  make(map[string]*model.Link),
		clicks: make(map[uint]*model.Click),
	}
}

func (s *fakeStore) CreateLink(ctx context.Context, shortCode, originalURL string) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.links[shortCode]; exists {
		return nil, repository.ErrDuplicateCode
	}
	s.nextLink++
	link := &model.Link{ShortCode: shortCode, OriginalURL: originalURL}
	link.ID = s.nextLink
	s.links[shortCode] = link
	return link, nil
}

func (s *fakeStore) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *fakeStore) CreateClick(ctx context.Context, click *model.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextClick++
	click.ID = s.nextClick
	cp := *click
	s.clicks[click.ID] = &cp
	return nil
}

func (s *fakeStore) GetClickByID(ctx context.Context, id uint) (*model.Click, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	click, ok := s.clicks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *click
	return &cp, nil
}

func (s *fakeStore) UpdateClickFingerprint(ctx context.Context, id uint, fp model.JSONMap, webrtcIP *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	click, ok := s.clicks[id]
	if !ok {
		return repository.ErrNotFound
	}
	click.Fingerprint = fp
	if click.WebrtcIP == nil {
		click.WebrtcIP = webrtcIP
	}
	return nil
}

func (s *fakeStore) ListLinksWithClickCounts(ctx context.Context, code string, offset, limit int) ([]model.LinkWithClickCount, int64, error) {
	return nil, 0, nil
}

func (s *fakeStore) ListClicksForLink(ctx context.Context, linkID uint, offset, limit int) ([]model.Click, int64, error) {
	return nil, 0, nil
}

func (s *fakeStore) ListLinks(ctx context.Context) ([]model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]model.Link, 0, len(s.links))
	for _, l := range s.links {
		links = append(links, *l)
	}
	return links, nil
}

func (s *fakeStore) UpsertDailyStat(ctx context.Context, stat *model.DailyStat) error { return nil }

func (s *fakeStore) ListDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	return nil, nil
}

func (s *fakeStore) clickCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clicks)
}

func (s *fakeStore) clickByID(id uint) *model.Click {
	s.mu.Lock()
	defer s.mu.Unlock()
	click, ok := s.clicks[id]
	if !ok {
		return nil
	}
	cp := *click
	return &cp
}

// newTestRouter 按 main.go 的路由形状搭一个最小 gin 引擎
func newTestRouter(t *testing.T, st repository.Store) *gin.Engine {
	t.Helper()

	h := New(
		service.NewLinkService(st, nil),
		service.NewClickService(st),
		service.NewGeoService(nil),
		service.NewStatsService(st, nil),
		nil,
	)

	r := gin.New()
	r.GET("/health", h.HealthHandler)
	r.POST("/track-fingerprint/:clickId", h.TrackFingerprintHandler)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			h.RedirectHandler(c)
			return
		}
		c.Status(http.StatusNotFound)
	})
	return r
}

// setTestGeoBackend 把地理查询指向本地 httptest 服务
func setTestGeoBackend(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	viper.Set("geo.base_url", ts.URL)
	viper.Set("geo.timeout_seconds", 2)
	t.Cleanup(func() {
		viper.Set("geo.base_url", "")
		viper.Set("geo.timeout_seconds", 0)
	})
}
