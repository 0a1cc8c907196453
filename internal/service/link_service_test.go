package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/model"
	"linktrace-go/pkg/utils"
)

func TestCreateLinkGeneratesValidCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	link, err := svc.CreateLink(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if len(link.ShortCode) != utils.ShortCodeLength {
		t.Errorf("short code length = %d, want %d", len(link.ShortCode), utils.ShortCodeLength)
	}
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(link.ShortCode) {
		t.Errorf("short code %q contains characters outside the alphabet", link.ShortCode)
	}
	if link.OriginalURL != "https://example.com/page" {
		t.Errorf("original url = %q", link.OriginalURL)
	}
}

func TestCreateLinkRejectsInvalidURL(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	for _, raw := range []string{"", "notaurl", "ftp://example.com/x", "://bad"} {
		_, err := svc.CreateLink(context.Background(), raw)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInvalidRequest {
			t.Errorf("CreateLink(%q) error = %v, want invalid_request", raw, err)
		}
	}
	if len(store.links) != 0 {
		t.Errorf("invalid URLs must not create links, got %d", len(store.links))
	}
}

func TestCreateLinkRetriesOnCollision(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	// 人为制造碰撞：前两次固定返回已占用的短码
	if _, err := store.CreateLink(context.Background(), "taken123", "https://example.com/a"); err != nil {
		t.Fatal(err)
	}
	attempts := 0
	svc.genCode = func(length int) (string, error) {
		attempts++
		if attempts <= 2 {
			return "taken123", nil
		}
		return "fresh456", nil
	}

	link, err := svc.CreateLink(context.Background(), "https://example.com/b")
	if err != nil {
		t.Fatalf("CreateLink failed after collisions: %v", err)
	}
	if link.ShortCode != "fresh456" {
		t.Errorf("short code = %q, want fresh456", link.ShortCode)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestCreateLinkExhaustsRetryBudget(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	// 短码空间"只有一个值"，预算必然耗尽
	if _, err := store.CreateLink(context.Background(), "only0001", "https://example.com/a"); err != nil {
		t.Fatal(err)
	}
	attempts := 0
	svc.genCode = func(length int) (string, error) {
		attempts++
		return "only0001", nil
	}

	_, err := svc.CreateLink(context.Background(), "https://example.com/b")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindCodeExhausted {
		t.Fatalf("error = %v, want code_exhausted", err)
	}
	if attempts != maxCreateAttempts {
		t.Errorf("attempts = %d, want %d", attempts, maxCreateAttempts)
	}
	if len(store.links) != 1 {
		t.Errorf("exhausted creation must not add links, got %d", len(store.links))
	}
}

func TestCreateLinkFailsFastOnOtherErrors(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	boom := errors.New("connection reset")
	svc.genCode = func(length int) (string, error) { return "whatever", nil }
	failing := &erroringStore{fakeStore: store, createLinkErr: boom}
	svc.store = failing

	_, err := svc.CreateLink(context.Background(), "https://example.com/x")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindPersistence {
		t.Fatalf("error = %v, want persistence", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("cause %v not wrapped", boom)
	}
	if failing.calls != 1 {
		t.Errorf("store calls = %d, want 1 (no retry on non-duplicate errors)", failing.calls)
	}
}

func TestConcurrentCreateNeverSharesCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	for i := 0; i < 50; i++ {
		if _, err := svc.CreateLink(context.Background(), "https://example.com/p"); err != nil {
			t.Fatalf("CreateLink #%d failed: %v", i, err)
		}
	}
	// map 按短码索引，冲突会覆盖；数量一致说明无重复
	if len(store.links) != 50 {
		t.Errorf("links = %d, want 50 distinct codes", len(store.links))
	}
}

func TestResolveShortCodeNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	_, err := svc.ResolveShortCode(context.Background(), "zzzzzzzz")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindNotFound {
		t.Fatalf("error = %v, want not_found", err)
	}
}

func TestResolveShortCodeFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	created, err := svc.CreateLink(context.Background(), "https://example.com/dest")
	if err != nil {
		t.Fatal(err)
	}

	link, err := svc.ResolveShortCode(context.Background(), created.ShortCode)
	if err != nil {
		t.Fatalf("ResolveShortCode failed: %v", err)
	}
	if link.OriginalURL != "https://example.com/dest" {
		t.Errorf("original url = %q", link.OriginalURL)
	}
}

func TestResolveShortCodeRejectsMalformed(t *testing.T) {
	store := newFakeStore()
	svc := newTestLinkService(t, store)

	for _, code := range []string{"", "short", "way-too-long-code", "bad code"} {
		_, err := svc.ResolveShortCode(context.Background(), code)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindNotFound {
			t.Errorf("ResolveShortCode(%q) error = %v, want not_found", code, err)
		}
	}
}

// erroringStore 在 CreateLink 上注入任意错误
type erroringStore struct {
	*fakeStore
	createLinkErr error
	calls         int
}

func (e *erroringStore) CreateLink(ctx context.Context, shortCode, originalURL string) (*model.Link, error) {
	e.calls++
	return nil, e.createLinkErr
}
