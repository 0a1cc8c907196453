package utils

import (
	"fmt"
	"net/url"
	"regexp"
)

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateShortCode 校验 ShortCode 是否合法（字母表内字符，定长）
func ValidateShortCode(shortCode string) error {
	if shortCode == "" {
		return fmt.Errorf("error.shortcode_required")
	}

	if len(shortCode) != ShortCodeLength {
		return fmt.Errorf("error.shortcode_invalid")
	}

	if !shortCodePattern.MatchString(shortCode) {
		return fmt.Errorf("error.shortcode_invalid")
	}

	return nil
}

// ValidateOriginalURL 校验目标 URL 的合法性
func ValidateOriginalURL(originalURL string) error {
	// 1. 检查目标 URL 是否为空
	if originalURL == "" {
		return fmt.Errorf("error.original_url_required")
	}

	// 2. URL 格式校验，只接受绝对 http(s) 地址
	u, err := url.ParseRequestURI(originalURL)
	if err != nil {
		return fmt.Errorf("error.original_url_invalid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("error.original_url_invalid")
	}

	// 3. URL 长度限制
	if len(originalURL) > 2048 {
		return fmt.Errorf("error.original_url_max_length")
	}
	return nil
}
