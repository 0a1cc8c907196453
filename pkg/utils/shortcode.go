package utils

import (
	"crypto/rand"
	"fmt"
)

// ShortCodeAlphabet 64 个 URL 安全字符，均匀采样下 8 位短码冲突概率可以忽略
const ShortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// ShortCodeLength 默认短码长度
const ShortCodeLength = 8

// GenerateShortCode 生成定长随机短码。无副作用，可在重试循环中反复调用。
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("short code length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	// 字母表恰好 64 个字符，取低 6 位即为均匀分布
	for i, b := range buf {
		buf[i] = ShortCodeAlphabet[b&0x3f]
	}
	return string(buf), nil
}
