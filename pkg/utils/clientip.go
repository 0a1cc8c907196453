package utils

import (
	"net"
	"net/http"
	"strings"
)

// DeriveClientIP 按固定优先级推导客户端 IP：
// X-Forwarded-For 首段 → X-Real-IP → 连接远端地址。
// 结果统一去掉 IPv6 映射 IPv4 前缀（::ffff:），::1 归一为 127.0.0.1。
func DeriveClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return NormalizeIP(first)
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return NormalizeIP(realIP)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return NormalizeIP(host)
}

// NormalizeIP 归一化 IP 文本表示
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	ip = strings.TrimPrefix(ip, "::ffff:")
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

// IsPublicIP 判断是否值得做地理位置解析：私网、环回、未指定地址直接跳过
func IsPublicIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsUnspecified() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return false
	}
	return true
}
