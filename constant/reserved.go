package constant

import "strings"

// reservedPrefixes 保留路径首段，短码路由不得命中这些名字
var reservedPrefixes = map[string]struct{}{
	"api":               {},
	"dashboard":         {},
	"login":             {},
	"logout":            {},
	"create":            {},
	"health":            {},
	"track-fingerprint": {},
	"static":            {},
	"favicon.ico":       {},
}

// IsReservedPath 判断请求路径首段是否为保留名
func IsReservedPath(path string) bool {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	_, ok := reservedPrefixes[p]
	return ok
}
