package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap 指纹字段的 JSON 列类型。
// 历史数据中指纹既可能是 JSON 对象，也可能是再编码过一层的 JSON 字符串，
// 兼容逻辑只允许出现在这里（存储适配层），业务代码拿到的永远是 map。
type JSONMap map[string]interface{}

// Value 统一以规范 JSON 对象写库
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 防御式解析：[]byte / string / 双重编码字符串都接受
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("json_map: unsupported column type %T", value)
	}

	if len(raw) == 0 {
		*m = nil
		return nil
	}

	out := make(map[string]interface{})
	if err := json.Unmarshal(raw, &out); err == nil {
		*m = out
		return nil
	}

	// 旧数据：列里存的是 JSON 字符串（再编码了一层）
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		out = make(map[string]interface{})
		if err := json.Unmarshal([]byte(nested), &out); err == nil {
			*m = out
			return nil
		}
	}

	return fmt.Errorf("json_map: cannot decode %q", raw)
}
