package aws

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Query は結果をJSON形式に変換した上でJMESPath式を適用する。
// フィールド参照、[] による平坦化、[a, b] の複数選択をサポートする。
func Query(v any, expr string) (any, error) {
	if expr == "" {
		return v, nil
	}
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("クエリ式 %q が不正です: %w", expr, err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("クエリ対象のシリアライズに失敗: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("クエリ対象のデシリアライズに失敗: %w", err)
	}

	return compiled.Search(data)
}

// QueryString はQueryの結果を文字列として取り出す
func QueryString(v any, expr string) (string, error) {
	result, err := Query(v, expr)
	if err != nil {
		return "", err
	}
	s, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("クエリ式 %q の結果が文字列ではありません: %v", expr, result)
	}
	return s, nil
}

// QueryStrings はQueryの結果を文字列スライスとして取り出す
func QueryStrings(v any, expr string) ([]string, error) {
	result, err := Query(v, expr)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	items, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("クエリ式 %q の結果が配列ではありません: %v", expr, result)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("クエリ式 %q の要素が文字列ではありません: %v", expr, item)
		}
		out = append(out, s)
	}
	return out, nil
}
