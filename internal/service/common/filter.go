package common

import (
	"strings"

	"github.com/gobwas/glob"
)

// MatchPattern はワイルドカードパターンマッチングを行う
// ワイルドカード（* ? [ {）を含む場合はglob形式でマッチング、
// 含まない場合は部分一致で判定する。空パターンは全件マッチ。
func MatchPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		return strings.Contains(name, pattern)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(name)
}

// NewMatcher はパターンを一度だけコンパイルするマッチャーを返す
func NewMatcher(pattern string) (func(string) bool, error) {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[{") {
		return func(name string) bool { return MatchPattern(name, pattern) }, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return g.Match, nil
}
