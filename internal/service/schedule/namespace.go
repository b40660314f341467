package schedule

import (
	"strings"

	"github.com/google/uuid"
)

// Namespace はcronyoが管理するリソース名の接頭辞
type Namespace string

// Apply は名前にnamespaceを付与する（例: cronyo-name）
func (n Namespace) Apply(name string) string {
	return string(n) + "-" + name
}

// Owns は名前がnamespace配下か判定する
func (n Namespace) Owns(name string) bool {
	return n != "" && strings.HasPrefix(name, string(n))
}

// Candidates は名前そのものとnamespace付き名を重複なく返す
func (n Namespace) Candidates(name string) []string {
	namespaced := n.Apply(name)
	if namespaced == name {
		return []string{name}
	}
	return []string{name, namespaced}
}

// RandomName は呼び出しごとに新しいランダムなルール名を生成する
func (n Namespace) RandomName() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return n.Apply(token[:20])
}
