package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configTemplate = `# cronyo 設定ファイル
#
# namespace: 作成するルール・関数・IAMロール名の接頭辞
namespace: cronyo

# secret_key: http_get / http_post 関数がリクエストに署名する共有鍵
secret_key: RANDOM_KEY

# region / profile: 未指定の場合はAWS SDKのデフォルト解決に従う
# region: ap-northeast-1
# profile: default

# extra_wiring: 追加でデプロイするLambda関数
# extra_wiring:
#   - lambda:
#       FunctionName: cronyo-my_task
#       MemorySize: 128
#       Timeout: 30
#       Artifact: my-task
`

// Template は新しい秘密鍵を埋め込んだ設定ファイルの雛形を返す
func Template() (string, error) {
	key, err := randomHex(40)
	if err != nil {
		return "", err
	}
	return strings.Replace(configTemplate, "RANDOM_KEY", key, 1), nil
}

// Generate は雛形から設定ファイルを作成する（パーミッション0600）
func Generate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリ %s の作成に失敗: %w", filepath.Dir(path), err)
	}
	content, err := Template()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("設定ファイル %s の作成に失敗: %w", path, err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数の生成に失敗: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
