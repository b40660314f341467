package signer

import (
	"os"
	"path/filepath"

	"cronyo/internal/config"

	"github.com/rs/zerolog"
)

// BundledConfigEnv は同梱設定の置き場所を示す環境変数（Lambdaランタイムが設定する）
const BundledConfigEnv = "LAMBDA_TASK_ROOT"

// FromEnvironment は同梱のconfig.ymlとCRONYO_環境変数から秘密鍵を読み込んでHandlerを作成する
func FromEnvironment(log zerolog.Logger) (*Handler, error) {
	path := ""
	if root := os.Getenv(BundledConfigEnv); root != "" {
		path = filepath.Join(root, config.DefaultFileName)
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := loaded.RequireSecret(); err != nil {
		return nil, err
	}
	log.Debug().Str("config", loaded.Path).Str("namespace", loaded.Namespace).Msg("設定を読み込みました")
	return NewHandler(loaded.SecretKey, nil, log)
}
