package deploy

import (
	"path/filepath"
	"time"

	"cronyo/internal/config"
)

const (
	// LiveAlias はルールのターゲットが参照するエイリアス
	LiveAlias = "live"
	// KeepVersions はクリーンアップ後に残す公開バージョン数
	KeepVersions = 5
	// BootstrapName はprovided.al2023ランタイムが起動する実行ファイル名
	BootstrapName = "bootstrap"
	// ConfigName は関数パッケージに同梱する設定ファイル名
	ConfigName = config.DefaultFileName

	rolePropagationDelay = 5 * time.Second
	functionWaitTimeout  = 5 * time.Minute
	latestVersion        = "$LATEST"
)

// Component はデプロイ対象のLambda関数
type Component struct {
	FunctionName string
	Handler      string
	MemorySize   int32
	Timeout      int32
	Artifact     string // --artifacts 配下のディレクトリ名（中に bootstrap を置く）
}

// BootstrapPath はビルド済みバイナリのパスを返す
func (c Component) BootstrapPath(artifactsDir string) string {
	if filepath.Base(c.Artifact) == BootstrapName {
		return filepath.Join(artifactsDir, c.Artifact)
	}
	return filepath.Join(artifactsDir, c.Artifact, BootstrapName)
}

// Result は1関数分のデプロイ結果
type Result struct {
	FunctionName string
	Version      string
	AliasArn     string
	Created      bool
}

// RollbackResult は1関数分のロールバック結果
type RollbackResult struct {
	FunctionName string
	From         string
	To           string
}

// Components は組み込みの署名関数とextra_wiringを合わせたデプロイ対象を返す
func Components(cfg config.Config) []Component {
	components := []Component{
		{FunctionName: cfg.Namespace + "-http_post", Handler: BootstrapName, MemorySize: 128, Timeout: 30, Artifact: "http-post"},
		{FunctionName: cfg.Namespace + "-http_get", Handler: BootstrapName, MemorySize: 128, Timeout: 30, Artifact: "http-get"},
	}
	for _, w := range cfg.ExtraWiring {
		fn := w.Lambda
		c := Component{
			FunctionName: fn.FunctionName,
			Handler:      fn.Handler,
			MemorySize:   fn.MemorySize,
			Timeout:      fn.Timeout,
			Artifact:     fn.Artifact,
		}
		if c.Handler == "" {
			c.Handler = BootstrapName
		}
		if c.Artifact == "" {
			c.Artifact = fn.FunctionName
		}
		components = append(components, c)
	}
	return components
}
