// Package config はcronyoの設定ファイル（config.yml）を扱う。
//
// 読み込み順序:
//  1. .env を godotenv で読み込む（存在しなくてもエラーにしない）
//  2. 明示指定のパス、なければ ./config.yml → ~/.cronyo/config.yml の順で最初に中身のあるもの
//  3. CRONYO_ 接頭辞の環境変数で上書き（envconfig）
//  4. デフォルト値を補完して validator で検証
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultNamespace はnamespace未指定時の値
const DefaultNamespace = "cronyo"

// EnvPrefix は環境変数による上書きの接頭辞
const EnvPrefix = "CRONYO"

// DefaultFileName は設定ファイル名
const DefaultFileName = "config.yml"

// Config はcronyoの設定
type Config struct {
	Namespace   string   `yaml:"namespace" envconfig:"NAMESPACE" validate:"required,max=32,excludesall=/*:"`
	SecretKey   string   `yaml:"secret_key,omitempty" envconfig:"SECRET_KEY" validate:"omitempty,min=16"`
	Region      string   `yaml:"region,omitempty" envconfig:"REGION"`
	Profile     string   `yaml:"profile,omitempty" envconfig:"PROFILE"`
	ExtraWiring []Wiring `yaml:"extra_wiring,omitempty" ignored:"true" validate:"dive"`
}

// Wiring はデプロイ対象のLambda関数1つ分の定義
type Wiring struct {
	Lambda FunctionWiring `yaml:"lambda"`
}

// FunctionWiring はLambda関数の設定値
type FunctionWiring struct {
	FunctionName string `yaml:"FunctionName" validate:"required,max=64"`
	Handler      string `yaml:"Handler,omitempty"`
	MemorySize   int32  `yaml:"MemorySize" validate:"min=128,max=10240"`
	Timeout      int32  `yaml:"Timeout" validate:"min=1,max=900"`
	Artifact     string `yaml:"Artifact,omitempty"` // ビルド済みバイナリ名（--artifacts 配下）
}

// Loaded は読み込み結果と読み込んだファイル名
type Loaded struct {
	Config
	Path  string // 実際に読んだ（または作成予定の）ファイル
	Found bool   // ファイルが見つかったか
}

var validate = validator.New()

// DefaultPaths は設定ファイルの探索順
func DefaultPaths() []string {
	paths := []string{}
	if abs, err := filepath.Abs(DefaultFileName); err == nil {
		paths = append(paths, abs)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cronyo", DefaultFileName))
	}
	return paths
}

// Load は設定を読み込む。path が空の場合は DefaultPaths を探索する。
func Load(path string) (*Loaded, error) {
	_ = godotenv.Load()

	candidates := DefaultPaths()
	if path != "" {
		candidates = []string{path}
	}

	loaded := &Loaded{}
	for _, candidate := range candidates {
		cfg, ok, err := readFile(candidate)
		if err != nil {
			return nil, err
		}
		loaded.Path = candidate
		if ok {
			loaded.Config = *cfg
			loaded.Found = true
			break
		}
	}
	// 見つからなかった場合はホーム配下を生成先にする
	if !loaded.Found && path == "" && len(candidates) > 0 {
		loaded.Path = candidates[len(candidates)-1]
	}

	if err := envconfig.Process(EnvPrefix, &loaded.Config); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	loaded.Config.applyDefaults()

	if err := loaded.Config.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Parse はYAMLから設定を読み込む（環境変数は見ない）
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal は設定をYAMLに変換する（Lambdaパッケージ同梱用）
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate は設定値を検証する
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("設定値が不正です: %w", err)
	}
	return nil
}

// RequireSecret は署名関数が必要とする secret_key の存在を確認する
func (c Config) RequireSecret() error {
	if c.SecretKey == "" {
		return errors.New("secret_key が設定されていません。`cronyo configure` を実行してください")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	for i := range c.ExtraWiring {
		fn := &c.ExtraWiring[i].Lambda
		if fn.MemorySize == 0 {
			fn.MemorySize = 128
		}
		if fn.Timeout == 0 {
			fn.Timeout = 30
		}
	}
}

// readFile は1ファイルを読む。存在しない・空の場合は ok=false。
func readFile(path string) (*Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("設定ファイル %s の読み込みに失敗: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, false, fmt.Errorf("設定ファイル %s の解析に失敗: %w", path, err)
	}
	if cfg.isZero() {
		return nil, false, nil
	}
	return &cfg, true, nil
}

func (c Config) isZero() bool {
	return c.Namespace == "" && c.SecretKey == "" && c.Region == "" && c.Profile == "" && len(c.ExtraWiring) == 0
}
