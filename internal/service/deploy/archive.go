package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
)

// Package はbootstrapとconfig.ymlを関数パッケージ（zip）にまとめる
func Package(ctx context.Context, bootstrapPath string, configYAML []byte) ([]byte, error) {
	if _, err := os.Stat(bootstrapPath); err != nil {
		return nil, fmt.Errorf("ビルド済みバイナリ %s が見つかりません: %w", bootstrapPath, err)
	}

	dir, err := os.MkdirTemp("", "cronyo-package-")
	if err != nil {
		return nil, fmt.Errorf("一時ディレクトリの作成に失敗: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	configPath := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(configPath, configYAML, 0o644); err != nil {
		return nil, fmt.Errorf("%s の書き出しに失敗: %w", ConfigName, err)
	}

	files, err := archives.FilesFromDisk(ctx, &archives.FromDiskOptions{}, map[string]string{
		bootstrapPath: BootstrapName,
		configPath:    ConfigName,
	})
	if err != nil {
		return nil, fmt.Errorf("パッケージ対象の収集に失敗: %w", err)
	}

	var buf bytes.Buffer
	format := archives.Zip{Compression: zip.Deflate}
	if err := format.Archive(ctx, &buf, files); err != nil {
		return nil, fmt.Errorf("zipの作成に失敗: %w", err)
	}
	return buf.Bytes(), nil
}
