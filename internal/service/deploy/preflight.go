package deploy

import (
	"context"
	"errors"
	"fmt"

	"cronyo/internal/aws"

	"github.com/rs/zerolog"
)

var (
	// ErrRegionNotSet はリージョンが解決できない
	ErrRegionNotSet = errors.New("リージョンが設定されていません。aws configure を実行するか --region を指定してください")
	// ErrCredentials は認証情報が使えない
	ErrCredentials = errors.New("AWS認証情報が見つかりません。aws configure を実行してください")
)

// Preflight はデプロイ前にリージョンと認証情報を確認し、アカウントIDを返す
func Preflight(ctx context.Context, region string, identity *aws.Identity, log zerolog.Logger) (string, error) {
	log.Info().Msg("AWS認証情報とリージョンを確認中")
	if region == "" {
		return "", ErrRegionNotSet
	}

	account, arn, err := identity.CallerIdentity(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	log.Debug().Str("account", account).Str("arn", arn).Str("region", region).Msg("認証情報OK")
	return account, nil
}
