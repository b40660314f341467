package deploy

import (
	"context"
	"fmt"
	"io"
	"time"

	"cronyo/internal/aws"
	"cronyo/internal/config"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Options はデプロイのオプション
type Options struct {
	ArtifactsDir string                   // ビルド済みバイナリの置き場所
	Architecture lambdatypes.Architecture // 空ならarm64
	Out          io.Writer                // 進捗表示の出力先（nilなら表示しない）
}

// Deployer は署名関数とextra_wiringの関数をデプロイする
type Deployer struct {
	roles     *aws.Roles
	functions *aws.Functions
	cfg       config.Config
	opts      Options
	log       zerolog.Logger
	sleep     func(context.Context, time.Duration) error
}

// NewDeployer はDeployerを作成
func NewDeployer(roles *aws.Roles, functions *aws.Functions, cfg config.Config, opts Options, log zerolog.Logger) *Deployer {
	if opts.Architecture == "" {
		opts.Architecture = lambdatypes.ArchitectureArm64
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Deployer{
		roles:     roles,
		functions: functions,
		cfg:       cfg,
		opts:      opts,
		log:       log,
		sleep:     sleepContext,
	}
}

// Run はロールを用意してから全関数をパッケージ・デプロイする
func (d *Deployer) Run(ctx context.Context) ([]Result, error) {
	if err := d.cfg.RequireSecret(); err != nil {
		return nil, err
	}
	bundled, err := d.bundledConfig()
	if err != nil {
		return nil, err
	}

	roleArn, err := d.EnsureRole(ctx)
	if err != nil {
		return nil, err
	}

	components := Components(d.cfg)
	bar := progressbar.NewOptions(len(components),
		progressbar.OptionSetWriter(d.opts.Out),
		progressbar.OptionSetDescription("デプロイ中..."),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]Result, 0, len(components))
	for _, c := range components {
		zipFile, err := Package(ctx, c.BootstrapPath(d.opts.ArtifactsDir), bundled)
		if err != nil {
			return results, fmt.Errorf("%s のパッケージ作成に失敗: %w", c.FunctionName, err)
		}
		result, err := d.deployFunction(ctx, roleArn, c, zipFile)
		if err != nil {
			return results, fmt.Errorf("%s のデプロイに失敗: %w", c.FunctionName, err)
		}
		results = append(results, result)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return results, nil
}

// bundledConfig は関数に同梱する設定を返す。ローカル専用のprofileは含めない。
func (d *Deployer) bundledConfig() ([]byte, error) {
	cfg := d.cfg
	cfg.Profile = ""
	return cfg.Marshal()
}

func (d *Deployer) deployFunction(ctx context.Context, roleArn string, c Component, zipFile []byte) (Result, error) {
	spec := aws.FunctionSpec{
		Name:         c.FunctionName,
		Runtime:      lambdatypes.RuntimeProvidedal2023,
		Architecture: d.opts.Architecture,
		Role:         roleArn,
		Handler:      c.Handler,
		MemorySize:   c.MemorySize,
		Timeout:      c.Timeout,
	}
	result := Result{FunctionName: c.FunctionName}

	d.log.Info().Msgf("Lambda関数 %s を検索中", c.FunctionName)
	_, err := d.functions.GetFunction(ctx, c.FunctionName)
	var published aws.PublishedFunction
	switch {
	case aws.IsNotFound(err):
		d.log.Info().Msgf("Lambda関数 %s を作成中", c.FunctionName)
		if published, err = d.functions.CreateFunction(ctx, spec, zipFile); err != nil {
			return result, err
		}
		if err := d.functions.WaitActive(ctx, c.FunctionName, functionWaitTimeout); err != nil {
			return result, err
		}
		result.Created = true
	case err != nil:
		return result, err
	default:
		d.log.Info().Msgf("Lambda関数 %s を更新中", c.FunctionName)
		if err := d.functions.UpdateFunctionConfiguration(ctx, spec); err != nil {
			return result, err
		}
		if err := d.functions.WaitUpdated(ctx, c.FunctionName, functionWaitTimeout); err != nil {
			return result, err
		}
		if published, err = d.functions.UpdateFunctionCode(ctx, c.FunctionName, zipFile); err != nil {
			return result, err
		}
		if err := d.functions.WaitUpdated(ctx, c.FunctionName, functionWaitTimeout); err != nil {
			return result, err
		}
	}
	result.Version = published.Version

	aliasArn, err := d.pointAlias(ctx, c.FunctionName, LiveAlias, published.Version)
	if err != nil {
		return result, err
	}
	result.AliasArn = aliasArn

	if err := d.cleanupOldVersions(ctx, c.FunctionName); err != nil {
		return result, err
	}
	d.log.Debug().Str("alias_arn", aliasArn).Str("version", published.Version).Msg("デプロイ完了")
	return result, nil
}

// pointAlias はエイリアスを作成し、既にあれば向き先を更新する
func (d *Deployer) pointAlias(ctx context.Context, name, alias, version string) (string, error) {
	d.log.Info().Msgf("エイリアス %s を作成中: %s:%s", alias, name, version)
	arn, err := d.functions.CreateAlias(ctx, name, alias, version)
	if err == nil {
		return arn, nil
	}
	if !aws.IsConflict(err) {
		return "", err
	}
	d.log.Info().Msgf("エイリアス %s は既に存在するため更新します: %s:%s", alias, name, version)
	return d.functions.UpdateAlias(ctx, name, alias, version)
}

// cleanupOldVersions は新しい方からKeepVersions個を残して公開バージョンを削除する
func (d *Deployer) cleanupOldVersions(ctx context.Context, name string) error {
	versions, err := d.versions(ctx, name)
	if err != nil {
		return err
	}
	if len(versions) <= KeepVersions {
		return nil
	}

	d.log.Info().Msgf("%s の古いバージョンを削除中（%d個を保持）", name, KeepVersions)
	for _, version := range versions[:len(versions)-KeepVersions] {
		d.log.Debug().Msgf("%s のバージョン %s を削除", name, version)
		if err := d.functions.DeleteFunctionVersion(ctx, name, version); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
