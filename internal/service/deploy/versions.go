package deploy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"cronyo/internal/aws"
)

// ErrNoPreviousVersion はロールバック先のバージョンがない
var ErrNoPreviousVersion = errors.New("ロールバック先のバージョンがありません")

// versions は公開済みバージョンを古い順に返す（$LATESTは除く）
func (d *Deployer) versions(ctx context.Context, name string) ([]string, error) {
	configs, err := d.functions.ListVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	all, err := aws.QueryStrings(configs, "[].Version")
	if err != nil {
		return nil, err
	}

	published := slices.DeleteFunc(all, func(v string) bool { return v == latestVersion })
	sort.SliceStable(published, func(i, j int) bool {
		a, errA := strconv.Atoi(published[i])
		b, errB := strconv.Atoi(published[j])
		if errA != nil || errB != nil {
			return published[i] < published[j]
		}
		return a < b
	})
	return published, nil
}

// Rollback は全関数のエイリアスを現在の1つ前のバージョンに戻す。
// 1関数の失敗で止めず、最後にまとめてエラーを返す。
func (d *Deployer) Rollback(ctx context.Context, alias string) ([]RollbackResult, error) {
	if alias == "" {
		alias = LiveAlias
	}

	var results []RollbackResult
	var errs []error
	for _, c := range Components(d.cfg) {
		result, err := d.rollbackFunction(ctx, c.FunctionName, alias)
		if err != nil {
			d.log.Error().Err(err).Msgf("%s をロールバックできません", c.FunctionName)
			errs = append(errs, fmt.Errorf("%s: %w", c.FunctionName, err))
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

func (d *Deployer) rollbackFunction(ctx context.Context, name, alias string) (RollbackResult, error) {
	versions, err := d.versions(ctx, name)
	if err != nil {
		return RollbackResult{}, err
	}
	live, err := d.functions.GetAlias(ctx, name, alias)
	if err != nil {
		return RollbackResult{}, err
	}

	idx := slices.Index(versions, live)
	if idx < 1 {
		return RollbackResult{}, fmt.Errorf("%w（現在: %s）", ErrNoPreviousVersion, live)
	}
	prev := versions[idx-1]

	d.log.Info().Msgf("%s をバージョン %s にロールバック中", name, prev)
	if _, err := d.pointAlias(ctx, name, alias, prev); err != nil {
		return RollbackResult{}, err
	}
	return RollbackResult{FunctionName: name, From: live, To: prev}, nil
}
