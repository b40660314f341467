package schedule

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"cronyo/internal/aws"

	"github.com/rs/zerolog"
)

const (
	invokeAction    = "lambda:InvokeFunction"
	eventsPrincipal = "events.amazonaws.com"
)

// Grant はEventBridgeからLambdaへの実行許可
type Grant struct {
	StatementID string
	SourceArn   string
	FunctionArn string
}

// PermissionSynchronizer はルールから関数を呼び出すための権限を冪等に設定する
type PermissionSynchronizer struct {
	functions *aws.Functions
	ns        Namespace
	log       zerolog.Logger
}

// NewPermissionSynchronizer はPermissionSynchronizerを作成
func NewPermissionSynchronizer(functions *aws.Functions, ns Namespace, log zerolog.Logger) *PermissionSynchronizer {
	return &PermissionSynchronizer{functions: functions, ns: ns, log: log}
}

// SourcePattern は許可のソースARNを決める。
// namespace配下のルールは "<rule-prefix>/<namespace>*" にまとめ、1つの許可で全ルールをカバーする。
func (p *PermissionSynchronizer) SourcePattern(ruleArn string) string {
	idx := strings.LastIndex(ruleArn, "/")
	if idx < 0 {
		return ruleArn
	}
	prefix, name := ruleArn[:idx], ruleArn[idx+1:]
	if p.ns.Owns(name) {
		return prefix + "/" + string(p.ns) + "*"
	}
	return ruleArn
}

// StatementID はソースパターンから決定的な許可IDを作る
func StatementID(sourcePattern string) string {
	sum := sha1.Sum([]byte(sourcePattern))
	return hex.EncodeToString(sum[:])
}

// Authorize は関数にルールからの実行権限を付与する。
// 同じソースパターンで設定済みの場合は ErrPermissionAlreadyGranted を返す。
func (p *PermissionSynchronizer) Authorize(ctx context.Context, functionArn, ruleArn string) (Grant, error) {
	source := p.SourcePattern(ruleArn)
	grant := Grant{
		StatementID: StatementID(source),
		SourceArn:   source,
		FunctionArn: functionArn,
	}

	p.log.Debug().Str("source_arn", source).Str("statement_id", grant.StatementID).Msg("Lambdaの実行権限を設定中")
	err := p.functions.AddPermission(ctx, aws.PermissionInput{
		FunctionName: functionArn,
		StatementID:  grant.StatementID,
		Action:       invokeAction,
		Principal:    eventsPrincipal,
		SourceArn:    source,
	})
	if err != nil {
		if aws.IsConflict(err) {
			p.log.Debug().Err(err).Msg("実行権限は設定済みです")
			return grant, fmt.Errorf("%w: %s", ErrPermissionAlreadyGranted, grant.StatementID)
		}
		return Grant{}, err
	}
	return grant, nil
}
