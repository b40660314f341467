package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// Events はEventBridge Rules操作のゲートウェイ。
// ページングはここで吸収し、失敗は全てRemoteServiceErrorとして返す。
type Events struct {
	api     EventsAPI
	busName string
}

// NewEvents はdefaultイベントバス向けのゲートウェイを作成
func NewEvents(api EventsAPI) *Events {
	return &Events{api: api, busName: DefaultEventBusName}
}

// ListRules はprefixに前方一致するルールを全ページ分取得する（空文字なら全件）
func (e *Events) ListRules(ctx context.Context, prefix string) ([]types.Rule, error) {
	var rules []types.Rule

	input := &eventbridge.ListRulesInput{EventBusName: aws.String(e.busName)}
	if prefix != "" {
		input.NamePrefix = aws.String(prefix)
	}
	for {
		out, err := e.api.ListRules(ctx, input)
		if err != nil {
			return nil, wrapRemote(ServiceEvents, "ListRules", err)
		}
		rules = append(rules, out.Rules...)

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return rules, nil
}

// DescribeRule はルール1件の詳細を取得する
func (e *Events) DescribeRule(ctx context.Context, name string) (*eventbridge.DescribeRuleOutput, error) {
	out, err := e.api.DescribeRule(ctx, &eventbridge.DescribeRuleInput{
		Name:         aws.String(name),
		EventBusName: aws.String(e.busName),
	})
	if err != nil {
		return nil, wrapRemote(ServiceEvents, "DescribeRule", err)
	}
	return out, nil
}

// ListTargetsByRule はルールのターゲットを全ページ分取得する
func (e *Events) ListTargetsByRule(ctx context.Context, rule string) ([]types.Target, error) {
	var targets []types.Target

	input := &eventbridge.ListTargetsByRuleInput{
		Rule:         aws.String(rule),
		EventBusName: aws.String(e.busName),
	}
	for {
		out, err := e.api.ListTargetsByRule(ctx, input)
		if err != nil {
			return nil, wrapRemote(ServiceEvents, "ListTargetsByRule", err)
		}
		targets = append(targets, out.Targets...)

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return targets, nil
}

// PutRuleInput はルールのupsert内容
type PutRuleInput struct {
	Name               string
	ScheduleExpression string
	Description        string
	State              types.RuleState // 空の場合はサービス側のデフォルト（ENABLED）
}

// PutRule はルールを作成または上書きし、ルールARNを返す
func (e *Events) PutRule(ctx context.Context, in PutRuleInput) (string, error) {
	input := &eventbridge.PutRuleInput{
		Name:               aws.String(in.Name),
		ScheduleExpression: aws.String(in.ScheduleExpression),
		EventBusName:       aws.String(e.busName),
		State:              in.State,
	}
	if in.Description != "" {
		input.Description = aws.String(in.Description)
	}

	out, err := e.api.PutRule(ctx, input)
	if err != nil {
		return "", wrapRemote(ServiceEvents, "PutRule", err)
	}
	return aws.ToString(out.RuleArn), nil
}

// PutTargets はルールのターゲットを作成または上書きする
func (e *Events) PutTargets(ctx context.Context, rule string, targets ...types.Target) error {
	out, err := e.api.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:         aws.String(rule),
		EventBusName: aws.String(e.busName),
		Targets:      targets,
	})
	if err != nil {
		return wrapRemote(ServiceEvents, "PutTargets", err)
	}
	if out.FailedEntryCount > 0 {
		return failedEntries(ServiceEvents, "PutTargets", putTargetsFailures(out.FailedEntries))
	}
	return nil
}

// RemoveTargets はルールから指定IDのターゲットを削除する
func (e *Events) RemoveTargets(ctx context.Context, rule string, ids ...string) error {
	out, err := e.api.RemoveTargets(ctx, &eventbridge.RemoveTargetsInput{
		Rule:         aws.String(rule),
		EventBusName: aws.String(e.busName),
		Ids:          ids,
	})
	if err != nil {
		return wrapRemote(ServiceEvents, "RemoveTargets", err)
	}
	if out.FailedEntryCount > 0 {
		return failedEntries(ServiceEvents, "RemoveTargets", removeTargetsFailures(out.FailedEntries))
	}
	return nil
}

// DeleteRule はルールを削除する（ターゲットは事前に外しておくこと）
func (e *Events) DeleteRule(ctx context.Context, name string) error {
	_, err := e.api.DeleteRule(ctx, &eventbridge.DeleteRuleInput{
		Name:         aws.String(name),
		EventBusName: aws.String(e.busName),
	})
	return wrapRemote(ServiceEvents, "DeleteRule", err)
}

// EnableRule はルールを有効化する
func (e *Events) EnableRule(ctx context.Context, name string) error {
	_, err := e.api.EnableRule(ctx, &eventbridge.EnableRuleInput{
		Name:         aws.String(name),
		EventBusName: aws.String(e.busName),
	})
	return wrapRemote(ServiceEvents, "EnableRule", err)
}

// DisableRule はルールを無効化する
func (e *Events) DisableRule(ctx context.Context, name string) error {
	_, err := e.api.DisableRule(ctx, &eventbridge.DisableRuleInput{
		Name:         aws.String(name),
		EventBusName: aws.String(e.busName),
	})
	return wrapRemote(ServiceEvents, "DisableRule", err)
}

type entryFailure struct {
	id      string
	code    string
	message string
}

func putTargetsFailures(entries []types.PutTargetsResultEntry) []entryFailure {
	failures := make([]entryFailure, 0, len(entries))
	for _, entry := range entries {
		failures = append(failures, entryFailure{
			id:      aws.ToString(entry.TargetId),
			code:    aws.ToString(entry.ErrorCode),
			message: aws.ToString(entry.ErrorMessage),
		})
	}
	return failures
}

func removeTargetsFailures(entries []types.RemoveTargetsResultEntry) []entryFailure {
	failures := make([]entryFailure, 0, len(entries))
	for _, entry := range entries {
		failures = append(failures, entryFailure{
			id:      aws.ToString(entry.TargetId),
			code:    aws.ToString(entry.ErrorCode),
			message: aws.ToString(entry.ErrorMessage),
		})
	}
	return failures
}

// failedEntries は部分失敗をRemoteServiceErrorにまとめる
func failedEntries(service, action string, failures []entryFailure) error {
	remote := &RemoteServiceError{Service: service, Action: action}
	var msgs []string
	for _, f := range failures {
		if remote.Code == "" {
			remote.Code = f.code
		}
		msgs = append(msgs, fmt.Sprintf("target %s: %s", f.id, f.message))
	}
	remote.Message = strings.Join(msgs, "; ")
	remote.Err = fmt.Errorf("%d件のエントリが失敗しました", len(failures))
	return remote
}
