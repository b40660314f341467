package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cronyo/internal/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog"
)

// Manager はcronyoが管理するスケジュールルールのライフサイクルを扱う
type Manager struct {
	events      *aws.Events
	ns          Namespace
	resolver    *Resolver
	permissions *PermissionSynchronizer
	log         zerolog.Logger
}

// NewManager はManagerを作成する。namespaceは設定ファイルから明示的に渡す。
func NewManager(events *aws.Events, functions *aws.Functions, namespace string, log zerolog.Logger) *Manager {
	ns := Namespace(namespace)
	return &Manager{
		events:      events,
		ns:          ns,
		resolver:    NewResolver(functions, ns, log),
		permissions: NewPermissionSynchronizer(functions, ns, log),
		log:         log,
	}
}

// Namespace は管理対象の接頭辞を返す
func (m *Manager) Namespace() Namespace {
	return m.ns
}

// Add は新しいルールを作成する。同名またはnamespace付き名のルールがあれば何もしない。
func (m *Manager) Add(ctx context.Context, in RuleInput) (string, error) {
	if in.Name == "" {
		in.Name = m.ns.RandomName()
	}

	rules, err := m.Find(ctx, in.Name)
	if err != nil {
		return "", err
	}
	if len(rules) > 0 {
		m.log.Warn().Msgf("ルール %s は既に存在します。updateを使ってください", in.Name)
		return "", fmt.Errorf("%w: %s", ErrRuleAlreadyExists, in.Name)
	}

	if err := m.Put(ctx, in); err != nil {
		return "", err
	}
	return in.Name, nil
}

// Update は既存ルールの式・ターゲット・説明を上書きする。
// 名前とnamespace付き名の両方にマッチした場合は両方を更新する。
func (m *Manager) Update(ctx context.Context, in RuleInput) error {
	if in.Name == "" {
		return errors.New("ルール名を指定してください")
	}

	rules, err := m.Find(ctx, in.Name)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		m.log.Warn().Msgf("ルールが見つかりません: %v", m.ns.Candidates(in.Name))
		return fmt.Errorf("%w: %s", ErrRuleNotFound, in.Name)
	}

	for _, rule := range rules {
		target := in
		target.Name = awssdk.ToString(rule.Name)
		if err := m.Put(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

// Put はルールの作成・更新の共通処理
func (m *Manager) Put(ctx context.Context, in RuleInput) error {
	expr, err := ParseExpression(in.Expression)
	if err != nil {
		return err
	}
	payload, err := encodeInput(in.Input)
	if err != nil {
		return err
	}

	m.log.Info().Msgf("Lambda関数 %s を検索中", in.Function)
	functionArn, err := m.resolver.Resolve(ctx, in.Function)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			m.log.Error().Msgf("Lambda関数が見つかりません: %s", in.Function)
		}
		return err
	}

	m.log.Debug().Msgf("ルール %s を作成/更新: %s -> %s", in.Name, expr, functionArn)
	ruleArn, err := m.events.PutRule(ctx, aws.PutRuleInput{
		Name:               in.Name,
		ScheduleExpression: expr.String(),
		Description:        in.Description,
		State:              types.RuleStateEnabled,
	})
	if err != nil {
		return err
	}

	err = m.events.PutTargets(ctx, in.Name, types.Target{
		Id:    awssdk.String(TargetID),
		Arn:   awssdk.String(functionArn),
		Input: awssdk.String(payload),
	})
	if err != nil {
		return err
	}

	if _, err := m.permissions.Authorize(ctx, functionArn, ruleArn); err != nil && !errors.Is(err, ErrPermissionAlreadyGranted) {
		return err
	}

	rules, err := m.find(ctx, in.Name)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		out, err := m.exportYAML(ctx, rule)
		if err != nil {
			return err
		}
		m.log.Info().Msgf("ルールを作成/更新しました:\n%s", out)
	}
	return nil
}

// Find は名前そのものとnamespace付き名に完全一致するルールを重複なく返す
func (m *Manager) Find(ctx context.Context, name string) ([]types.Rule, error) {
	var rules []types.Rule
	seen := map[string]bool{}
	for _, candidate := range m.ns.Candidates(name) {
		found, err := m.find(ctx, candidate)
		if err != nil {
			return nil, err
		}
		for _, rule := range found {
			n := awssdk.ToString(rule.Name)
			if seen[n] {
				continue
			}
			seen[n] = true
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func (m *Manager) find(ctx context.Context, name string) ([]types.Rule, error) {
	listed, err := m.events.ListRules(ctx, name)
	if err != nil {
		return nil, err
	}
	var rules []types.Rule
	for _, rule := range listed {
		if awssdk.ToString(rule.Name) == name {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// resolve はFindの結果が空ならwarnを出してErrRuleNotFoundを返す
func (m *Manager) resolve(ctx context.Context, name string) ([]types.Rule, error) {
	rules, err := m.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		m.log.Warn().Msgf("ルールが見つかりません: %v", m.ns.Candidates(name))
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	return rules, nil
}

// Delete はマッチした全ルールのターゲットを外してからルールを削除する
func (m *Manager) Delete(ctx context.Context, name string) ([]string, error) {
	rules, err := m.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	targets := make(map[string][]types.Target, len(rules))
	for _, rule := range rules {
		ruleName := awssdk.ToString(rule.Name)
		ts, err := m.events.ListTargetsByRule(ctx, ruleName)
		if err != nil {
			return nil, err
		}
		targets[ruleName] = ts

		out, err := renderYAML(exportRule(rule, ts))
		if err != nil {
			return nil, err
		}
		m.log.Info().Msgf("ルールを削除します:\n%s", out)
	}

	var deleted []string
	for _, rule := range rules {
		ruleName := awssdk.ToString(rule.Name)
		if hasTarget(targets[ruleName], TargetID) {
			if err := m.events.RemoveTargets(ctx, ruleName, TargetID); err != nil {
				return deleted, err
			}
		}
		if err := m.events.DeleteRule(ctx, ruleName); err != nil {
			return deleted, err
		}
		m.log.Info().Msgf("ルール %s を削除しました", ruleName)
		deleted = append(deleted, ruleName)
	}
	return deleted, nil
}

// Enable はマッチした全ルールを有効化する
func (m *Manager) Enable(ctx context.Context, name string) ([]string, error) {
	return m.setState(ctx, name, StateEnabled)
}

// Disable はマッチした全ルールを無効化する
func (m *Manager) Disable(ctx context.Context, name string) ([]string, error) {
	return m.setState(ctx, name, StateDisabled)
}

func (m *Manager) setState(ctx context.Context, name, state string) ([]string, error) {
	rules, err := m.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, rule := range rules {
		ruleName := awssdk.ToString(rule.Name)
		switch state {
		case StateEnabled:
			m.log.Info().Msgf("ルール %s を有効化中", ruleName)
			err = m.events.EnableRule(ctx, ruleName)
		default:
			m.log.Info().Msgf("ルール %s を無効化中", ruleName)
			err = m.events.DisableRule(ctx, ruleName)
		}
		if err != nil {
			return changed, err
		}
		changed = append(changed, ruleName)
	}
	return changed, nil
}

// encodeInput はターゲットに渡すペイロードをJSON文字列にする。nilは空オブジェクト。
func encodeInput(input any) (string, error) {
	if input == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("ターゲット入力のJSON変換に失敗: %w", err)
	}
	return string(raw), nil
}

func hasTarget(targets []types.Target, id string) bool {
	for _, t := range targets {
		if awssdk.ToString(t.Id) == id {
			return true
		}
	}
	return false
}
