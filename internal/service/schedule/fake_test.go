package schedule

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cronyo/internal/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

const (
	testRegion  = "us-east-1"
	testAccount = "123456789012"
)

func ruleArn(name string) string {
	return fmt.Sprintf("arn:aws:events:%s:%s:rule/%s", testRegion, testAccount, name)
}

func functionArn(name string) string {
	return fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", testRegion, testAccount, name)
}

// fakeEvents はEventBridgeのインメモリ実装。ListRulesは2件ずつページングする。
type fakeEvents struct {
	aws.EventsAPI

	rules     map[string]*ebtypes.Rule
	targets   map[string][]ebtypes.Target
	mutations []string
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		rules:   map[string]*ebtypes.Rule{},
		targets: map[string][]ebtypes.Target{},
	}
}

func (f *fakeEvents) record(action, name string) {
	f.mutations = append(f.mutations, action+":"+name)
}

func (f *fakeEvents) ListRules(_ context.Context, in *eventbridge.ListRulesInput, _ ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error) {
	var names []string
	for name := range f.rules {
		if strings.HasPrefix(name, awssdk.ToString(in.NamePrefix)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	start := 0
	if in.NextToken != nil {
		start, _ = strconv.Atoi(*in.NextToken)
	}
	end := min(start+2, len(names))

	out := &eventbridge.ListRulesOutput{}
	for _, name := range names[start:end] {
		out.Rules = append(out.Rules, *f.rules[name])
	}
	if end < len(names) {
		out.NextToken = awssdk.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeEvents) DescribeRule(_ context.Context, in *eventbridge.DescribeRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.DescribeRuleOutput, error) {
	rule, ok := f.rules[awssdk.ToString(in.Name)]
	if !ok {
		return nil, &ebtypes.ResourceNotFoundException{Message: awssdk.String("rule not found")}
	}
	return &eventbridge.DescribeRuleOutput{
		Name:               rule.Name,
		Arn:                rule.Arn,
		Description:        rule.Description,
		ScheduleExpression: rule.ScheduleExpression,
		State:              rule.State,
	}, nil
}

func (f *fakeEvents) ListTargetsByRule(_ context.Context, in *eventbridge.ListTargetsByRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.ListTargetsByRuleOutput, error) {
	name := awssdk.ToString(in.Rule)
	if _, ok := f.rules[name]; !ok {
		return nil, &ebtypes.ResourceNotFoundException{Message: awssdk.String("rule not found")}
	}
	return &eventbridge.ListTargetsByRuleOutput{Targets: f.targets[name]}, nil
}

func (f *fakeEvents) PutRule(_ context.Context, in *eventbridge.PutRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error) {
	name := awssdk.ToString(in.Name)
	f.record("PutRule", name)
	state := in.State
	if state == "" {
		state = ebtypes.RuleStateEnabled
	}
	f.rules[name] = &ebtypes.Rule{
		Name:               awssdk.String(name),
		Arn:                awssdk.String(ruleArn(name)),
		Description:        in.Description,
		ScheduleExpression: in.ScheduleExpression,
		State:              state,
		EventBusName:       in.EventBusName,
	}
	return &eventbridge.PutRuleOutput{RuleArn: awssdk.String(ruleArn(name))}, nil
}

func (f *fakeEvents) PutTargets(_ context.Context, in *eventbridge.PutTargetsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error) {
	name := awssdk.ToString(in.Rule)
	f.record("PutTargets", name)
	existing := f.targets[name]
	for _, t := range in.Targets {
		replaced := false
		for i := range existing {
			if awssdk.ToString(existing[i].Id) == awssdk.ToString(t.Id) {
				existing[i] = t
				replaced = true
			}
		}
		if !replaced {
			existing = append(existing, t)
		}
	}
	f.targets[name] = existing
	return &eventbridge.PutTargetsOutput{}, nil
}

func (f *fakeEvents) RemoveTargets(_ context.Context, in *eventbridge.RemoveTargetsInput, _ ...func(*eventbridge.Options)) (*eventbridge.RemoveTargetsOutput, error) {
	name := awssdk.ToString(in.Rule)
	f.record("RemoveTargets", name)
	var kept []ebtypes.Target
	for _, t := range f.targets[name] {
		remove := false
		for _, id := range in.Ids {
			if awssdk.ToString(t.Id) == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, t)
		}
	}
	f.targets[name] = kept
	return &eventbridge.RemoveTargetsOutput{}, nil
}

func (f *fakeEvents) DeleteRule(_ context.Context, in *eventbridge.DeleteRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.DeleteRuleOutput, error) {
	name := awssdk.ToString(in.Name)
	f.record("DeleteRule", name)
	if len(f.targets[name]) > 0 {
		return nil, &ebtypes.ConcurrentModificationException{Message: awssdk.String("rule still has targets")}
	}
	delete(f.rules, name)
	delete(f.targets, name)
	return &eventbridge.DeleteRuleOutput{}, nil
}

func (f *fakeEvents) EnableRule(_ context.Context, in *eventbridge.EnableRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.EnableRuleOutput, error) {
	return &eventbridge.EnableRuleOutput{}, f.setState(awssdk.ToString(in.Name), ebtypes.RuleStateEnabled)
}

func (f *fakeEvents) DisableRule(_ context.Context, in *eventbridge.DisableRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.DisableRuleOutput, error) {
	return &eventbridge.DisableRuleOutput{}, f.setState(awssdk.ToString(in.Name), ebtypes.RuleStateDisabled)
}

func (f *fakeEvents) setState(name string, state ebtypes.RuleState) error {
	f.record(string(state), name)
	rule, ok := f.rules[name]
	if !ok {
		return &ebtypes.ResourceNotFoundException{Message: awssdk.String("rule not found")}
	}
	rule.State = state
	return nil
}

// fakeLambda は関数の存在と実行権限だけを持つLambdaのインメモリ実装
type fakeLambda struct {
	aws.LambdaAPI

	functions map[string]string // 関数名 -> ARN
	policies  map[string]map[string]string
	getErr    error
	permErr   error
	lookups   []string
}

func newFakeLambda(names ...string) *fakeLambda {
	f := &fakeLambda{functions: map[string]string{}, policies: map[string]map[string]string{}}
	for _, name := range names {
		f.functions[name] = functionArn(name)
	}
	return f
}

func (f *fakeLambda) lookup(nameOrArn string) (string, bool) {
	if arn, ok := f.functions[nameOrArn]; ok {
		return arn, true
	}
	for _, arn := range f.functions {
		if arn == nameOrArn {
			return arn, true
		}
	}
	return "", false
}

func (f *fakeLambda) GetFunction(_ context.Context, in *lambda.GetFunctionInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	f.lookups = append(f.lookups, name)
	if f.getErr != nil {
		return nil, f.getErr
	}
	arn, ok := f.lookup(name)
	if !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: awssdk.String("Function not found: " + name)}
	}
	return &lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{
			FunctionName: awssdk.String(name),
			FunctionArn:  awssdk.String(arn),
		},
	}, nil
}

func (f *fakeLambda) AddPermission(_ context.Context, in *lambda.AddPermissionInput, _ ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error) {
	if f.permErr != nil {
		return nil, f.permErr
	}
	fn := awssdk.ToString(in.FunctionName)
	sid := awssdk.ToString(in.StatementId)
	if f.policies[fn] == nil {
		f.policies[fn] = map[string]string{}
	}
	if _, ok := f.policies[fn][sid]; ok {
		return nil, &lambdatypes.ResourceConflictException{Message: awssdk.String("The statement id provided already exists")}
	}
	f.policies[fn][sid] = awssdk.ToString(in.SourceArn)
	return &lambda.AddPermissionOutput{}, nil
}

type fixture struct {
	events  *fakeEvents
	lambda  *fakeLambda
	manager *Manager
	logs    *bytes.Buffer
}

func newFixture(functions ...string) *fixture {
	events := newFakeEvents()
	fns := newFakeLambda(functions...)
	logs := &bytes.Buffer{}
	log := zerolog.New(logs).Level(zerolog.DebugLevel)
	return &fixture{
		events:  events,
		lambda:  fns,
		manager: NewManager(aws.NewEvents(events), aws.NewFunctions(fns), "cronyo", log),
		logs:    logs,
	}
}

func (f *fixture) ruleExpression(name string) string {
	rule, ok := f.events.rules[name]
	if !ok {
		return ""
	}
	return awssdk.ToString(rule.ScheduleExpression)
}
