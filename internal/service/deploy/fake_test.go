package deploy

import (
	"context"
	"fmt"
	"strconv"

	"cronyo/internal/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

type fakeIAM struct {
	aws.IAMAPI

	roles    map[string]string
	policies map[string]string
	created  []string
}

func newFakeIAM(existing ...string) *fakeIAM {
	f := &fakeIAM{roles: map[string]string{}, policies: map[string]string{}}
	for _, name := range existing {
		f.roles[name] = "arn:aws:iam::123456789012:role/" + name
	}
	return f
}

func (f *fakeIAM) GetRole(_ context.Context, in *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	arn, ok := f.roles[awssdk.ToString(in.RoleName)]
	if !ok {
		return nil, &iamtypes.NoSuchEntityException{Message: awssdk.String("role not found")}
	}
	return &iam.GetRoleOutput{Role: &iamtypes.Role{RoleName: in.RoleName, Arn: awssdk.String(arn)}}, nil
}

func (f *fakeIAM) CreateRole(_ context.Context, in *iam.CreateRoleInput, _ ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	name := awssdk.ToString(in.RoleName)
	f.created = append(f.created, name)
	f.roles[name] = "arn:aws:iam::123456789012:role/" + name
	return &iam.CreateRoleOutput{}, nil
}

func (f *fakeIAM) PutRolePolicy(_ context.Context, in *iam.PutRolePolicyInput, _ ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	f.policies[awssdk.ToString(in.RoleName)+"/"+awssdk.ToString(in.PolicyName)] = awssdk.ToString(in.PolicyDocument)
	return &iam.PutRolePolicyOutput{}, nil
}

type fakeFunction struct {
	runtime  lambdatypes.Runtime
	handler  string
	versions []string
	next     int
	aliases  map[string]string
	code     []byte
}

// fakeLambda は関数・バージョン・エイリアスを持つLambdaのインメモリ実装。
// ListVersionsByFunctionは3件ずつページングする。
type fakeLambda struct {
	aws.LambdaAPI

	functions map[string]*fakeFunction
	deleted   []string
}

func newFakeLambda() *fakeLambda {
	return &fakeLambda{functions: map[string]*fakeFunction{}}
}

// seed は公開済みバージョン1..nとliveエイリアスを持つ関数を登録する
func (f *fakeLambda) seed(name string, n int, live string) {
	fn := &fakeFunction{aliases: map[string]string{}, next: n + 1}
	for i := 1; i <= n; i++ {
		fn.versions = append(fn.versions, strconv.Itoa(i))
	}
	if live != "" {
		fn.aliases[LiveAlias] = live
	}
	f.functions[name] = fn
}

func (f *fakeLambda) get(name string) (*fakeFunction, error) {
	fn, ok := f.functions[name]
	if !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: awssdk.String("Function not found: " + name)}
	}
	return fn, nil
}

func functionArn(name string) string {
	return "arn:aws:lambda:us-east-1:123456789012:function:" + name
}

func (f *fakeLambda) GetFunction(_ context.Context, in *lambda.GetFunctionInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	if _, err := f.get(name); err != nil {
		return nil, err
	}
	return &lambda.GetFunctionOutput{Configuration: &lambdatypes.FunctionConfiguration{
		FunctionName:     awssdk.String(name),
		FunctionArn:      awssdk.String(functionArn(name)),
		State:            lambdatypes.StateActive,
		LastUpdateStatus: lambdatypes.LastUpdateStatusSuccessful,
	}}, nil
}

func (f *fakeLambda) publish(fn *fakeFunction) string {
	version := strconv.Itoa(fn.next)
	fn.next++
	fn.versions = append(fn.versions, version)
	return version
}

func (f *fakeLambda) CreateFunction(_ context.Context, in *lambda.CreateFunctionInput, _ ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	fn := &fakeFunction{
		runtime: in.Runtime,
		handler: awssdk.ToString(in.Handler),
		aliases: map[string]string{},
		next:    1,
		code:    in.Code.ZipFile,
	}
	f.functions[name] = fn
	version := f.publish(fn)
	return &lambda.CreateFunctionOutput{FunctionArn: awssdk.String(functionArn(name)), Version: awssdk.String(version)}, nil
}

func (f *fakeLambda) UpdateFunctionConfiguration(_ context.Context, in *lambda.UpdateFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	fn, err := f.get(awssdk.ToString(in.FunctionName))
	if err != nil {
		return nil, err
	}
	fn.runtime = in.Runtime
	fn.handler = awssdk.ToString(in.Handler)
	return &lambda.UpdateFunctionConfigurationOutput{}, nil
}

func (f *fakeLambda) UpdateFunctionCode(_ context.Context, in *lambda.UpdateFunctionCodeInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	fn, err := f.get(name)
	if err != nil {
		return nil, err
	}
	fn.code = in.ZipFile
	version := f.publish(fn)
	return &lambda.UpdateFunctionCodeOutput{FunctionArn: awssdk.String(functionArn(name)), Version: awssdk.String(version)}, nil
}

func (f *fakeLambda) CreateAlias(_ context.Context, in *lambda.CreateAliasInput, _ ...func(*lambda.Options)) (*lambda.CreateAliasOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	fn, err := f.get(name)
	if err != nil {
		return nil, err
	}
	alias := awssdk.ToString(in.Name)
	if _, ok := fn.aliases[alias]; ok {
		return nil, &lambdatypes.ResourceConflictException{Message: awssdk.String("Alias already exists")}
	}
	fn.aliases[alias] = awssdk.ToString(in.FunctionVersion)
	return &lambda.CreateAliasOutput{AliasArn: awssdk.String(functionArn(name) + ":" + alias)}, nil
}

func (f *fakeLambda) UpdateAlias(_ context.Context, in *lambda.UpdateAliasInput, _ ...func(*lambda.Options)) (*lambda.UpdateAliasOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	fn, err := f.get(name)
	if err != nil {
		return nil, err
	}
	alias := awssdk.ToString(in.Name)
	fn.aliases[alias] = awssdk.ToString(in.FunctionVersion)
	return &lambda.UpdateAliasOutput{AliasArn: awssdk.String(functionArn(name) + ":" + alias)}, nil
}

func (f *fakeLambda) GetAlias(_ context.Context, in *lambda.GetAliasInput, _ ...func(*lambda.Options)) (*lambda.GetAliasOutput, error) {
	fn, err := f.get(awssdk.ToString(in.FunctionName))
	if err != nil {
		return nil, err
	}
	version, ok := fn.aliases[awssdk.ToString(in.Name)]
	if !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: awssdk.String("Alias not found")}
	}
	return &lambda.GetAliasOutput{FunctionVersion: awssdk.String(version)}, nil
}

func (f *fakeLambda) ListVersionsByFunction(_ context.Context, in *lambda.ListVersionsByFunctionInput, _ ...func(*lambda.Options)) (*lambda.ListVersionsByFunctionOutput, error) {
	fn, err := f.get(awssdk.ToString(in.FunctionName))
	if err != nil {
		return nil, err
	}
	all := append([]string{latestVersion}, fn.versions...)

	start := 0
	if in.Marker != nil {
		start, _ = strconv.Atoi(*in.Marker)
	}
	end := min(start+3, len(all))

	out := &lambda.ListVersionsByFunctionOutput{}
	for _, v := range all[start:end] {
		out.Versions = append(out.Versions, lambdatypes.FunctionConfiguration{Version: awssdk.String(v)})
	}
	if end < len(all) {
		out.NextMarker = awssdk.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeLambda) DeleteFunction(_ context.Context, in *lambda.DeleteFunctionInput, _ ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error) {
	name := awssdk.ToString(in.FunctionName)
	fn, err := f.get(name)
	if err != nil {
		return nil, err
	}
	qualifier := awssdk.ToString(in.Qualifier)
	for i, v := range fn.versions {
		if v == qualifier {
			fn.versions = append(fn.versions[:i], fn.versions[i+1:]...)
			f.deleted = append(f.deleted, fmt.Sprintf("%s:%s", name, v))
			return &lambda.DeleteFunctionOutput{}, nil
		}
	}
	return nil, &lambdatypes.ResourceNotFoundException{Message: awssdk.String("version not found")}
}

type fakeSTS struct {
	aws.STSAPI

	err error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{
		Account: awssdk.String("123456789012"),
		Arn:     awssdk.String("arn:aws:iam::123456789012:user/dev"),
	}, nil
}

var errAccessDenied = &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "The security token included in the request is invalid"}
