package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// Functions はLambda操作のゲートウェイ
type Functions struct {
	api LambdaAPI
}

// NewFunctions はLambdaゲートウェイを作成
func NewFunctions(api LambdaAPI) *Functions {
	return &Functions{api: api}
}

// GetFunction は関数名（またはARN）から関数情報を取得する
func (f *Functions) GetFunction(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	out, err := f.api.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, wrapRemote(ServiceLambda, "GetFunction", err)
	}
	return out, nil
}

// PermissionInput は関数リソースポリシーへの追加内容
type PermissionInput struct {
	FunctionName string
	StatementID  string
	Action       string
	Principal    string
	SourceArn    string
}

// AddPermission は関数の呼び出し許可を追加する。
// 同じStatementIDが既に存在する場合はResourceConflictExceptionになる。
func (f *Functions) AddPermission(ctx context.Context, in PermissionInput) error {
	_, err := f.api.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(in.FunctionName),
		StatementId:  aws.String(in.StatementID),
		Action:       aws.String(in.Action),
		Principal:    aws.String(in.Principal),
		SourceArn:    aws.String(in.SourceArn),
	})
	return wrapRemote(ServiceLambda, "AddPermission", err)
}

// FunctionSpec は関数の作成・更新内容
type FunctionSpec struct {
	Name         string
	Runtime      types.Runtime
	Architecture types.Architecture
	Role         string
	Handler      string
	MemorySize   int32
	Timeout      int32
	Environment  map[string]string
}

// PublishedFunction は公開済みバージョンの情報
type PublishedFunction struct {
	FunctionArn string
	Version     string
}

// CreateFunction は関数を作成してバージョンを公開する
func (f *Functions) CreateFunction(ctx context.Context, spec FunctionSpec, zipFile []byte) (PublishedFunction, error) {
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(spec.Name),
		Runtime:      spec.Runtime,
		Role:         aws.String(spec.Role),
		Handler:      aws.String(spec.Handler),
		MemorySize:   aws.Int32(spec.MemorySize),
		Timeout:      aws.Int32(spec.Timeout),
		Publish:      true,
		Code:         &types.FunctionCode{ZipFile: zipFile},
	}
	if spec.Architecture != "" {
		input.Architectures = []types.Architecture{spec.Architecture}
	}
	if len(spec.Environment) > 0 {
		input.Environment = &types.Environment{Variables: spec.Environment}
	}

	out, err := f.api.CreateFunction(ctx, input)
	if err != nil {
		return PublishedFunction{}, wrapRemote(ServiceLambda, "CreateFunction", err)
	}
	return PublishedFunction{FunctionArn: aws.ToString(out.FunctionArn), Version: aws.ToString(out.Version)}, nil
}

// UpdateFunctionConfiguration は関数の設定を更新する
func (f *Functions) UpdateFunctionConfiguration(ctx context.Context, spec FunctionSpec) error {
	input := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(spec.Name),
		Runtime:      spec.Runtime,
		Role:         aws.String(spec.Role),
		Handler:      aws.String(spec.Handler),
		MemorySize:   aws.Int32(spec.MemorySize),
		Timeout:      aws.Int32(spec.Timeout),
	}
	if len(spec.Environment) > 0 {
		input.Environment = &types.Environment{Variables: spec.Environment}
	}

	_, err := f.api.UpdateFunctionConfiguration(ctx, input)
	return wrapRemote(ServiceLambda, "UpdateFunctionConfiguration", err)
}

// UpdateFunctionCode はコードを差し替えて新しいバージョンを公開する
func (f *Functions) UpdateFunctionCode(ctx context.Context, name string, zipFile []byte) (PublishedFunction, error) {
	out, err := f.api.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		ZipFile:      zipFile,
		Publish:      true,
	})
	if err != nil {
		return PublishedFunction{}, wrapRemote(ServiceLambda, "UpdateFunctionCode", err)
	}
	return PublishedFunction{FunctionArn: aws.ToString(out.FunctionArn), Version: aws.ToString(out.Version)}, nil
}

// WaitUpdated は関数の更新が完了するまで待機する
func (f *Functions) WaitUpdated(ctx context.Context, name string, maxWait time.Duration) error {
	waiter := lambda.NewFunctionUpdatedV2Waiter(f.api)
	err := waiter.Wait(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)}, maxWait)
	return wrapRemote(ServiceLambda, "GetFunction", err)
}

// WaitActive は新規作成した関数がActiveになるまで待機する
func (f *Functions) WaitActive(ctx context.Context, name string, maxWait time.Duration) error {
	waiter := lambda.NewFunctionActiveV2Waiter(f.api)
	err := waiter.Wait(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)}, maxWait)
	return wrapRemote(ServiceLambda, "GetFunction", err)
}

// CreateAlias はエイリアスを作成し、エイリアスARNを返す
func (f *Functions) CreateAlias(ctx context.Context, name, alias, version string) (string, error) {
	out, err := f.api.CreateAlias(ctx, &lambda.CreateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(alias),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return "", wrapRemote(ServiceLambda, "CreateAlias", err)
	}
	return aws.ToString(out.AliasArn), nil
}

// UpdateAlias はエイリアスの向き先バージョンを変更し、エイリアスARNを返す
func (f *Functions) UpdateAlias(ctx context.Context, name, alias, version string) (string, error) {
	out, err := f.api.UpdateAlias(ctx, &lambda.UpdateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(alias),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return "", wrapRemote(ServiceLambda, "UpdateAlias", err)
	}
	return aws.ToString(out.AliasArn), nil
}

// GetAlias はエイリアスが指しているバージョンを返す
func (f *Functions) GetAlias(ctx context.Context, name, alias string) (string, error) {
	out, err := f.api.GetAlias(ctx, &lambda.GetAliasInput{
		FunctionName: aws.String(name),
		Name:         aws.String(alias),
	})
	if err != nil {
		return "", wrapRemote(ServiceLambda, "GetAlias", err)
	}
	return aws.ToString(out.FunctionVersion), nil
}

// ListVersions は関数の全バージョン（$LATEST含む）を全ページ分取得する
func (f *Functions) ListVersions(ctx context.Context, name string) ([]types.FunctionConfiguration, error) {
	var versions []types.FunctionConfiguration

	paginator := lambda.NewListVersionsByFunctionPaginator(f.api, &lambda.ListVersionsByFunctionInput{
		FunctionName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapRemote(ServiceLambda, "ListVersionsByFunction", err)
		}
		versions = append(versions, page.Versions...)
	}
	return versions, nil
}

// DeleteFunctionVersion は指定バージョンのみを削除する
func (f *Functions) DeleteFunctionVersion(ctx context.Context, name, version string) error {
	_, err := f.api.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(name),
		Qualifier:    aws.String(version),
	})
	return wrapRemote(ServiceLambda, "DeleteFunction", err)
}
