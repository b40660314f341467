package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Roles はIAMロール操作のゲートウェイ
type Roles struct {
	api IAMAPI
}

// NewRoles はIAMロールゲートウェイを作成
func NewRoles(api IAMAPI) *Roles {
	return &Roles{api: api}
}

// GetRoleArn はロールARNを取得する
func (r *Roles) GetRoleArn(ctx context.Context, name string) (string, error) {
	out, err := r.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return "", wrapRemote(ServiceIAM, "GetRole", err)
	}
	return QueryString(out, "Role.Arn")
}

// CreateRole は信頼ポリシー付きでロールを作成する
func (r *Roles) CreateRole(ctx context.Context, name, assumeRolePolicy string) error {
	_, err := r.api.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(assumeRolePolicy),
	})
	return wrapRemote(ServiceIAM, "CreateRole", err)
}

// PutRolePolicy はインラインポリシーを作成または上書きする
func (r *Roles) PutRolePolicy(ctx context.Context, role, policyName, document string) error {
	_, err := r.api.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(role),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(document),
	})
	return wrapRemote(ServiceIAM, "PutRolePolicy", err)
}

// Identity はSTSのゲートウェイ
type Identity struct {
	api STSAPI
}

// NewIdentity はSTSゲートウェイを作成
func NewIdentity(api STSAPI) *Identity {
	return &Identity{api: api}
}

// CallerIdentity は現在の認証情報のアカウントIDとARNを返す
func (i *Identity) CallerIdentity(ctx context.Context) (account, arn string, err error) {
	out, err := i.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", "", wrapRemote(ServiceSTS, "GetCallerIdentity", err)
	}
	return aws.ToString(out.Account), aws.ToString(out.Arn), nil
}
