package deploy

import (
	"context"
	"fmt"

	"cronyo/internal/aws"
)

const rolePolicy = `{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Action": ["lambda:InvokeFunction"],
            "Resource": ["*"]
        },
        {
            "Effect": "Allow",
            "Action": [
                "logs:CreateLogGroup",
                "logs:CreateLogStream",
                "logs:PutLogEvents"
            ],
            "Resource": "*"
        }
    ]
}`

const assumeRolePolicy = `{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Action": "sts:AssumeRole",
            "Effect": "Allow",
            "Principal": {"Service": "lambda.amazonaws.com"}
        }
    ]
}`

// EnsureRole はnamespace名のIAMロールを用意し、インラインポリシーを最新化してARNを返す
func (d *Deployer) EnsureRole(ctx context.Context) (string, error) {
	name := d.cfg.Namespace

	d.log.Info().Msgf("IAMロール %s を検索中", name)
	arn, err := d.roles.GetRoleArn(ctx, name)
	created := false
	if err != nil {
		if !aws.IsNotFound(err) {
			return "", fmt.Errorf("IAMロール %s の取得に失敗: %w", name, err)
		}
		d.log.Info().Msg("ロールが見つからないため作成します")
		if err := d.roles.CreateRole(ctx, name, assumeRolePolicy); err != nil {
			return "", fmt.Errorf("IAMロール %s の作成に失敗: %w", name, err)
		}
		created = true
		if arn, err = d.roles.GetRoleArn(ctx, name); err != nil {
			return "", fmt.Errorf("IAMロール %s の取得に失敗: %w", name, err)
		}
	}
	d.log.Debug().Str("role_arn", arn).Msg("IAMロール")

	d.log.Info().Msg("ロールポリシーを更新中")
	if err := d.roles.PutRolePolicy(ctx, name, name, rolePolicy); err != nil {
		return "", fmt.Errorf("ロールポリシーの更新に失敗: %w", err)
	}

	if created {
		d.log.Info().Msg("ロールポリシーの反映を待機中")
		if err := d.sleep(ctx, rolePropagationDelay); err != nil {
			return "", err
		}
	}
	return arn, nil
}
