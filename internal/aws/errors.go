package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// リモートサービス名
const (
	ServiceEvents    = "events"
	ServiceScheduler = "scheduler"
	ServiceLambda    = "lambda"
	ServiceIAM       = "iam"
	ServiceSTS       = "sts"
)

// RemoteServiceError はリモートAPI呼び出しの失敗を表す。
// Code / Message はサービスが返した値をそのまま保持する。
type RemoteServiceError struct {
	Service string
	Action  string
	Code    string
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s:%s 失敗 (%s): %s", e.Service, e.Action, e.Code, e.Message)
	}
	return fmt.Sprintf("%s:%s 失敗: %v", e.Service, e.Action, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// wrapRemote はSDKエラーをRemoteServiceErrorに変換する（nilはそのまま）
func wrapRemote(service, action string, err error) error {
	if err == nil {
		return nil
	}
	remote := &RemoteServiceError{Service: service, Action: action, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		remote.Code = apiErr.ErrorCode()
		remote.Message = apiErr.ErrorMessage()
	}
	return remote
}

// errorCode はエラーチェーンからサービスのエラーコードを取り出す
func errorCode(err error) string {
	var remote *RemoteServiceError
	if errors.As(err, &remote) && remote.Code != "" {
		return remote.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound はリソース未検出系のエラーか判定する
func IsNotFound(err error) bool {
	switch errorCode(err) {
	case "ResourceNotFoundException", "NoSuchEntity":
		return true
	}
	return false
}

// IsConflict はリソース重複系のエラーか判定する
func IsConflict(err error) bool {
	switch errorCode(err) {
	case "ResourceConflictException", "EntityAlreadyExists":
		return true
	}
	return false
}
