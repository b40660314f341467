package schedule

import "errors"

var (
	// ErrTargetNotFound はLambda関数が名前・namespace付き名のどちらでも見つからない
	ErrTargetNotFound = errors.New("Lambda関数が見つかりません")
	// ErrRuleAlreadyExists はaddで同名（またはnamespace付き名）のルールが存在する
	ErrRuleAlreadyExists = errors.New("ルールは既に存在します")
	// ErrRuleNotFound はupdate / delete / enable / disable / triggerで対象ルールが存在しない
	ErrRuleNotFound = errors.New("ルールが見つかりません")
	// ErrPermissionAlreadyGranted は同じソースパターンの実行権限が設定済み
	ErrPermissionAlreadyGranted = errors.New("実行権限は設定済みです")
)

// IsWarning は処理を中断するがプロセスとしては失敗扱いにしないエラーか判定する
func IsWarning(err error) bool {
	return errors.Is(err, ErrRuleAlreadyExists) || errors.Is(err, ErrRuleNotFound)
}
