package schedule

// TargetID はcronyoがルールに書き込む唯一のターゲットスロット
const TargetID = "1"

// ルールの状態
const (
	StateEnabled  = "ENABLED"
	StateDisabled = "DISABLED"
)

// RuleInput はadd / update / putの入力
type RuleInput struct {
	Expression  string // cron(...) または rate(...)
	Function    string // Lambda関数名（短縮名・namespace付き名・ARNのいずれか）
	Input       any    // ターゲットに渡すペイロード（JSONにシリアライズされる）
	Name        string // ルール名（addでは省略可）
	Description string
}

// ExportRecord はexportの1レコード。フィールド順がそのまま出力順になる。
type ExportRecord struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	State       string        `yaml:"state" json:"state"`
	Cron        string        `yaml:"cron,omitempty" json:"cron,omitempty"`
	Rate        string        `yaml:"rate,omitempty" json:"rate,omitempty"`
	Target      *ExportTarget `yaml:"target,omitempty" json:"target,omitempty"`
}

// ExportTarget はexport時のターゲット表現
type ExportTarget struct {
	Name  string `yaml:"name" json:"name"`
	Input any    `yaml:"input,omitempty" json:"input,omitempty"`
}

// Schedule はls表示用のスケジュール情報
type Schedule struct {
	Name       string // スケジュール名
	Type       string // "rule" or "scheduler"
	Expression string // cron式やrate式
	State      string // "ENABLED" or "DISABLED"
	Target     string // ターゲットの簡潔な表現
	Arn        string // リソースARN
	Next       string // 次回実行予定（UTC、算出できない場合は "-"）
}

// ListOptions はスケジュール一覧取得のオプション
type ListOptions struct {
	Type   string // "all", "rule", "scheduler"
	Prefix string // 名前の前方一致（空なら全件）
	Filter string // ワイルドカードまたは部分一致のフィルター
}

// TriggerOptions はトリガー実行時のオプション
type TriggerOptions struct {
	Timeout int  // 実行待機時間（秒）
	NoWait  bool // 実行を待たずに終了
}
