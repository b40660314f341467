package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpressionKind はスケジュール式の種類
type ExpressionKind int

const (
	KindCron ExpressionKind = iota + 1
	KindRate
)

// Expression は cron(...) / rate(...) を解析した結果
type Expression struct {
	Kind  ExpressionKind
	Cron  string // KindCron: 空白区切りのフィールド（5または6個）
	Value int    // KindRate: 間隔の値
	Unit  string // KindRate: minute(s) / hour(s) / day(s)
}

// ParseError はスケジュール式の書式エラー
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("スケジュール式 %q が不正です: %s", e.Input, e.Reason)
}

// ErrPreviewUnsupported は次回実行時刻を算出できない式
var ErrPreviewUnsupported = errors.New("この式の次回実行時刻は算出できません")

var cronFieldPattern = regexp.MustCompile(`^[0-9A-Za-z*?,/#\-]+$`)

var rateUnits = map[string]time.Duration{
	"minute":  time.Minute,
	"minutes": time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
}

// ParseExpression はスケジュール式を解析する
func ParseExpression(s string) (Expression, error) {
	trimmed := strings.TrimSpace(s)

	inner, ok := unwrap(trimmed, "cron")
	if ok {
		return parseCron(s, inner)
	}
	inner, ok = unwrap(trimmed, "rate")
	if ok {
		return parseRate(s, inner)
	}
	return Expression{}, &ParseError{Input: s, Reason: "cron(...) または rate(...) の形式で指定してください"}
}

// NewCron はフィールドからcron式を組み立てる
func NewCron(fields ...string) (Expression, error) {
	return ParseExpression("cron(" + strings.Join(fields, " ") + ")")
}

// NewRate は値と単位からrate式を組み立てる
func NewRate(value, unit string) (Expression, error) {
	return ParseExpression("rate(" + value + " " + unit + ")")
}

func unwrap(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(prefix)+1 : len(s)-1], true
}

func parseCron(input, inner string) (Expression, error) {
	fields := strings.Fields(inner)
	if len(fields) != 5 && len(fields) != 6 {
		return Expression{}, &ParseError{Input: input, Reason: fmt.Sprintf("cronのフィールド数は5または6です（%d個）", len(fields))}
	}
	for _, f := range fields {
		if !cronFieldPattern.MatchString(f) {
			return Expression{}, &ParseError{Input: input, Reason: fmt.Sprintf("cronのフィールド %q に使用できない文字があります", f)}
		}
	}
	return Expression{Kind: KindCron, Cron: strings.Join(fields, " ")}, nil
}

func parseRate(input, inner string) (Expression, error) {
	fields := strings.Fields(inner)
	if len(fields) != 2 {
		return Expression{}, &ParseError{Input: input, Reason: "rateは「値 単位」の形式です（例: rate(5 minutes)）"}
	}
	value, err := strconv.Atoi(fields[0])
	if err != nil || value <= 0 {
		return Expression{}, &ParseError{Input: input, Reason: fmt.Sprintf("rateの値 %q は正の整数で指定してください", fields[0])}
	}
	unit := strings.ToLower(fields[1])
	if _, ok := rateUnits[unit]; !ok {
		return Expression{}, &ParseError{Input: input, Reason: fmt.Sprintf("rateの単位 %q は minute(s) / hour(s) / day(s) のいずれかです", fields[1])}
	}
	plural := strings.HasSuffix(unit, "s")
	if value == 1 && plural {
		return Expression{}, &ParseError{Input: input, Reason: "値が1の場合は単数形の単位を指定してください"}
	}
	if value > 1 && !plural {
		return Expression{}, &ParseError{Input: input, Reason: "値が2以上の場合は複数形の単位を指定してください"}
	}
	return Expression{Kind: KindRate, Value: value, Unit: unit}, nil
}

// String はAWSに渡す形式に戻す
func (e Expression) String() string {
	switch e.Kind {
	case KindCron:
		return "cron(" + e.Cron + ")"
	case KindRate:
		return "rate(" + e.RateText() + ")"
	}
	return ""
}

// RateText はrate(...)の中身を返す（例: "5 minutes"）
func (e Expression) RateText() string {
	if e.Kind != KindRate {
		return ""
	}
	return fmt.Sprintf("%d %s", e.Value, e.Unit)
}

// Interval はrate式の間隔を返す
func (e Expression) Interval() time.Duration {
	if e.Kind != KindRate {
		return 0
	}
	return time.Duration(e.Value) * rateUnits[e.Unit]
}

var previewParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var (
	digits      = regexp.MustCompile(`\d+`)
	awsOnlyCron = regexp.MustCompile(`(?:^|[,\d])L|\dW|#`)
)

// Schedule は次回実行時刻の算出用スケジュールを返す。
// AWSのcronは曜日が1-7（1=日曜）なので0-6にずらして解釈する。
// L / W / # や年の指定を含む式は ErrPreviewUnsupported。
func (e Expression) Schedule() (cron.Schedule, error) {
	switch e.Kind {
	case KindRate:
		return cron.Every(e.Interval()), nil
	case KindCron:
		fields := strings.Fields(e.Cron)
		if len(fields) == 6 && fields[5] != "*" {
			return nil, ErrPreviewUnsupported
		}
		fields = fields[:5]
		for _, f := range fields {
			if awsOnlyCron.MatchString(f) {
				return nil, ErrPreviewUnsupported
			}
		}
		fields[4] = shiftDayOfWeek(fields[4])
		sched, err := previewParser.Parse(strings.Join(fields, " "))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPreviewUnsupported, err)
		}
		return sched, nil
	}
	return nil, ErrPreviewUnsupported
}

// NextRun はafter以降の次回実行時刻（UTC）を返す
func (e Expression) NextRun(after time.Time) (time.Time, error) {
	sched, err := e.Schedule()
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after.UTC()), nil
}

// shiftDayOfWeek は曜日の数値を1-7から0-6に変換する（ステップ値はそのまま）
func shiftDayOfWeek(field string) string {
	parts := strings.Split(field, ",")
	for i, part := range parts {
		rng, step, hasStep := strings.Cut(part, "/")
		rng = digits.ReplaceAllStringFunc(rng, func(d string) string {
			n, _ := strconv.Atoi(d)
			if n >= 1 && n <= 7 {
				return strconv.Itoa(n - 1)
			}
			return d
		})
		if hasStep {
			rng += "/" + step
		}
		parts[i] = rng
	}
	return strings.Join(parts, ",")
}
