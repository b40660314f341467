// Package logger はCLIとLambda関数で共通に使うzerologの初期化を提供する
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New はCLI向けのカラー付きコンソールロガーを作成する。
// 出力は "[.] メッセージ key=value" の形式。
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	color := isTerminal(w)
	cw := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !color,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FormatLevel: func(i any) string {
			s, _ := i.(string)
			return levelMarker(s, color)
		},
	}
	return zerolog.New(cw).Level(level)
}

// ANSIカラー
const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorBlue   = 34
)

// levelMarker はレベルに応じた "[.]" / "[x]" を返す。colorがtrueならレベルごとに色を付ける。
func levelMarker(level string, color bool) string {
	marker := "[.]"
	code := colorGreen
	switch level {
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		marker = "[x]"
		code = colorRed
	case zerolog.LevelWarnValue:
		code = colorYellow
	case zerolog.LevelDebugValue, zerolog.LevelTraceValue:
		code = colorBlue
	}
	if !color {
		return marker
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, marker)
}

// NewJSON はLambda関数向けのJSONロガーを作成する
func NewJSON(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel はレベル文字列を解釈する（不明な値はinfo）
func ParseLevel(level string) zerolog.Level {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	lvl, err := zerolog.ParseLevel(trimmed)
	if err != nil || trimmed == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
