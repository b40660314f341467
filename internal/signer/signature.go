// Package signer はcronyoが呼び出すURLにHMAC署名を付けてHTTPリクエストを送る
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HeaderName は署名を載せるHTTPヘッダー
const HeaderName = "X-Signature"

var (
	// ErrMalformedHeader はX-Signatureヘッダーの形式が不正
	ErrMalformedHeader = errors.New("X-Signatureヘッダーの形式が不正です")
	// ErrSignatureMismatch は署名が一致しない
	ErrSignatureMismatch = errors.New("署名が一致しません")
	// ErrTimestampExpired はタイムスタンプが許容範囲外
	ErrTimestampExpired = errors.New("署名のタイムスタンプが古すぎます")
)

// Signature はタイムスタンプ付きの署名
type Signature struct {
	Timestamp int64
	Value     string
}

// Sign は "<unix秒>.<message>" をsecretでHMAC-SHA256署名する
func Sign(secret, message string, now time.Time) Signature {
	t := now.Unix()
	return Signature{Timestamp: t, Value: computeHMAC(strconv.FormatInt(t, 10)+"."+message, secret)}
}

// Header はX-Signatureヘッダーの値を返す（t=<t>,signature=<sig>）
func (s Signature) Header() string {
	return fmt.Sprintf("t=%d,signature=%s", s.Timestamp, s.Value)
}

// ParseHeader はX-Signatureヘッダーを解析する
func ParseHeader(header string) (Signature, error) {
	var sig Signature
	var hasT bool
	for _, segment := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			t, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return Signature{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
			}
			sig.Timestamp = t
			hasT = true
		case "signature":
			sig.Value = strings.TrimSpace(value)
		}
	}
	if !hasT || sig.Value == "" {
		return Signature{}, ErrMalformedHeader
	}
	return sig, nil
}

// Verify は受信側でX-Signatureヘッダーを検証する。tolerance が0なら時刻は検証しない。
func Verify(secret, message, header string, tolerance time.Duration, now time.Time) error {
	sig, err := ParseHeader(header)
	if err != nil {
		return err
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(sig.Timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrTimestampExpired
		}
	}
	expected := computeHMAC(strconv.FormatInt(sig.Timestamp, 10)+"."+message, secret)
	if !hmac.Equal([]byte(expected), []byte(sig.Value)) {
		return ErrSignatureMismatch
	}
	return nil
}

// computeHMAC はcontentのHMAC-SHA256を小文字16進で返す
func computeHMAC(content, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
