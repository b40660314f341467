package signer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultUserAgent はheaders未指定時に送るUser-Agent
const DefaultUserAgent = "Cronyo"

// requestTimeout はLambdaのタイムアウト（30秒）より短くしておく
const requestTimeout = 25 * time.Second

// Event はルールのターゲット入力として渡されるペイロード
type Event struct {
	URL     string            `json:"url" validate:"required,url"`
	Headers map[string]string `json:"headers,omitempty"`
	Cookies map[string]string `json:"cookies,omitempty"`
	Params  map[string]any    `json:"params,omitempty"`
	Data    map[string]any    `json:"data,omitempty"`
}

var validate = validator.New()

// Handler は署名付きHTTPリクエストを送るLambdaハンドラー
type Handler struct {
	secret string
	client *resty.Client
	now    func() time.Time
	log    zerolog.Logger
}

// NewHandler はHandlerを作成する。clientがnilならタイムアウト付きのクライアントを使う。
func NewHandler(secret string, client *resty.Client, log zerolog.Logger) (*Handler, error) {
	if secret == "" {
		return nil, errors.New("secret_key が設定されていません")
	}
	if client == nil {
		client = resty.New().SetTimeout(requestTimeout)
	}
	return &Handler{secret: secret, client: client, now: time.Now, log: log}, nil
}

// Get は署名をヘッダーだけに付けてGETする
func (h *Handler) Get(ctx context.Context, ev Event) (int, error) {
	req, _, err := h.prepare(ctx, ev)
	if err != nil {
		return 0, err
	}
	resp, err := req.Get(ev.URL)
	return h.finish(resp, err)
}

// Post は署名をヘッダーとフォームデータの両方に付けてPOSTする
func (h *Handler) Post(ctx context.Context, ev Event) (int, error) {
	req, sig, err := h.prepare(ctx, ev)
	if err != nil {
		return 0, err
	}

	form := stringify(ev.Data)
	form["signature"] = sig.Value
	form["t"] = strconv.FormatInt(sig.Timestamp, 10)

	resp, err := req.SetFormData(form).Post(ev.URL)
	return h.finish(resp, err)
}

// prepare は署名ヘッダー・クエリ・Cookieを設定したリクエストを作る
func (h *Handler) prepare(ctx context.Context, ev Event) (*resty.Request, Signature, error) {
	h.log.Info().Interface("event", ev).Msg("リクエストを受信")
	if err := validate.Struct(ev); err != nil {
		return nil, Signature{}, fmt.Errorf("イベントが不正です: %w", err)
	}

	headers := ev.Headers
	if headers == nil {
		headers = map[string]string{"User-Agent": DefaultUserAgent}
	}

	sig := Sign(h.secret, ev.URL, h.now())
	h.log.Info().Int64("t", sig.Timestamp).Str("signature", sig.Value).Msg("署名しました")

	req := h.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader(HeaderName, sig.Header()).
		SetQueryParams(stringify(ev.Params))
	for name, value := range ev.Cookies {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}
	return req, sig, nil
}

func (h *Handler) finish(resp *resty.Response, err error) (int, error) {
	if err != nil {
		return 0, fmt.Errorf("リクエストに失敗: %w", err)
	}
	h.log.Info().
		Int("status", resp.StatusCode()).
		Str("body", resp.String()).
		Interface("headers", resp.Header()).
		Msg("レスポンス")
	return resp.StatusCode(), nil
}

// stringify はJSON由来の値をフォーム・クエリ用の文字列にする
func stringify(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
