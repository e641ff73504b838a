package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
)

// maxResponseSize 单个响应体上限，历史消息里可能带 data URL 图片
const maxResponseSize = 64 << 20

// ClientConfig 创建 Client 的参数
type ClientConfig struct {
	// BaseURL 后端地址，如 "http://localhost:5000"
	BaseURL string
	// Timeout 单次请求超时，0 表示不设置
	Timeout time.Duration
	// HTTPClient 为空时按 Timeout 新建
	HTTPClient *http.Client
}

// Client 同时实现 AuthAPI 和 MessageAPI
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// 确保 Client 实现了接口
var (
	_ AuthAPI    = (*Client)(nil)
	_ MessageAPI = (*Client)(nil)
)

// NewClient 创建 HTTP 客户端
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DEFAULT_BACKEND_URL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL 返回后端地址，推送通道据此推导 ws 地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken 设置认证 token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// result 所有响应体都带 success/message
type result interface {
	Result() (bool, string)
}

// do 发送 JSON 请求并把响应解到 out
// token 为空时不带认证头；failCode 是 success=false 时使用的错误码
func (c *Client) do(ctx context.Context, method, path, token string, body any, out result, failCode int) error {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeInvalidParam, "请求体编码失败")
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeInvalidParam, "创建请求 %s %s 失败", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(constants.TOKEN_HEADER, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeNetwork, "请求 %s %s 失败", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeNetwork, "读取 %s %s 响应失败", method, path)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errorx.New(errorx.CodeUnauthorized, serverMessage(raw, errorx.ErrUnauthorized.Msg))
	case resp.StatusCode >= http.StatusInternalServerError:
		return errorx.Newf(errorx.CodeNetwork, "%s %s 返回 %d", method, path, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		zap.L().Warn("unexpected response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return errorx.Wrapf(err, errorx.CodeServerBusy, "解析 %s %s 响应失败", method, path)
	}
	if ok, msg := out.Result(); !ok {
		if msg == "" {
			msg = fmt.Sprintf("%s %s 失败", method, path)
		}
		return errorx.New(failCode, msg)
	}
	return nil
}

// serverMessage 尽量取出错误响应里的 message 字段
func serverMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
