package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dust-keeper/internal/config"
)

/**
 * Client 命令行到常驻服务的HTTP-RPC客户端
 * @description
 * - CLI commands prefer talking to a running server so state (the live
 *   VPN session) is observed where it actually lives; when no server is
 *   reachable they fall back to acting locally
 */
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: "http://" + config.Config.Server.Address,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

/**
 * Available reports whether a server is running and answering
 * @returns {bool} true when the health endpoint responds
 * @description
 * - Uses a short dedicated timeout: a CLI fallback decision should never
 *   hang for the full RPC timeout
 */
func (c *Client) Available() bool {
	probe := &http.Client{Timeout: 2 * time.Second}
	resp, err := probe.Get(c.baseURL + "/healthz")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Get 发送GET请求并反序列化响应
func (c *Client) Get(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

// Post 发送JSON体的POST请求并反序列化响应
func (c *Client) Post(path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	resp, err := c.client.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

// Put 发送JSON体的PUT请求并反序列化响应
func (c *Client) Put(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

// decodeResponse 错误状态码时尝试取响应体里的error字段作为消息
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid server response: %w", err)
	}
	return nil
}
