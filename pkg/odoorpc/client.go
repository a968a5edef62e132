package odoorpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// ErrNotAuthenticated 在未调用 Authenticate 或认证失败后继续调用对象接口时返回
var ErrNotAuthenticated = errors.New("odoorpc: not authenticated")

// RPCError Odoo JSON-RPC 错误响应
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Debug   string `json:"debug"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error (code %d): %s", e.Code, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error (code %d): %s", e.Code, e.Message)
}

// Client Odoo JSON-RPC 客户端
// 每次部署创建一个新客户端，同一客户端同一时刻只有一个调用在途
type Client struct {
	baseUrl    *url.URL
	httpClient *http.Client
	Database   string
	Username   string
	password   string // API Key 或密码，仅保存在客户端生命周期内
	uid        int64  // Authenticate 成功后的用户 ID
	reqId      uint64
}

func NewClient(apiURL, database, username, password string) (*Client, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		Database: database,
		Username: username,
		password: password,
	}, nil
}

type rpcRequest struct {
	Jsonrpc string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
	Id      uint64                 `json:"id"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// call 执行一次 JSON-RPC 调用（service=common/object）
func (c *Client) call(ctx context.Context, service, method string, args []interface{}, result interface{}) error {
	payload := rpcRequest{
		Jsonrpc: "2.0",
		Method:  "call",
		Params: map[string]interface{}{
			"service": service,
			"method":  method,
			"args":    args,
		},
		Id: atomic.AddUint64(&c.reqId, 1),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := c.baseUrl.JoinPath("/jsonrpc").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("odoo http error (status %d): %s", resp.StatusCode, string(raw))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal rpc result: %w", err)
		}
	}
	return nil
}

// Authenticate 调用 common.authenticate 获取 uid
// Odoo 对认证失败返回 false 而不是错误
func (c *Client) Authenticate(ctx context.Context) error {
	var result interface{}
	err := c.call(ctx, "common", "authenticate",
		[]interface{}{c.Database, c.Username, c.password, map[string]interface{}{}}, &result)
	if err != nil {
		return err
	}
	uid, ok := result.(float64)
	if !ok || uid <= 0 {
		return ErrNotAuthenticated
	}
	c.uid = int64(uid)
	return nil
}

// Uid 返回认证后的用户 ID，未认证时为 0
func (c *Client) Uid() int64 {
	return c.uid
}

// Version 查询服务器版本信息（无需认证，可用于健康检查）
func (c *Client) Version(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.call(ctx, "common", "version", []interface{}{}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteKw 调用 object.execute_kw
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if c.uid == 0 {
		return nil, ErrNotAuthenticated
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	var result interface{}
	err := c.call(ctx, "object", "execute_kw",
		[]interface{}{c.Database, c.uid, c.password, model, method, args, kwargs}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SearchRead 查询记录
func (c *Client) SearchRead(ctx context.Context, model string, domain []interface{}, fields []string, limit int) ([]map[string]interface{}, error) {
	kwargs := map[string]interface{}{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	result, err := c.ExecuteKw(ctx, model, "search_read", []interface{}{domain}, kwargs)
	if err != nil {
		return nil, err
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected search_read result type %T", result)
	}
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// SearchCount 统计满足条件的记录数
func (c *Client) SearchCount(ctx context.Context, model string, domain []interface{}) (int64, error) {
	result, err := c.ExecuteKw(ctx, model, "search_count", []interface{}{domain}, nil)
	if err != nil {
		return 0, err
	}
	count, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected search_count result type %T", result)
	}
	return int64(count), nil
}

// Create 创建记录，返回新记录 ID
func (c *Client) Create(ctx context.Context, model string, values map[string]interface{}) (int64, error) {
	result, err := c.ExecuteKw(ctx, model, "create", []interface{}{values}, nil)
	if err != nil {
		return 0, err
	}
	id, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected create result type %T", result)
	}
	return int64(id), nil
}

// Write 更新记录
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]interface{}) error {
	idList := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id)
	}
	_, err := c.ExecuteKw(ctx, model, "write", []interface{}{idList, values}, nil)
	return err
}

// FindModule 按技术名称查询模块（ir.module.module）
// 未找到时返回 nil, nil
func (c *Client) FindModule(ctx context.Context, technicalName string) (map[string]interface{}, error) {
	records, err := c.SearchRead(ctx, "ir.module.module",
		[]interface{}{[]interface{}{"name", "=", technicalName}},
		[]string{"id", "name", "shortdesc", "state"}, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// InstallModule 安装模块（button_immediate_install），调用方需要重新读取状态确认
func (c *Client) InstallModule(ctx context.Context, moduleID int64) error {
	_, err := c.ExecuteKw(ctx, "ir.module.module", "button_immediate_install",
		[]interface{}{[]interface{}{moduleID}}, nil)
	return err
}

// FindModelField 按模型+字段名查询自定义字段（ir.model.fields）
// 未找到时返回 nil, nil
func (c *Client) FindModelField(ctx context.Context, model, fieldName string) (map[string]interface{}, error) {
	records, err := c.SearchRead(ctx, "ir.model.fields",
		[]interface{}{
			[]interface{}{"model", "=", model},
			[]interface{}{"name", "=", fieldName},
		},
		[]string{"id", "name", "model", "ttype", "field_description"}, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// CreateModelField 创建自定义字段
func (c *Client) CreateModelField(ctx context.Context, values map[string]interface{}) (int64, error) {
	return c.Create(ctx, "ir.model.fields", values)
}

// CreateView 创建视图记录（ir.ui.view）
func (c *Client) CreateView(ctx context.Context, values map[string]interface{}) (int64, error) {
	return c.Create(ctx, "ir.ui.view", values)
}

// SetConfigParameter 写入系统参数（ir.config_parameter）
func (c *Client) SetConfigParameter(ctx context.Context, key string, value interface{}) error {
	_, err := c.ExecuteKw(ctx, "ir.config_parameter", "set_param", []interface{}{key, value}, nil)
	return err
}

// BackupDatabase 通过数据库管理接口导出备份，写入 w，返回备份大小
// 需要 Odoo master password
func (c *Client) BackupDatabase(ctx context.Context, masterPassword string, w io.Writer) (int64, error) {
	form := url.Values{}
	form.Set("master_pwd", masterPassword)
	form.Set("name", c.Database)
	form.Set("backup_format", "zip")

	endpoint := c.baseUrl.JoinPath("/web/database/backup").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("backup failed (status %d): %s", resp.StatusCode, string(raw))
	}

	return io.Copy(w, resp.Body)
}

// RestoreDatabase 通过数据库管理接口恢复备份
// 恢复会覆盖同名数据库
func (c *Client) RestoreDatabase(ctx context.Context, masterPassword string, backup io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("master_pwd", masterPassword); err != nil {
		return err
	}
	if err := writer.WriteField("name", c.Database); err != nil {
		return err
	}
	if err := writer.WriteField("copy", "false"); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("backup_file", c.Database+".zip")
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, backup); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	endpoint := c.baseUrl.JoinPath("/web/database/restore").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("restore failed (status %d): %s", resp.StatusCode, string(raw))
	}
	return nil
}

// Close 释放连接资源，清除认证状态
func (c *Client) Close() {
	c.uid = 0
	c.password = ""
	c.httpClient.CloseIdleConnections()
}
