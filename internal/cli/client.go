package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, клиент не импортирует internal/api) ---

// WorkflowResponse — результат компиляции из API.
type WorkflowResponse struct {
	RunID     string         `json:"run_id"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"created_at"`
	Stats     map[string]int `json:"stats"`
	Roots     []string       `json:"roots"`
	DAX       string         `json:"dax"`
	Catalog   string         `json:"catalog"`
}

// FormatResponse — формат графа из API.
type FormatResponse struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	CanEncode  bool     `json:"can_encode"`
}

// GraphResponse — сохранённый граф из API.
type GraphResponse struct {
	Name      string `json:"name"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Request types ---

// SubmitRequest — запрос на асинхронную генерацию.
type SubmitRequest struct {
	Source       string            `json:"source"`
	WorkflowPath string            `json:"workflow_path"`
	CatalogPath  string            `json:"catalog_path"`
	Name         string            `json:"name,omitempty"`
	Vars         map[string]string `json:"vars,omitempty"`
}

// CompileOpts — параметры компиляции на сервере.
type CompileOpts struct {
	Input string
	Name  string
	Vars  map[string]string
}

func (o CompileOpts) values() url.Values {
	params := url.Values{}
	params.Set("format", "json")
	if o.Input != "" {
		params.Set("input", o.Input)
	}
	if o.Name != "" {
		params.Set("name", o.Name)
	}
	for k, v := range o.Vars {
		params.Add("var", k+"="+v)
	}
	return params
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для daxgen API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Formats возвращает форматы графов сервера.
func (c *Client) Formats() ([]FormatResponse, error) {
	var formats []FormatResponse
	err := c.list("/api/v1/formats", &formats)
	return formats, err
}

// Compile компилирует граф на сервере.
func (c *Client) Compile(graph []byte, opts CompileOpts) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	path := "/api/v1/workflows?" + opts.values().Encode()
	err := c.doData(http.MethodPost, path, bytes.NewReader(graph), "application/octet-stream", &wf)
	return &wf, err
}

// CompileStored компилирует сохранённый граф.
func (c *Client) CompileStored(name string, opts CompileOpts) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	path := "/api/v1/graphs/" + url.PathEscape(name) + "/workflow?" + opts.values().Encode()
	err := c.doData(http.MethodGet, path, nil, "", &wf)
	return &wf, err
}

// PushGraph сохраняет граф на сервере.
func (c *Client) PushGraph(name, input string, graph []byte) (*GraphResponse, error) {
	var g GraphResponse
	path := "/api/v1/graphs/" + url.PathEscape(name) + "?" + url.Values{"input": {input}}.Encode()
	err := c.doData(http.MethodPut, path, bytes.NewReader(graph), "application/octet-stream", &g)
	return &g, err
}

// ListGraphs возвращает сохранённые графы.
func (c *Client) ListGraphs() ([]GraphResponse, error) {
	var graphs []GraphResponse
	err := c.list("/api/v1/graphs", &graphs)
	return graphs, err
}

// DeleteGraph удаляет сохранённый граф.
func (c *Client) DeleteGraph(name string) error {
	return c.doData(http.MethodDelete, "/api/v1/graphs/"+url.PathEscape(name), nil, "", nil)
}

// Submit ставит запрос на генерацию в очередь сервера.
func (c *Client) Submit(req SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp struct {
		MessageID string `json:"message_id"`
	}
	err = c.doData(http.MethodPost, "/api/v1/requests", bytes.NewReader(body), "application/json", &resp)
	return resp.MessageID, err
}

// --- HTTP helpers ---

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body io.Reader, contentType string, result any) error {
	resp, err := c.do(method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
