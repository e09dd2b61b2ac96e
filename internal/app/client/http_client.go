package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/remote"
)

// IdempotencyHeader - заголовок, в котором передаётся local_id мутации
const IdempotencyHeader = "Idempotency-Key"

// httpStore - remote.Store поверх HTTP API сервера.
// 4xx классифицируются как отказ, сетевые ошибки и 5xx - как недоступность.
type httpStore struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPStore(baseURL string, timeout time.Duration, log *slog.Logger) *httpStore {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpStore{
		client:    client,
		log:       log.With("component", "http_store"),
		baseURL:   baseURL,
		userAgent: "HostDesk-Client/1.0",
	}
}

type fieldsRequest struct {
	Fields remote.Fields `json:"fields"`
}

type queryRequest struct {
	Filter remote.Filter `json:"filter"`
}

type recordResponse struct {
	Record remote.Record `json:"record"`
}

type recordsResponse struct {
	Records []remote.Record `json:"records"`
}

// HealthCheck проверяет доступность сервера
func (h *httpStore) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}
	return nil
}

func (h *httpStore) Create(ctx context.Context, table string, fields remote.Fields) (remote.Record, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, recordsPath(table), fieldsRequest{Fields: fields})
	if err != nil {
		return nil, &remote.TransportError{Op: "create " + table, Err: err}
	}

	var out recordResponse
	if err := h.parseResponse("create "+table, resp, &out); err != nil {
		return nil, err
	}
	return out.Record, nil
}

func (h *httpStore) Update(ctx context.Context, table, id string, fields remote.Fields) (remote.Record, error) {
	resp, err := h.doRequest(ctx, http.MethodPatch, recordsPath(table)+"/"+url.PathEscape(id), fieldsRequest{Fields: fields})
	if err != nil {
		return nil, &remote.TransportError{Op: "update " + table, Err: err}
	}

	var out recordResponse
	if err := h.parseResponse("update "+table, resp, &out); err != nil {
		return nil, err
	}
	return out.Record, nil
}

func (h *httpStore) Delete(ctx context.Context, table, id string) error {
	resp, err := h.doRequest(ctx, http.MethodDelete, recordsPath(table)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return &remote.TransportError{Op: "delete " + table, Err: err}
	}
	return h.parseResponse("delete "+table, resp, nil)
}

func (h *httpStore) Query(ctx context.Context, table string, filter remote.Filter) ([]remote.Record, error) {
	if filter == nil {
		filter = remote.Filter{}
	}
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/tables/"+url.PathEscape(table)+"/query", queryRequest{Filter: filter})
	if err != nil {
		return nil, &remote.TransportError{Op: "query " + table, Err: err}
	}

	var out recordsResponse
	if err := h.parseResponse("query "+table, resp, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func recordsPath(table string) string {
	return "/api/v1/tables/" + url.PathEscape(table) + "/records"
}

func (h *httpStore) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if key, ok := remote.IdempotencyKey(ctx); ok && method == http.MethodPost && strings.HasSuffix(path, "/records") {
		req.Header.Set(IdempotencyHeader, key)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	return h.client.Do(req)
}

func (h *httpStore) parseResponse(op string, resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &remote.TransportError{Op: op, Err: fmt.Errorf("ошибка чтения ответа: %w", err)}
	}

	h.log.Debug("Получен ответ",
		"op", op,
		"status", resp.StatusCode,
	)

	if resp.StatusCode >= 400 {
		reason := errorDetail(body)
		if resp.StatusCode >= 500 {
			return &remote.TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, reason)}
		}
		return &remote.RejectionError{Op: op, Status: resp.StatusCode, Reason: reason}
	}

	if result != nil && len(body) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return &remote.TransportError{Op: op, Err: fmt.Errorf("ошибка парсинга ответа: %w", err)}
		}
	}

	return nil
}

// errorDetail достаёт описание ошибки из ответа huma (application/problem+json)
func errorDetail(body []byte) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Errors []struct {
			Message  string `json:"message"`
			Location string `json:"location"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &problem); err != nil {
		return string(body)
	}

	reason := problem.Detail
	if reason == "" {
		reason = problem.Title
	}
	for _, e := range problem.Errors {
		reason += "; " + e.Location + ": " + e.Message
	}
	return reason
}
