/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"social-wallet-client-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 10 << 20

// Client talks to the social wallet REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

func NewClient(cfg models.ApiConfig) (*Client, error) {
	httpClient, err := createCustomHttpClient(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}
	return newClient(cfg, httpClient), nil
}

func newClient(cfg models.ApiConfig, httpClient *http.Client) *Client {
	limit := rate.Limit(cfg.RateLimit)
	burst := cfg.RateBurst
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		timeout:    timeout,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op          string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	fallback    string
}

func (c *Client) jsonCall(op, method, path, token string, payload any, fallback string) (call, error) {
	cl := call{op: op, method: method, path: path, token: token, fallback: fallback}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return cl, fmt.Errorf("%s: encode request: %w", op, err)
		}
		cl.body = bytes.NewReader(data)
		cl.contentType = "application/json"
	}
	return cl, nil
}

// do runs one request and returns the raw 2xx body. Cancellation of ctx is
// returned as ctx.Err() so callers can tell it apart from a NetworkError.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", cl.op, ctxErr)
		}
		return nil, &NetworkError{Op: cl.op, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}

	requestId := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestId)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", cl.op, ctxErr)
		}
		netErr := &NetworkError{Op: cl.op, Err: err, Timeout: isTimeout(reqCtx, err)}
		zap.L().Warn("API request failed",
			zap.String("op", cl.op),
			zap.String("request_id", requestId),
			zap.Bool("timeout", netErr.Timeout),
			zap.Error(err))
		return nil, netErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", cl.op, ctxErr)
		}
		return nil, &NetworkError{Op: cl.op, Err: err, Timeout: isTimeout(reqCtx, err)}
	}

	zap.L().Debug("API request completed",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", requestId),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRequestError(cl.op, resp.StatusCode, body, cl.fallback)
	}
	return body, nil
}

func (c *Client) doJSON(ctx context.Context, cl call, out any, paths ...string) error {
	body, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapObject(body, paths...), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

func isTimeout(reqCtx context.Context, err error) bool {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// multipartBody encodes text fields followed by an optional file part.
func multipartBody(fields [][2]string, fileField string, upload *models.Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if upload != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, upload.FileName))
		contentType := upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(upload.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
