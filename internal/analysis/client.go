package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/coptimize/openinventory/internal/config"
	"go.uber.org/zap"
)

type httpClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(cfg.AnalysisBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.AnalysisTimeout},
		log:     log.Named("analysis.client"),
	}
}

type taskResponse struct {
	TaskID string `json:"task_id"`
}

func (c *httpClient) SubmitImages(ctx context.Context, images []Image) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("no images to submit")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, img := range images {
		part, err := writer.CreateFormFile("images", img.Name)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-images/", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var task taskResponse
	if err := c.do(req, &task); err != nil {
		return "", err
	}
	return task.TaskID, nil
}

func (c *httpClient) SubmitText(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"extractedText": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-text/", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var task taskResponse
	if err := c.do(req, &task); err != nil {
		return "", err
	}
	return task.TaskID, nil
}

func (c *httpClient) PollStatus(ctx context.Context, taskID string) (*PollResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/inference-response/"+taskID, nil)
	if err != nil {
		return nil, err
	}

	var result PollResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	switch result.Status {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedStatus, result.Status)
	}
	return &result, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("analysis request failed",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return fmt.Errorf("analysis service %s: http %d", req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
