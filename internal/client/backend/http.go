package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gymrecord/internal/common"
)

// NewRequest builds a request to the REST gateway. body, when non-nil, is
// JSON-encoded. bearer falls back to apiKey when empty.
func NewRequest(ctx context.Context, method, url, apiKey, bearer string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if bearer == "" {
		bearer = apiKey
	}
	req.Header.Set(common.APIKeyHeaderName, apiKey)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req and decodes a 2xx JSON body into dest (nil dest discards it).
// Transport failures wrap ErrUnavailable; non-2xx responses become *APIError.
func Do(c *http.Client, req *http.Request, dest any) error {
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}

	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorBody covers both the auth service ({error, error_description} or
// {code, msg, error_code}) and the data service ({code, message, details}).
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Code             any    `json:"code"`
}

func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Kind: KindForStatus(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = string(bytes.TrimSpace(body))
		return apiErr
	}

	for _, m := range []string{eb.ErrorDescription, eb.Msg, eb.Message, eb.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}

	switch {
	case eb.ErrorCode != "":
		apiErr.Code = eb.ErrorCode
	case eb.Code != nil:
		apiErr.Code = fmt.Sprint(eb.Code)
	default:
		apiErr.Code = eb.Error
	}
	return apiErr
}
