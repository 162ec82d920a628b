package adapters

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

	"github.com/ZanzyTHEbar/errbuilder-go"

	"orgtasks/internal/ports"
	"orgtasks/internal/types"
)

const defaultPlatformTimeout = 60 * time.Second

type RestRecordConfig struct {
	InstanceURL string
	AccessToken string
	APIVersion  string
	TimeoutSec  int
}

// RestRecordAdapter speaks the platform's versioned JSON REST dialect.
// Rejected requests surface as *types.PlatformError carrying the
// platform's error list.
type RestRecordAdapter struct {
	instanceURL string
	apiVersion  string
	accessToken string
	client      *http.Client
}

func NewRestRecordAdapter(cfg RestRecordConfig) RestRecordAdapter {
	timeout := defaultPlatformTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	return RestRecordAdapter{
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
		apiVersion:  cfg.APIVersion,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// dataURL joins a relative endpoint onto the versioned REST root. An
// empty endpoint addresses the root itself.
func (a RestRecordAdapter) dataURL(endpoint string) string {
	return fmt.Sprintf("%s/services/data/v%s/%s", a.instanceURL, a.apiVersion, strings.TrimLeft(endpoint, "/"))
}

func (a RestRecordAdapter) Describe(ctx context.Context, object string) ([]types.FieldMetadata, error) {
	var payload struct {
		Fields []types.FieldMetadata `json:"fields"`
	}
	if err := a.do(ctx, http.MethodGet, a.dataURL(fmt.Sprintf("sobjects/%s/describe", object)), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Fields, nil
}

func (a RestRecordAdapter) Query(ctx context.Context, soql string) ([]types.Record, error) {
	next := a.dataURL("query?q=" + url.QueryEscape(soql))
	var rows []types.Record
	for next != "" {
		var payload struct {
			Done           bool           `json:"done"`
			NextRecordsURL string         `json:"nextRecordsUrl"`
			Records        []types.Record `json:"records"`
		}
		if err := a.do(ctx, http.MethodGet, next, nil, &payload); err != nil {
			return nil, err
		}
		for _, row := range payload.Records {
			delete(row, "attributes")
			rows = append(rows, row)
		}
		if payload.Done || payload.NextRecordsURL == "" {
			break
		}
		// nextRecordsUrl is an instance-absolute path.
		next = a.instanceURL + payload.NextRecordsURL
	}
	return rows, nil
}

func (a RestRecordAdapter) Create(ctx context.Context, object string, fields map[string]any) (types.SaveResult, error) {
	var result types.SaveResult
	if err := a.do(ctx, http.MethodPost, a.dataURL("sobjects/"+object), fields, &result); err != nil {
		return types.SaveResult{}, err
	}
	return result, nil
}

func (a RestRecordAdapter) Delete(ctx context.Context, object string, id string) error {
	return a.do(ctx, http.MethodDelete, a.dataURL(fmt.Sprintf("sobjects/%s/%s", object, id)), nil, nil)
}

func (a RestRecordAdapter) Restful(ctx context.Context, endpoint string, method string, body any) (map[string]any, error) {
	var response map[string]any
	if err := a.do(ctx, method, a.dataURL(endpoint), body, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (a RestRecordAdapter) do(ctx context.Context, method string, requestURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode request body").
				WithCause(err)
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build platform request").
			WithCause(err)
	}
	request.Header.Set("Authorization", "Bearer "+a.accessToken)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := a.client.Do(request)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("platform request failed").
			WithCause(err)
	}
	defer func() { _ = response.Body.Close() }()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read platform response").
			WithCause(err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return platformError(response.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode platform response").
			WithCause(err)
	}
	return nil
}

// platformError decodes the platform's error-list body. Bodies that are
// not the usual JSON array still surface verbatim as a single message.
func platformError(status int, body []byte) error {
	var messages types.PlatformMessages
	if err := json.Unmarshal(body, &messages); err != nil || len(messages) == 0 {
		messages = types.PlatformMessages{{Message: strings.TrimSpace(string(body))}}
	}
	return &types.PlatformError{StatusCode: status, Errors: messages}
}

var _ ports.RecordClientPort = RestRecordAdapter{}
