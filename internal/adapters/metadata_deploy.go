package adapters

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"orgtasks/internal/ports"
	"orgtasks/internal/types"
)

type RestDeployConfig struct {
	InstanceURL string
	AccessToken string
	APIVersion  string
	TimeoutSec  int
}

// RestDeployAdapter packages a bundle directory into a zip archive and
// submits it to the platform's metadata deployments endpoint.
type RestDeployAdapter struct {
	instanceURL string
	apiVersion  string
	accessToken string
	client      *http.Client
}

func NewRestDeployAdapter(cfg RestDeployConfig) RestDeployAdapter {
	timeout := defaultPlatformTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	return RestDeployAdapter{
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
		apiVersion:  cfg.APIVersion,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

func (a RestDeployAdapter) Deploy(ctx context.Context, bundlePath string) error {
	archive, err := zipDirectory(bundlePath)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"name":    filepath.Base(bundlePath),
		"zipFile": base64.StdEncoding.EncodeToString(archive),
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode deployment request").
			WithCause(err)
	}

	deployURL := fmt.Sprintf("%s/services/data/v%s/metadata/deployments", a.instanceURL, a.apiVersion)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, deployURL, bytes.NewReader(body))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build deployment request").
			WithCause(err)
	}
	request.Header.Set("Authorization", "Bearer "+a.accessToken)
	request.Header.Set("Content-Type", "application/json")

	response, err := a.client.Do(request)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("deployment request failed").
			WithCause(err)
	}
	defer func() { _ = response.Body.Close() }()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read deployment response").
			WithCause(err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return platformError(response.StatusCode, data)
	}

	var result struct {
		Success bool                   `json:"success"`
		Errors  types.PlatformMessages `json:"errors"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode deployment response").
			WithCause(err)
	}
	if !result.Success {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("bundle deployment failed: %s", result.Errors.Join()))
	}
	log.Debug().Str("bundle", bundlePath).Msg("bundle deployed")
	return nil
}

// zipDirectory archives every file under root with forward-slash
// relative names, so the archive layout is stable across platforms.
func zipDirectory(root string) ([]byte, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("bundle directory not found: %s", root)).
			WithCause(err)
	}

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entry, err := writer.Create(filepath.ToSlash(relative))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = entry.Write(data)
		return err
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to archive bundle directory").
			WithCause(err)
	}
	if err := writer.Close(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to finalize bundle archive").
			WithCause(err)
	}
	return buffer.Bytes(), nil
}

var _ ports.MetadataDeployerPort = RestDeployAdapter{}
