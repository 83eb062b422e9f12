package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/ports"
	"aptly-ctl/internal/types"
)

// AptlyAPIAdapter talks to the aptly REST API. Transient failures (5xx,
// 429, transport errors) are retried with exponential backoff and jitter.
type AptlyAPIAdapter struct {
	Endpoint   string
	Username   string
	APIKey     string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

const defaultAptlyTimeout = 60 * time.Second
const defaultAptlyRetries = 3
const defaultAptlyRetryDelay = 200 * time.Millisecond
const maxAptlyRetryDelay = 2 * time.Second

func NewAptlyAPIAdapter(endpoint string, username string, apiKey string, timeoutSec int, retries int, retryDelayMs int) AptlyAPIAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultAptlyTimeout
	}
	if retries <= 0 {
		retries = defaultAptlyRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultAptlyRetryDelay
	}
	return AptlyAPIAdapter{
		Endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Username:   username,
		APIKey:     apiKey,
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: retryDelay,
	}
}

func (a AptlyAPIAdapter) ShowRepo(ctx context.Context, name string) (types.RepoInfo, error) {
	body, status, err := a.do(ctx, http.MethodGet, "/api/repos/"+url.PathEscape(name), nil, "")
	if status == http.StatusNotFound {
		return types.RepoInfo{}, repoNotFoundErr(name)
	}
	if err != nil {
		return types.RepoInfo{}, err
	}
	return decodeRepoInfo(body)
}

func (a AptlyAPIAdapter) ListRepos(ctx context.Context) ([]types.RepoInfo, error) {
	body, _, err := a.do(ctx, http.MethodGet, "/api/repos", nil, "")
	if err != nil {
		return nil, err
	}
	var decoded []repoInfoPayload
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, decodeErr("repo list", err)
	}
	repos := make([]types.RepoInfo, 0, len(decoded))
	for _, entry := range decoded {
		repos = append(repos, entry.toRepoInfo())
	}
	return repos, nil
}

func (a AptlyAPIAdapter) CreateRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error) {
	payload, err := json.Marshal(repoInfoPayload{
		Name:                repo.Name,
		Comment:             repo.Comment,
		DefaultDistribution: repo.DefaultDistribution,
		DefaultComponent:    repo.DefaultComponent,
	})
	if err != nil {
		return types.RepoInfo{}, decodeErr("repo payload", err)
	}
	body, status, err := a.do(ctx, http.MethodPost, "/api/repos", payload, "application/json")
	if status == http.StatusBadRequest {
		return types.RepoInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("cannot create local repo %q, it likely exists already", repo.Name)).
			WithCause(err)
	}
	if err != nil {
		return types.RepoInfo{}, err
	}
	return decodeRepoInfo(body)
}

func (a AptlyAPIAdapter) EditRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error) {
	payload, err := json.Marshal(repoInfoPayload{
		Comment:             repo.Comment,
		DefaultDistribution: repo.DefaultDistribution,
		DefaultComponent:    repo.DefaultComponent,
	})
	if err != nil {
		return types.RepoInfo{}, decodeErr("repo payload", err)
	}
	body, status, err := a.do(ctx, http.MethodPut, "/api/repos/"+url.PathEscape(repo.Name), payload, "application/json")
	if status == http.StatusNotFound {
		return types.RepoInfo{}, repoNotFoundErr(repo.Name)
	}
	if err != nil {
		return types.RepoInfo{}, err
	}
	return decodeRepoInfo(body)
}

func (a AptlyAPIAdapter) DeleteRepo(ctx context.Context, name string, force bool) error {
	path := "/api/repos/" + url.PathEscape(name)
	if force {
		path += "?force=1"
	}
	_, status, err := a.do(ctx, http.MethodDelete, path, nil, "")
	switch status {
	case http.StatusNotFound:
		return repoNotFoundErr(name)
	case http.StatusConflict:
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("local repo %q is in use by a publish or snapshot, pass force to delete anyway", name)).
			WithCause(err)
	}
	return err
}

type repoInfoPayload struct {
	Name                string `json:"Name,omitempty"`
	Comment             string `json:"Comment"`
	DefaultDistribution string `json:"DefaultDistribution"`
	DefaultComponent    string `json:"DefaultComponent"`
}

func (p repoInfoPayload) toRepoInfo() types.RepoInfo {
	return types.RepoInfo{
		Name:                p.Name,
		Comment:             p.Comment,
		DefaultDistribution: p.DefaultDistribution,
		DefaultComponent:    p.DefaultComponent,
	}
}

func decodeRepoInfo(body []byte) (types.RepoInfo, error) {
	var decoded repoInfoPayload
	if err := json.Unmarshal(body, &decoded); err != nil {
		return types.RepoInfo{}, decodeErr("repo info", err)
	}
	return decoded.toRepoInfo(), nil
}

func repoNotFoundErr(name string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("local repo %q not found", name))
}

func (a AptlyAPIAdapter) UploadFiles(ctx context.Context, dir string, paths []string) ([]string, error) {
	payload, contentType, err := multipartFiles(paths)
	if err != nil {
		return nil, err
	}
	body, _, err := a.do(ctx, http.MethodPost, "/api/files/"+url.PathEscape(dir), payload, contentType)
	if err != nil {
		return nil, err
	}
	var stored []string
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, decodeErr("upload result", err)
	}
	return stored, nil
}

func (a AptlyAPIAdapter) DeleteUploadDir(ctx context.Context, dir string) error {
	_, _, err := a.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(dir), nil, "")
	return err
}

func (a AptlyAPIAdapter) AddUploadedFile(ctx context.Context, repo string, dir string, file string, forceReplace bool) (types.AddReport, error) {
	path := fmt.Sprintf("/api/repos/%s/file/%s/%s", url.PathEscape(repo), url.PathEscape(dir), url.PathEscape(file))
	if forceReplace {
		path += "?forceReplace=1"
	}
	body, _, err := a.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return types.AddReport{}, err
	}
	var decoded struct {
		FailedFiles []string `json:"FailedFiles"`
		Report      struct {
			Warnings []string `json:"Warnings"`
			Added    []string `json:"Added"`
			Removed  []string `json:"Removed"`
		} `json:"Report"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return types.AddReport{}, decodeErr("add report", err)
	}
	return types.AddReport{
		Added:       decoded.Report.Added,
		Removed:     decoded.Report.Removed,
		Warnings:    decoded.Report.Warnings,
		FailedFiles: decoded.FailedFiles,
	}, nil
}

func (a AptlyAPIAdapter) AddByKey(ctx context.Context, repo string, keys []string) error {
	payload, err := json.Marshal(map[string][]string{"PackageRefs": keys})
	if err != nil {
		return decodeErr("package refs", err)
	}
	_, _, err = a.do(ctx, http.MethodPost, "/api/repos/"+url.PathEscape(repo)+"/packages", payload, "application/json")
	return err
}

func (a AptlyAPIAdapter) RemoveByKey(ctx context.Context, repo string, keys []string) error {
	payload, err := json.Marshal(map[string][]string{"PackageRefs": keys})
	if err != nil {
		return decodeErr("package refs", err)
	}
	_, _, err = a.do(ctx, http.MethodDelete, "/api/repos/"+url.PathEscape(repo)+"/packages", payload, "application/json")
	return err
}

func (a AptlyAPIAdapter) SearchPackages(ctx context.Context, repo string, query string, withDeps bool) ([]string, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if withDeps {
		params.Set("withDeps", "1")
	}
	path := "/api/repos/" + url.PathEscape(repo) + "/packages"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	body, status, err := a.do(ctx, http.MethodGet, path, nil, "")
	if status == http.StatusNotFound {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("local repo %q not found", repo))
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, decodeErr("package list", err)
	}
	return keys, nil
}

func (a AptlyAPIAdapter) ListPublishes(ctx context.Context) ([]types.PublishTarget, error) {
	body, _, err := a.do(ctx, http.MethodGet, "/api/publish", nil, "")
	if err != nil {
		return nil, err
	}
	var decoded []publishPayload
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, decodeErr("publish list", err)
	}
	targets := make([]types.PublishTarget, 0, len(decoded))
	for _, entry := range decoded {
		targets = append(targets, entry.toPublishTarget())
	}
	return targets, nil
}

func (a AptlyAPIAdapter) CreatePublish(ctx context.Context, target types.PublishTarget, sources []types.PublishSource, forceOverwrite bool, signing types.SigningConfig) (types.PublishTarget, error) {
	request := map[string]interface{}{
		"SourceKind":   string(target.SourceKind),
		"Distribution": target.Distribution,
		"Signing":      signingPayload(signing),
	}
	sourceList := make([]map[string]string, 0, len(sources))
	for _, source := range sources {
		entry := map[string]string{"Name": source.Name}
		if source.Component != "" {
			entry["Component"] = source.Component
		}
		sourceList = append(sourceList, entry)
	}
	request["Sources"] = sourceList
	if len(target.Architectures) > 0 {
		request["Architectures"] = target.Architectures
	}
	if target.Label != "" {
		request["Label"] = target.Label
	}
	if target.Origin != "" {
		request["Origin"] = target.Origin
	}
	if forceOverwrite {
		request["ForceOverwrite"] = true
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return types.PublishTarget{}, decodeErr("publish payload", err)
	}
	body, _, err := a.do(ctx, http.MethodPost, "/api/publish/"+publishPrefixParam(target), payload, "application/json")
	if err != nil {
		return types.PublishTarget{}, err
	}
	var decoded publishPayload
	if err := json.Unmarshal(body, &decoded); err != nil {
		return types.PublishTarget{}, decodeErr("publish info", err)
	}
	return decoded.toPublishTarget(), nil
}

func (a AptlyAPIAdapter) DropPublish(ctx context.Context, target types.PublishTarget, force bool) error {
	path := fmt.Sprintf("/api/publish/%s/%s", publishPrefixParam(target), url.PathEscape(target.Distribution))
	if force {
		path += "?force=1"
	}
	_, status, err := a.do(ctx, http.MethodDelete, path, nil, "")
	if status == http.StatusNotFound {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("publish %s not found", target.Key()))
	}
	return err
}

type publishPayload struct {
	Storage       string   `json:"Storage"`
	Prefix        string   `json:"Prefix"`
	Distribution  string   `json:"Distribution"`
	SourceKind    string   `json:"SourceKind"`
	Architectures []string `json:"Architectures"`
	Label         string   `json:"Label"`
	Origin        string   `json:"Origin"`
	Sources       []struct {
		Name string `json:"Name"`
	} `json:"Sources"`
}

func (p publishPayload) toPublishTarget() types.PublishTarget {
	target := types.PublishTarget{
		Storage:       p.Storage,
		Prefix:        p.Prefix,
		Distribution:  p.Distribution,
		SourceKind:    types.SourceKind(p.SourceKind),
		Architectures: p.Architectures,
		Label:         p.Label,
		Origin:        p.Origin,
	}
	for _, source := range p.Sources {
		target.Sources = append(target.Sources, source.Name)
	}
	return target
}

func (a AptlyAPIAdapter) RefreshPublish(ctx context.Context, target types.PublishTarget, signing types.SigningConfig) error {
	payload, err := json.Marshal(map[string]interface{}{
		"Signing": signingPayload(signing),
	})
	if err != nil {
		return decodeErr("signing payload", err)
	}
	path := fmt.Sprintf("/api/publish/%s/%s", publishPrefixParam(target), url.PathEscape(target.Distribution))
	_, _, err = a.do(ctx, http.MethodPut, path, payload, "application/json")
	return err
}

func signingPayload(signing types.SigningConfig) map[string]interface{} {
	return map[string]interface{}{
		"Skip":           signing.Skip,
		"Batch":          signing.Batch,
		"GpgKey":         signing.GpgKey,
		"Keyring":        signing.Keyring,
		"SecretKeyring":  signing.SecretKeyring,
		"Passphrase":     signing.Passphrase,
		"PassphraseFile": signing.PassphraseFile,
	}
}

// publishPrefixParam renders the publish prefix for an API URL using
// aptly's escaping: "_" doubles to "__", "/" becomes "_", and the root
// prefix is spelled ":.". A storage name is joined ahead with ":".
func publishPrefixParam(target types.PublishTarget) string {
	prefix := target.Prefix
	if prefix == "" || prefix == "." {
		prefix = ":."
	} else {
		prefix = strings.ReplaceAll(prefix, "_", "__")
		prefix = strings.ReplaceAll(prefix, "/", "_")
	}
	if target.Storage != "" {
		return target.Storage + ":" + prefix
	}
	return prefix
}

func (a AptlyAPIAdapter) do(ctx context.Context, method string, path string, payload []byte, contentType string) ([]byte, int, error) {
	if a.Endpoint == "" {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("aptly endpoint is empty")
	}
	requestURL := a.Endpoint + path
	var lastErr error
	lastStatus := 0
	for attempt := 0; attempt < a.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, lastStatus, err
		}
		body, status, retry, err := a.doOnce(ctx, method, requestURL, payload, contentType)
		if err == nil {
			return body, status, nil
		}
		lastErr = err
		lastStatus = status
		if !retry || attempt == a.Retries-1 {
			return nil, status, err
		}
		time.Sleep(a.retryDelay(attempt))
	}
	return nil, lastStatus, lastErr
}

func (a AptlyAPIAdapter) doOnce(ctx context.Context, method string, requestURL string, payload []byte, contentType string) ([]byte, int, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, 0, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create aptly request").
			WithCause(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.TrimSpace(a.APIKey) != "" {
		user := strings.TrimSpace(a.Username)
		if user == "" {
			user = "api"
		}
		req.SetBasicAuth(user, a.APIKey)
	}
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("aptly request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, false, nil
	}
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return nil, resp.StatusCode, retry, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("aptly request failed").
		WithCause(fmt.Errorf("status=%d url=%s response=%s", resp.StatusCode, requestURL, strings.TrimSpace(string(body))))
}

func (a AptlyAPIAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxAptlyRetryDelay {
		delay = maxAptlyRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func multipartFiles(paths []string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to open package artifact").
				WithCause(err)
		}
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		file.Close()
		if err != nil {
			return nil, "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to assemble upload payload").
				WithCause(err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to assemble upload payload").
			WithCause(err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func decodeErr(what string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to parse aptly %s", what)).
		WithCause(err)
}

var _ ports.AptlyPort = AptlyAPIAdapter{}
