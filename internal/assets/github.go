package assets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"bitstorm/internal/config"
	"bitstorm/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	githubBaseURL = "https://api.github.com"
	mediaListPath = "src/data/media.json"
)

// GitHubStore persists assets as repository contents through the GitHub
// contents API.
type GitHubStore struct {
	token  string
	owner  string
	repo   string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewGitHubStore(cfg *config.Config, logger zerolog.Logger) *GitHubStore {
	return &GitHubStore{
		token: cfg.GitHubToken,
		owner: cfg.GitHubRepoOwner,
		repo:  cfg.GitHubRepoName,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (s *GitHubStore) Available() bool { return s.token != "" }

type contentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type contentsResponse struct {
	Content struct {
		DownloadURL string `json:"download_url"`
		Path        string `json:"path"`
		SHA         string `json:"sha"`
	} `json:"content"`
}

type fileResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// UploadFile commits the asset under public/images/<category>/ with a
// timestamped name and returns its raw download URL.
func (s *GitHubStore) UploadFile(ctx context.Context, f File) (Upload, error) {
	ext := strings.TrimPrefix(path.Ext(f.Name), ".")
	if ext == "" {
		ext = "bin"
	}
	filePath := fmt.Sprintf("public/images/%s/%s_%d.%s", f.Category, f.Category, time.Now().UnixMilli(), ext)

	body := contentsRequest{
		Message: fmt.Sprintf("Add %s media: %s", f.Category, f.Description),
		Content: base64.StdEncoding.EncodeToString(f.Content),
	}

	var result contentsResponse
	if err := s.putContents(ctx, filePath, body, &result); err != nil {
		return Upload{}, err
	}

	s.logger.Info().Str("path", result.Content.Path).Msg("asset uploaded to remote store")
	return Upload{URL: result.Content.DownloadURL, Path: result.Content.Path}, nil
}

// PutMediaList mirrors the media collection as a JSON file, passing the
// current sha when the file already exists.
func (s *GitHubStore) PutMediaList(ctx context.Context, items []domain.MediaItem) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal media list: %w", err)
	}

	body := contentsRequest{
		Message: "Update media list",
		Content: base64.StdEncoding.EncodeToString(raw),
	}
	if existing, err := s.getContents(ctx, mediaListPath); err == nil {
		body.SHA = existing.SHA
	}

	var result contentsResponse
	return s.putContents(ctx, mediaListPath, body, &result)
}

// FetchMediaList returns the mirrored collection, or empty when the file
// does not exist remotely.
func (s *GitHubStore) FetchMediaList(ctx context.Context) ([]domain.MediaItem, error) {
	file, err := s.getContents(ctx, mediaListPath)
	if err != nil {
		return nil, err
	}

	// The contents API wraps base64 lines at 60 chars.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode media list: %w", err)
	}

	var items []domain.MediaItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse media list: %w", err)
	}
	return items, nil
}

func (s *GitHubStore) contentsURL(filePath string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", githubBaseURL, s.owner, s.repo, filePath)
}

func (s *GitHubStore) putContents(ctx context.Context, filePath string, body contentsRequest, out *contentsResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal contents request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.contentsURL(filePath))
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := s.do(ctx, req, resp); err != nil {
		return err
	}
	if resp.StatusCode() != fasthttp.StatusOK && resp.StatusCode() != fasthttp.StatusCreated {
		return fmt.Errorf("github API error: %d", resp.StatusCode())
	}
	return json.Unmarshal(resp.Body(), out)
}

func (s *GitHubStore) getContents(ctx context.Context, filePath string) (*fileResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.contentsURL(filePath))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "token "+s.token)

	if err := s.do(ctx, req, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("github API error: %d", resp.StatusCode())
	}

	var file fileResponse
	if err := json.Unmarshal(resp.Body(), &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *GitHubStore) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.client.DoDeadline(req, resp, deadline)
	}
	return s.client.Do(req, resp)
}
