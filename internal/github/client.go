package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	gogithub "github.com/google/go-github/v63/github"
	"github.com/rs/zerolog"
)

// NewClient returns an API client, authenticated when token is set.
func NewClient(token string) *gogithub.Client {
	client := gogithub.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// ParseRepository splits "owner/name".
func ParseRepository(repository string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(repository), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository must look like owner/name, got %q", repository)
	}
	return owner, repo, nil
}

// PRSource reads the changed files of a pull request: the content at the head
// commit and the patch GitHub reports for each file.
type PRSource struct {
	client *gogithub.Client
	owner  string
	repo   string
	number int
	logger zerolog.Logger
}

func NewPRSource(client *gogithub.Client, repository string, number int, logger zerolog.Logger) (*PRSource, error) {
	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive, got %d", number)
	}
	return &PRSource{
		client: client,
		owner:  owner,
		repo:   repo,
		number: number,
		logger: logger,
	}, nil
}

func (s *PRSource) Describe() string {
	return fmt.Sprintf("%s/%s#%d", s.owner, s.repo, s.number)
}

// Changes lists the files of the pull request. Content is fetched only for
// the files fetch wants; a file GitHub will not serve (over 1 MB, missing at
// head) is returned with Unavailable set.
func (s *PRSource) Changes(ctx context.Context, fetch types.FetchFilter) ([]types.FileChange, error) {
	pull, _, err := s.client.PullRequests.Get(ctx, s.owner, s.repo, s.number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s: %w", s.Describe(), err)
	}
	headSHA := pull.GetHead().GetSHA()

	var files []*gogithub.CommitFile
	listFiles := func(page int) (*gogithub.Response, error) {
		listOptions := &gogithub.ListOptions{PerPage: 100, Page: page}
		pageFiles, res, err := s.client.PullRequests.ListFiles(ctx, s.owner, s.repo, s.number, listOptions)
		files = append(files, pageFiles...)
		return res, err
	}
	if err := walkPaginatedApi(listFiles); err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", s.Describe(), err)
	}

	changes := make([]types.FileChange, 0, len(files))
	for _, file := range files {
		path := file.GetFilename()
		if file.GetStatus() == "removed" {
			s.logger.Debug().Str("file", path).Msg("skipping deleted file")
			continue
		}
		if file.GetPatch() == "" {
			// Binary files and very large diffs come without a patch.
			s.logger.Debug().Str("file", path).Msg("skipping file without patch")
			continue
		}

		change := types.FileChange{Path: path, Diff: file.GetPatch()}
		if fetch.Wants(path) {
			content, err := s.fileContent(ctx, path, headSHA)
			switch {
			case ctx.Err() != nil:
				return nil, ctx.Err()
			case err != nil:
				s.logger.Warn().Err(err).Str("file", path).Msg("content unavailable")
				change.Unavailable = err.Error()
			default:
				change.Content = content
			}
		}

		s.logger.Debug().Str("file", path).Str("status", file.GetStatus()).Msg("collected change")
		changes = append(changes, change)
	}

	return changes, nil
}

func (s *PRSource) fileContent(ctx context.Context, path, ref string) (string, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref}
	fileContent, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("failed to get %s at %s: %w", path, ref, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("%s at %s is not a file", path, ref)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return content, nil
}

// CommentPublisher posts reports as pull request comments.
type CommentPublisher struct {
	client *gogithub.Client
	owner  string
	repo   string
	number int
}

func NewCommentPublisher(client *gogithub.Client, repository string, number int) (*CommentPublisher, error) {
	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}
	return &CommentPublisher{client: client, owner: owner, repo: repo, number: number}, nil
}

func (p *CommentPublisher) Publish(ctx context.Context, body string) error {
	comment := &gogithub.IssueComment{Body: &body}
	if _, _, err := p.client.Issues.CreateComment(ctx, p.owner, p.repo, p.number, comment); err != nil {
		return fmt.Errorf("failed to comment on %s/%s#%d: %w", p.owner, p.repo, p.number, err)
	}
	return nil
}

func walkPaginatedApi(apiCall func(int) (*gogithub.Response, error)) error {
	page := 1
	for {
		res, err := apiCall(page)
		if err != nil {
			return err
		}
		if res == nil || res.NextPage == 0 {
			break
		}
		page = res.NextPage
	}
	return nil
}
