package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SearchInput carries the repository search query.
type SearchInput struct {
	Query string `json:"query" jsonschema:"required,description=Search terms for repositories"`
}

// Repository is one entry in a successful search result.
type Repository struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
}

// SearchResult is the model-facing outcome of a repository search. Network
// trouble is reported in-band: status failure with a non-empty error, same
// shape every time the same cause repeats.
type SearchResult struct {
	Status  string       `json:"status"`
	Results []Repository `json:"results,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type githubSearchResponse struct {
	Items []struct {
		FullName        string `json:"full_name"`
		HTMLURL         string `json:"html_url"`
		Description     string `json:"description"`
		StargazersCount int    `json:"stargazers_count"`
	} `json:"items"`
}

func (tb *Toolbox) searchGithubRepo(ctx context.Context, in SearchInput) (SearchResult, error) {
	if in.Query == "" {
		return SearchResult{}, errors.New("query is required")
	}

	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=5",
		tb.githubBaseURL, url.QueryEscape(in.Query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return SearchResult{Status: "failure", Error: "github search request could not be built"}, nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := tb.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("query", in.Query).Msg("github search unreachable")
		return SearchResult{Status: "failure", Error: "github search unreachable"}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("query", in.Query).Msg("github search returned non-2xx")
		return SearchResult{Status: "failure", Error: fmt.Sprintf("github search returned status %d", resp.StatusCode)}, nil
	}

	var body githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SearchResult{Status: "failure", Error: "github search returned malformed response"}, nil
	}

	results := make([]Repository, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, Repository{
			Name:        item.FullName,
			URL:         item.HTMLURL,
			Description: item.Description,
			Stars:       item.StargazersCount,
		})
	}
	return SearchResult{Status: "success", Results: results}, nil
}
