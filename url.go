package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	protoGithub = "github://"
	protoGitlab = "gitlab://"
	protoHTTPS  = "https://"

	githubHost = "github.com"
	gitlabHost = "gitlab.com"
)

var (
	readmeNames    = []string{"README.md", "README", "Readme.md", "Readme", "readme.md", "readme"}
	readmeBranches = []string{"main", "master"}

	// Endpoints, replaced in tests.
	githubAPI = "https://api.github.com"
	githubRaw = "https://raw.githubusercontent.com"
	gitlabAPI = "https://gitlab.com/api/v4"
	gitlabRaw = "https://gitlab.com"
)

// readmeURL resolves a GitHub or GitLab repository, given as
// github://owner/repo, gitlab://owner/repo or a repository URL with or
// without its protocol, to a source for its README. Anything else yields a
// nil source and no error.
func readmeURL(ctx context.Context, path string) (*source, error) {
	var host, repoPath string
	switch {
	case strings.HasPrefix(path, protoGithub):
		host, repoPath = githubHost, strings.TrimPrefix(path, protoGithub)
	case strings.HasPrefix(path, protoGitlab):
		host, repoPath = gitlabHost, strings.TrimPrefix(path, protoGitlab)
	default:
		if !strings.Contains(path, "://") {
			path = protoHTTPS + path
		}
		u, err := url.Parse(path)
		if err != nil {
			return nil, nil
		}
		host, repoPath = strings.ToLower(u.Hostname()), u.Path
	}

	parts := strings.Split(strings.Trim(repoPath, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		// custom hostnames and deeper paths are not supported
		return nil, nil
	}
	owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")

	switch host {
	case githubHost:
		return findGitHubREADME(ctx, owner, repo)
	case gitlabHost:
		return findGitLabREADME(ctx, owner, repo)
	}
	return nil, nil
}

// guessREADME tries the usual README names on the usual branches below
// base/owner/repo/infix.
func guessREADME(ctx context.Context, base, owner, repo, infix string) *source {
	for _, branch := range readmeBranches {
		for _, name := range readmeNames {
			u := fmt.Sprintf("%s/%s/%s%s/%s/%s", base, owner, repo, infix, branch, name)
			if src, err := fetch(ctx, u); err == nil {
				return src
			}
		}
	}
	return nil
}

// fetch GETs u. The caller closes the returned source.
func fetch(ctx context.Context, u string) (*source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get url: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP status %d for %s", resp.StatusCode, u)
	}
	return &source{resp.Body, u}, nil
}

// getJSON decodes the JSON document at u into v.
func getJSON(ctx context.Context, u string, v any) error {
	src, err := fetch(ctx, u)
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck
	if err := json.NewDecoder(src.reader).Decode(v); err != nil {
		return fmt.Errorf("unable to parse json: %w", err)
	}
	return nil
}

func isURL(path string) bool {
	_, err := url.ParseRequestURI(path)
	return err == nil && strings.Contains(path, "://")
}
