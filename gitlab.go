package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

// findGitLabREADME tries to find the correct README filename in a repository
// using the GitLab API, then by guessing raw file locations.
func findGitLabREADME(ctx context.Context, owner, repo string) (*source, error) {
	type project struct {
		ReadmeURL string `json:"readme_url"`
	}

	var result project
	apiURL := gitlabAPI + "/projects/" + url.QueryEscape(owner+"/"+repo)
	err := getJSON(ctx, apiURL, &result)
	if err == nil && result.ReadmeURL != "" {
		raw := strings.Replace(result.ReadmeURL, "/-/blob/", "/-/raw/", 1)
		src, err := fetch(ctx, raw)
		if err == nil {
			return src, nil
		}
		log.Debug("Could not download README", "url", raw, "err", err)
	} else if err != nil {
		log.Debug("GitLab API lookup failed", "repo", owner+"/"+repo, "err", err)
	}

	if src := guessREADME(ctx, gitlabRaw, owner, repo, "/-/raw"); src != nil {
		return src, nil
	}
	return nil, fmt.Errorf("can't find README in GitLab repository %s/%s", owner, repo)
}
