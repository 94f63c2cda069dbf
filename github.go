package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// findGitHubREADME tries to find the correct README filename in a repository
// using the GitHub API, then by guessing raw file locations.
func findGitHubREADME(ctx context.Context, owner, repo string) (*source, error) {
	type readme struct {
		DownloadURL string `json:"download_url"`
	}

	var result readme
	apiURL := fmt.Sprintf("%s/repos/%s/%s/readme", githubAPI, owner, repo)
	err := getJSON(ctx, apiURL, &result)
	if err == nil && result.DownloadURL != "" {
		src, err := fetch(ctx, result.DownloadURL)
		if err == nil {
			return src, nil
		}
		log.Debug("Could not download README", "url", result.DownloadURL, "err", err)
	} else if err != nil {
		// the API is rate limited for anonymous use
		log.Debug("GitHub API lookup failed", "repo", owner+"/"+repo, "err", err)
	}

	if src := guessREADME(ctx, githubRaw, owner, repo, ""); src != nil {
		return src, nil
	}
	return nil, fmt.Errorf("can't find README in GitHub repository %s/%s", owner, repo)
}
