package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// source provides a readable markdown source.
type source struct {
	reader io.ReadCloser
	URL    string
}

// sourceFromArg parses an argument and creates a readable source for it.
func sourceFromArg(ctx context.Context, arg string) (*source, error) {
	if follow {
		return followSource(ctx, arg)
	}

	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// a GitHub or GitLab URL (even without the protocol):
	src, err := readmeURL(ctx, arg)
	if src != nil || err != nil {
		return src, err
	}

	// HTTP(S) URLs:
	if isURL(arg) {
		u, err := url.ParseRequestURI(arg)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		// consumer of the source is responsible for closing the ReadCloser.
		return fetch(ctx, u.String())
	}

	st, err := os.Stat(arg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", arg)
	}
	if err != nil {
		return nil, err
	}

	// a directory:
	if st.IsDir() {
		return readmeInDir(arg)
	}

	// a file:
	r, err := os.Open(arg)
	if err != nil {
		return nil, err
	}
	u, _ := filepath.Abs(arg)
	return &source{r, u}, nil
}

// readmeInDir returns the first README found below dir.
func readmeInDir(dir string) (*source, error) {
	var src *source
	errFound := errors.New("source found")
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, v := range readmeNames {
			if strings.EqualFold(d.Name(), v) {
				r, err := os.Open(path)
				if err != nil {
					continue
				}
				u, _ := filepath.Abs(path)
				src = &source{r, u}
				// abort the walk
				return errFound
			}
		}
		return nil
	})
	if src != nil {
		return src, nil
	}
	if err != nil && !errors.Is(err, errFound) {
		return nil, err
	}
	return nil, fmt.Errorf("missing markdown source in %s", dir)
}

// followSource opens a file that keeps being read as it grows.
func followSource(ctx context.Context, arg string) (*source, error) {
	if arg == "-" {
		// a pipe is followed until its writer closes it anyway
		return &source{reader: os.Stdin}, nil
	}
	st, err := os.Stat(arg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", arg)
	}
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("cannot follow %s: not a file", arg)
	}
	r, err := newFollowReader(ctx, arg)
	if err != nil {
		return nil, err
	}
	u, _ := filepath.Abs(arg)
	return &source{r, u}, nil
}
