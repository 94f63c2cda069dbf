package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// followReader reads a file and, at its end, waits for the file to grow
// instead of reporting io.EOF, like tail -f. The render blocks in Read just
// as it would on a stalled pipe. It ends when ctx is done or the file is
// removed or renamed.
type followReader struct {
	ctx     context.Context
	f       *os.File
	watcher *fsnotify.Watcher
}

func newFollowReader(ctx context.Context, path string) (*followReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		_ = f.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", path, err)
	}
	log.Debug("Following file", "path", path)
	return &followReader{ctx: ctx, f: f, watcher: w}, nil
}

func (r *followReader) Read(p []byte) (int, error) {
	for {
		n, err := r.f.Read(p)
		if n > 0 || (err != nil && err != io.EOF) {
			return n, err
		}

		select {
		case <-r.ctx.Done():
			return 0, io.EOF
		case ev, ok := <-r.watcher.Events:
			if !ok || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return 0, io.EOF
			}
			if ev.Has(fsnotify.Write) {
				if err := r.rewindIfTruncated(); err != nil {
					return 0, err
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("watching file: %w", err)
		}
	}
}

// rewindIfTruncated starts over when the file shrank below the read offset.
func (r *followReader) rewindIfTruncated() error {
	off, err := r.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	st, err := r.f.Stat()
	if err != nil {
		return err
	}
	if st.Size() < off {
		log.Debug("File truncated, reading from the start", "path", r.f.Name())
		_, err = r.f.Seek(0, io.SeekStart)
	}
	return err
}

func (r *followReader) Close() error {
	werr := r.watcher.Close()
	if err := r.f.Close(); err != nil {
		return err
	}
	return werr
}
