// Package flow holds the small contracts shared by the workflow controllers
// and the presentation layer that drives them.
package flow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// Page is a step of the user journey a workflow can hand off to.
type Page string

const (
	PageHome      Page = "home"
	PageUpload    Page = "upload"
	PageDashboard Page = "dashboard"
	PagePayment   Page = "payment"
	PageSettings  Page = "settings"
	PageHistory   Page = "history"
)

// Navigator moves the user to another page once a workflow finishes.
type Navigator interface {
	Navigate(ctx context.Context, page Page) error
}

// Progress receives user-visible status updates from a workflow.
type Progress interface {
	// Stage reports a status line and a completion percentage (0-100).
	Stage(text string, percent int)
	// Fail reports a terminal failure message.
	Fail(text string)
}

// File is a user-selected file handle. Size is the byte length of Content.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// BytesFile wraps in-memory content as a File.
func BytesFile(name string, data []byte) *File {
	return &File{Name: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

// Present reports whether a non-empty file was actually selected.
func (f *File) Present() bool {
	return f != nil && f.Name != "" && f.Content != nil && f.Size > 0
}

// Wait sleeps for d unless ctx ends first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled by user")

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Stage(string, int) {}
func (NopProgress) Fail(string)       {}
