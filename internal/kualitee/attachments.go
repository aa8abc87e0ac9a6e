// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// AllowedExtensions lists the attachment types Kualitee accepts.
var AllowedExtensions = []string{
	"gif", "jpg", "png", "jpeg", "pdf", "docx", "csv", "xls",
	"ppt", "mp4", "webm", "msg", "eml", "zip", "xml", "pcap",
}

var (
	// ErrAttachmentNotFound is returned when the attachment path is not a readable file.
	ErrAttachmentNotFound = errors.New("file not found")
	// ErrAttachmentType is returned for extensions outside AllowedExtensions.
	ErrAttachmentType = errors.New("invalid file type")
)

// Extension returns the lower-cased extension of path without the dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// AllowedExtension reports whether path has an accepted attachment extension.
func AllowedExtension(path string) bool {
	ext := Extension(path)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ContentType guesses the MIME type from the extension.
func ContentType(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CheckAttachment verifies that path is an existing file with an allowed extension.
func CheckAttachment(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrAttachmentNotFound, path)
	}
	if !AllowedExtension(path) {
		return fmt.Errorf("%w: %s", ErrAttachmentType, Extension(path))
	}
	return nil
}

// UploadAttachment attaches a file to an execution.
func (c *Client) UploadAttachment(ctx context.Context, caseID, cycleID, executionID ID, filePath string) bool {
	if err := CheckAttachment(filePath); err != nil {
		c.logger.Error("attachment rejected", "path", filePath, "error", err.Error(),
			"allowed", strings.Join(AllowedExtensions, ","))
		return false
	}

	fields := map[string]string{
		"token":           c.opts.Token,
		"project_id":      fmt.Sprint(c.opts.ProjectID),
		"cycle_id":        cycleID.String(),
		"testcase_id":     caseID.String(),
		"execution_id":    executionID.String(),
		"type":            "tc",
		"sub_testcase_id": "",
	}

	var resp envelope
	err := c.postMultipart(ctx, "/test_case_execution/execution_attachments", fields,
		"attachment[]", filePath, ContentType(filePath), &resp)
	if err != nil {
		c.logger.Error("error uploading attachment", "path", filePath, "error", err.Error())
		return false
	}
	if resp.Status == nil || !bool(*resp.Status) {
		c.logger.Error("attachment upload failed", "path", filePath, "message", resp.Message)
		return false
	}

	c.logger.Info("attachment uploaded", "file", filepath.Base(filePath), "execution_id", executionID)
	return true
}
