// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ListDefects returns up to the configured list length of defects in the project.
func (c *Client) ListDefects(ctx context.Context) []Defect {
	body := c.credentials()
	body["length"] = c.opts.DefectListLength

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.postJSON(ctx, "/defects/list", body, &resp); err != nil {
		c.logger.Error("failed to list defects", "error", err.Error())
		return []Defect{}
	}

	defects := make([]Defect, 0, len(resp.Data))
	for _, fields := range resp.Data {
		defects = append(defects, NewDefect(fields))
	}
	c.logger.Info("retrieved defects", "count", len(defects))
	return defects
}

// GetDefect fetches one defect. A nil result means the defect was not found or the
// request failed; callers treat both the same way.
func (c *Client) GetDefect(ctx context.Context, defectID string) *Defect {
	query := url.Values{}
	query.Set("project_id", strconv.Itoa(c.opts.ProjectID))
	query.Set("defect_id", defectID)
	query.Set("token", c.opts.Token)

	var fields map[string]any
	if err := c.get(ctx, "/defects/details", query, &fields); err != nil {
		c.logger.Error("failed to get defect details", "defect_id", defectID, "error", err.Error())
		return nil
	}
	if len(fields) == 0 {
		c.logger.Warn("empty defect details", "defect_id", defectID)
		return nil
	}
	// A failed lookup comes back as {"status": false, "message": ...} without an id.
	if _, isFlag := fields["status"].(bool); isFlag && fields["id"] == nil {
		c.logger.Warn("defect not found", "defect_id", defectID, "message", textValue(fields["message"]))
		return nil
	}

	defect := NewDefect(fields)
	c.logger.Info("retrieved defect details", "defect_id", defectID)
	return &defect
}

// GetDefects fetches several defects with at most limit requests in flight. The
// result holds exactly one entry per distinct id; failed lookups map to nil.
func (c *Client) GetDefects(ctx context.Context, defectIDs []string, limit int) map[string]*Defect {
	if limit <= 0 {
		limit = c.opts.FetchWorkers
	}
	return FetchAll(ctx, defectIDs, limit, c.GetDefect, c.logger)
}

// UpdateDefect sets status and root cause on a defect, sending every other field of
// the snapshot back unchanged.
func (c *Client) UpdateDefect(ctx context.Context, defectID, status, rca string, snapshot *Defect) bool {
	form := c.UpdateForm(defectID, status, rca, snapshot)

	var resp envelope
	if err := c.postForm(ctx, "/defects/update", form, &resp); err != nil {
		c.logger.Error("failed to update defect", "defect_id", defectID, "error", err.Error())
		return false
	}
	if resp.Status != nil && !bool(*resp.Status) {
		c.logger.Error("defect update rejected", "defect_id", defectID, "message", resp.Message)
		return false
	}

	c.logger.Info("updated defect", "defect_id", defectID, "status", status, "rca", rca)
	return true
}

// UpdateForm builds the form body for /defects/update.
//
// Lists are joined with commas, nested objects are dropped because the endpoint
// rejects them, and nulls become empty strings.
func (c *Client) UpdateForm(defectID, status, rca string, snapshot *Defect) url.Values {
	form := url.Values{}

	if snapshot != nil {
		for key, value := range snapshot.Fields {
			text, ok := formValue(value)
			if !ok {
				continue
			}
			form.Set(key, text)
		}
	}

	form.Set("status", status)
	form.Set(c.opts.RCAField, rca)

	form.Set("token", c.opts.Token)
	form.Set("project_id", strconv.Itoa(c.opts.ProjectID))
	form.Set("id", defectID)
	form.Set("defect_id", defectID)

	return form
}

// formValue renders a payload value as form text. ok is false for values the
// update endpoint does not accept.
func formValue(v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		return "", false
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, listItemValue(item))
		}
		return strings.Join(parts, ","), true
	default:
		return textValue(v), true
	}
}

func listItemValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return textValue(v)
	}
}
