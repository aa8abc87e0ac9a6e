// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}

	err := json.Unmarshal([]byte(`{"a": 265744, "b": "TC-1", "c": null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, ID("265744"), payload.A)
	assert.Equal(t, ID("TC-1"), payload.B)
	assert.True(t, payload.C.IsZero())
}

func TestIDMarshal(t *testing.T) {
	data, err := json.Marshal(map[string]ID{"numeric": "42", "text": "abc", "padded": "007", "empty": ""})
	require.NoError(t, err)

	assert.JSONEq(t, `{"numeric": 42, "text": "abc", "padded": "007", "empty": ""}`, string(data))
}
