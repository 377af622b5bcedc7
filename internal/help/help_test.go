// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowGeneralHelp(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(true).ShowGeneralHelp(&buf)

	out := buf.String()
	for _, flag := range []string{"--dir", "--output-dir", "--config", "--layout", "--web", "--port", "--help <topic>"} {
		assert.Contains(t, out, flag)
	}
	assert.Contains(t, out, "config, layouts")
	assert.NotContains(t, out, "\x1b[", "colors must be disabled")
}

func TestShowTopic(t *testing.T) {
	h := NewSystem(true)

	var buf bytes.Buffer
	assert.True(t, h.ShowTopic(&buf, " CONFIG "))
	assert.Contains(t, buf.String(), "canonical_fields:")

	buf.Reset()
	assert.True(t, h.ShowTopic(&buf, "layouts"))
	assert.Contains(t, buf.String(), "extracted_text")

	assert.False(t, h.ShowTopic(&buf, "nope"))
}

func TestRegisterTopic(t *testing.T) {
	h := NewSystem(true)
	h.RegisterTopic(Topic{Name: "Custom", Render: func(_ *System, w io.Writer) {
		io.WriteString(w, "custom page")
	}})

	assert.Equal(t, []string{"config", "custom", "layouts"}, h.TopicNames())

	var buf bytes.Buffer
	assert.True(t, h.ShowTopic(&buf, "custom"))
	assert.Equal(t, "custom page", buf.String())
}
