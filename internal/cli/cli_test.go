package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsync/fitsync/client/garmin"
	"github.com/fitsync/fitsync/internal/config"
)

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"  YES  \n", true},
		{"Y", true},
		{"no\n", false},
		{"\n", false},
		{"yep\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tc.input), &out)
		got, err := p.Confirm("Proceed?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, "Proceed? (yes/no): ", out.String())
	}
}

func TestConfirmReadsSuccessiveAnswers(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\nno\n"), &out)

	first, err := p.Confirm("one")
	require.NoError(t, err)
	second, err := p.Confirm("two")
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}

var errNoSession = errors.New("no session file exists")

func TestHandlerReport(t *testing.T) {
	h := Handler{
		Hint:      "Please check your settings.",
		Cancelled: "Cleanup cancelled.",
		Expected:  []error{errNoSession},
	}

	cases := []struct {
		name     string
		err      error
		code     int
		contains string
		hint     bool
	}{
		{"nil", nil, 0, "", false},
		{"cancelled", fmt.Errorf("first prompt: %w", ErrCancelled), 0, "Cleanup cancelled.", false},
		{"config", &config.Error{Missing: []string{"NOTION_TOKEN"}}, 1, "configuration: missing NOTION_TOKEN", false},
		{"auth", fmt.Errorf("login: %w", garmin.ErrAuthentication), 1, "authentication failed", false},
		{"expected", fmt.Errorf("export: %w", errNoSession), 1, "Error: export: no session file exists", false},
		{"unexpected", errors.New("boom"), 1, "Error: boom", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			code := h.Report(&out, tc.err)
			assert.Equal(t, tc.code, code)
			assert.Contains(t, out.String(), tc.contains)
			assert.Equal(t, tc.hint, strings.Contains(out.String(), h.Hint))
		})
	}
}
