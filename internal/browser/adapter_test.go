// internal/browser/adapter_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotationSelectors(t *testing.T) {
	assert.Equal(t, `[data-agent-field="title"]`, fieldSelector("title"))
	assert.Equal(t, `[data-agent-submit="task.create"]`, submitSelector("task.create"))
}

// TestRenderValue: arguments render the way a person would type them,
// so whole numbers lose the JSON decoder's float suffix.
func TestRenderValue(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "write report", "write report"},
		{"whole number", float64(120), "120"},
		{"fractional number", 2.5, "2.5"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderValue(tc.value))
		})
	}
}
