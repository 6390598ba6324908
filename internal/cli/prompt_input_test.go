package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptYesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes lowercase lf", input: "y\n", want: true},
		{name: "yes word lf", input: "yes\n", want: true},
		{name: "yes mixed case lf", input: "YeS\n", want: true},
		{name: "yes lowercase cr", input: "y\r", want: true},
		{name: "yes without newline", input: "y", want: true},
		{name: "no default lf", input: "\n", want: false},
		{name: "no explicit cr", input: "n\r", want: false},
		{name: "empty input", input: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			got := promptYesNo(strings.NewReader(tc.input), &out, "Confirm? [y/N]: ")
			assert.Equal(t, tc.want, got)
			assert.Equal(t, "Confirm? [y/N]: ", out.String())
		})
	}
}
