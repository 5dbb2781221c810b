package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/matzehuels/sheetcalc/pkg/errors"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "coded",
			err:  fmt.Errorf("set: %w", errors.Circular("B2")),
			want: "Error: cell B2 would create a circular dependency [CIRCULAR_DEPENDENCY]\n",
		},
		{
			name: "plain",
			err:  stderrors.New("open book.toml: permission denied"),
			want: "Error: open book.toml: permission denied\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			report(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("report() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
