package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferItemType(t *testing.T) {
	tests := []struct {
		code string
		want ItemType
	}{
		{"SFG-EXTR-01", ItemTypeSFG},
		{"sfg-extr-01", ItemTypeSFG},
		{"SA-BRACKET-02", ItemTypeSA},
		{"RM-BILLET-03", ItemTypeRM},
		{"FG-WINDOW-04", ItemTypeFG},
		{"WINDOW-05", ItemTypeFG},
		{"", ItemTypeFG},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferItemType(tt.code), "code %q", tt.code)
	}
}
