package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryValidator(t *testing.T) {
	v := NewQueryValidator()

	tests := []struct {
		name    string
		query   string
		wantOK  bool
	}{
		{"normal query", "посоветуй боевик с Томом Хэнксом", true},
		{"short but valid", "кино", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"too short", "да", false},
		{"bot command", "/start", false},
		{"digits only", "12345", false},
		{"symbols only", "?!...", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Validate(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.NotEmpty(t, reason, "rejections carry a user-facing reason")
			}
		})
	}
}
