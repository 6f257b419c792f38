package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Type   string `binding:"omitempty,category_type"`
	Amount string `binding:"omitempty,decimal_amount"`
	Month  string `binding:"omitempty,month"`
}

func TestRegister(t *testing.T) {
	Register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"empty", sample{}, true},
		{"income", sample{Type: "income"}, true},
		{"expense", sample{Type: "expense"}, true},
		{"unknown type", sample{Type: "transfer"}, false},
		{"integer amount", sample{Amount: "100"}, true},
		{"fractional amount", sample{Amount: "12.50"}, true},
		{"zero amount", sample{Amount: "0"}, true},
		{"negative amount", sample{Amount: "-1"}, false},
		{"signed amount", sample{Amount: "+1"}, false},
		{"text amount", sample{Amount: "ten"}, false},
		{"month", sample{Month: "2024-02"}, true},
		{"bad month", sample{Month: "2024-13"}, false},
		{"full date", sample{Month: "2024-02-01"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
