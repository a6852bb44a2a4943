package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "   ", []string{}},
		{"single word", "Battery", []string{"battery"}},
		{"words", "Redmi Note 9", []string{"redmi note 9", "redmi", "note", "9"}},
		{
			"slash separated models",
			"Vivo Y20 / Y12s/ Y20",
			[]string{"vivo y20", "vivo", "y20", "y12s"},
		},
		{"blank chunks skipped", "a // b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}

func TestMinStock(t *testing.T) {
	assert.Equal(t, 2, MinStock(0))
	assert.Equal(t, 2, MinStock(2))
	assert.Equal(t, 3, MinStock(3))
	assert.Equal(t, 3, MinStock(6))
	assert.Equal(t, 5, MinStock(10))
	assert.Equal(t, 10, MinStock(11))
}
