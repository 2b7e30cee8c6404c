package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(hour int) time.Time {
	return time.Date(2025, 11, 5, hour, 30, 0, 0, time.UTC)
}

func TestClassifyDecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		valor    float64
		hasValor bool
		emissao  time.Time
		hasTime  bool
		want     Label
	}{
		{"hotel above threshold", 150.00, true, at(11), true, Hotel},
		{"lunch before sixteen", 45.00, true, at(11), true, Almoco},
		{"dinner from sixteen", 45.00, true, at(19), true, Janta},
		{"meal band without time", 45.00, true, time.Time{}, false, AlmocoMaybe},
		{"absent amount", 0, false, at(11), true, SemValor},
		{"below meal band", 20.00, true, at(11), true, Outro},
		{"meal band lower bound", 40.00, true, at(15), true, Almoco},
		{"meal band upper bound", 55.00, true, at(16), true, Janta},
		{"just above meal band", 55.01, true, at(12), true, Outro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.valor, tt.hasValor, tt.emissao, tt.hasTime))
		})
	}
}
