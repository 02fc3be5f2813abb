package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signalbox/pkg/domain-errors"
)

func TestGate_Check(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name     string
		signals  Signals
		rejected bool
	}{
		{
			name:     "human submission passes",
			signals:  Signals{Elapsed: 42 * time.Second},
			rejected: false,
		},
		{
			name:     "slow typer passes",
			signals:  Signals{Elapsed: 20 * time.Minute},
			rejected: false,
		},
		{
			name:     "non-empty honeypot rejected",
			signals:  Signals{Honeypot: "filled-by-bot", Elapsed: time.Minute},
			rejected: true,
		},
		{
			name:     "too fast rejected",
			signals:  Signals{Elapsed: 2 * time.Second},
			rejected: true,
		},
		{
			name:     "exactly at threshold passes",
			signals:  Signals{Elapsed: 5 * time.Second},
			rejected: false,
		},
		{
			name:     "zero elapsed rejected",
			signals:  Signals{},
			rejected: true,
		},
		{
			name:     "honeypot wins even with plausible timing",
			signals:  Signals{Honeypot: " ", Elapsed: time.Hour},
			rejected: true,
		},
		{
			name: "crawler user agent rejected",
			signals: Signals{
				Elapsed:   time.Minute,
				UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			},
			rejected: true,
		},
		{
			name: "browser user agent passes",
			signals: Signals{
				Elapsed:   time.Minute,
				UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			},
			rejected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.signals)
			if tt.rejected {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeRejected))
				// Uniform refusal: the message never names the heuristic.
				assert.NotContains(t, err.Error(), "honeypot")
				assert.NotContains(t, err.Error(), "elapsed")
				assert.NotContains(t, err.Error(), "bot")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGate_WithMinElapsed(t *testing.T) {
	gate := NewGate(WithMinElapsed(10 * time.Second))

	require.Error(t, gate.Check(Signals{Elapsed: 7 * time.Second}))
	require.NoError(t, gate.Check(Signals{Elapsed: 11 * time.Second}))
}
