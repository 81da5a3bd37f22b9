package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr string
	}{
		{"zero value is valid", Config{}, ""},
		{"full config is valid", Config{
			BufferSize:           64,
			PollInterval:         time.Second,
			MaxReconnectInterval: time.Minute,
			Overflow:             OverflowDropOldest,
			InitialOffset:        ledger.OffsetBegin(),
		}, ""},
		{"negative buffer", Config{BufferSize: -1}, "buffer: size cannot be negative"},
		{"unknown overflow policy", Config{Overflow: OverflowPolicy(7)}, "buffer: unknown overflow policy 7"},
		{"negative poll interval", Config{PollInterval: -time.Second}, "reconnect: poll interval cannot be negative"},
		{"negative max interval", Config{MaxReconnectInterval: -time.Second}, "reconnect: max interval cannot be negative"},
		{"poll above max", Config{PollInterval: time.Minute, MaxReconnectInterval: time.Second}, "reconnect: poll interval cannot exceed max interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cvErr errspkg.ConfigValidationError
			require.ErrorAs(t, err, &cvErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateCollectsAllErrors(t *testing.T) {
	conf := Config{BufferSize: -1, PollInterval: -time.Second}
	err := conf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer: size cannot be negative")
	assert.Contains(t, err.Error(), "reconnect: poll interval cannot be negative")
}

func TestConfigWithDefaults(t *testing.T) {
	conf := Config{}.withDefaults()
	assert.Equal(t, defaultBufferSize, conf.BufferSize)
	assert.Equal(t, defaultPollInterval, conf.PollInterval)
	assert.Equal(t, defaultMaxReconnectInterval, conf.MaxReconnectInterval)
	assert.Equal(t, OverflowBlock, conf.Overflow)
	assert.True(t, conf.InitialOffset.IsEnd(), "unset initial offset defaults to end")

	// Explicit values survive defaulting.
	conf = Config{
		BufferSize:    16,
		InitialOffset: ledger.OffsetBegin(),
	}.withDefaults()
	assert.Equal(t, 16, conf.BufferSize)
	assert.True(t, conf.InitialOffset.IsBegin())
}

func TestOverflowPolicyString(t *testing.T) {
	assert.Equal(t, "block", OverflowBlock.String())
	assert.Equal(t, "drop_oldest", OverflowDropOldest.String())
	assert.Equal(t, "overflow(9)", OverflowPolicy(9).String())
}
