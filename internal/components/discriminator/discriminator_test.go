package discriminator

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

func TestComputeInitialize(t *testing.T) {
	d, err := Compute(Instruction, "initialize")
	require.NoError(t, err)
	assert.Equal(t, "afaf6d1f0d989bed", d.Hex())
	assert.Equal(t, "[175, 175, 109, 31, 13, 152, 155, 237]", d.Rust())
	assert.Equal(t, "175,175,109,31,13,152,155,237", d.Decimal())
}

func TestComputeMatchesPreimageHash(t *testing.T) {
	tests := []struct {
		kind     Kind
		name     string
		preimage string
	}{
		{Instruction, "initializeCounter", "global:initialize_counter"},
		{Instruction, "InitializeCounter", "global:initialize_counter"},
		{Account, "Counter", "account:Counter"},
		{Event, "CounterIncremented", "event:CounterIncremented"},
	}
	for _, tt := range tests {
		t.Run(tt.preimage, func(t *testing.T) {
			pre, err := Preimage(tt.kind, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.preimage, pre)

			d, err := Compute(tt.kind, tt.name)
			require.NoError(t, err)
			sum := sha256.Sum256([]byte(tt.preimage))
			assert.Equal(t, sum[:8], d[:])
		})
	}
}

func TestComputeValidation(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		name string
	}{
		{Instruction, ""},
		{Instruction, "   "},
		{Account, "has space"},
		{Account, "9lives"},
		{Kind("program"), "x"},
	} {
		_, err := Compute(tc.kind, tc.name)
		require.Error(t, err, "%s %q", tc.kind, tc.name)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	}
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"initialize":        "initialize",
		"initializeCounter": "initialize_counter",
		"InitializeCounter": "initialize_counter",
		"already_snake":     "already_snake",
		"HTTPServer":        "http_server",
		"mintV2":            "mint_v2",
		"updateV2Config":    "update_v2_config",
	} {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestParseKindAndFormat(t *testing.T) {
	k, err := ParseKind("IX")
	require.NoError(t, err)
	assert.Equal(t, Instruction, k)
	_, err = ParseKind("program")
	assert.Error(t, err)

	d, err := Compute(Account, "Counter")
	require.NoError(t, err)
	for format, want := range map[string]string{"": d.Hex(), "hex": d.Hex(), "rust": d.Rust(), "bytes": d.Decimal()} {
		got, err := Format(d, format)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = Format(d, "base58")
	assert.Error(t, err)
}
