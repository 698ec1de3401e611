package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/temoto/kiosk/internal/types"
)

func TestTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		name   string
		config Config
		pin    string
		bio    string
		expect types.Verdict
	}{
		{"default-ok", Config{}, "1234", types.BiometricMatch, types.VerdictApproved},
		{"default-pin", Config{}, "1235", types.BiometricMatch, types.VerdictDenied},
		{"default-bio", Config{}, "1234", types.BiometricNoMatch, types.VerdictDenied},
		{"empty-bio", Config{}, "1234", "", types.VerdictDenied},
		{"custom", Config{Pin: "0000", Biometric: "OK"}, "0000", "OK", types.VerdictApproved},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			v, err := NewTable(c.config).Verify(ctx, c.pin, c.bio)
			assert.NoError(t, err)
			assert.Equal(t, c.expect, v)
		})
	}
}

func TestTableCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTable(Config{}).Verify(ctx, "1234", types.BiometricMatch)
	assert.True(t, types.IsVerificationError(err))
}
