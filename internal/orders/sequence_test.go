package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "000001", FormatNumber(1))
	require.Equal(t, "000042", FormatNumber(42))
	require.Equal(t, "999999", FormatNumber(999999))
}

func TestFormatNumberWidensBeyondSixDigits(t *testing.T) {
	require.Equal(t, "1000000", FormatNumber(1000000))
	require.Equal(t, "123456789", FormatNumber(123456789))
}
