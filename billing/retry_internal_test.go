package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy
	require.Equal(t, time.Second, p.delay(0))
	require.Equal(t, 2*time.Second, p.delay(1))
	require.Equal(t, 4*time.Second, p.delay(2))
	require.Equal(t, 5*time.Second, p.delay(3))
	require.Equal(t, 5*time.Second, p.delay(40))
}
