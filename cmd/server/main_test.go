package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuperviseRestarts(t *testing.T) {
	calls := 0
	superviseRestarts(func() error {
		calls++
		if calls < 3 {
			return errors.New("listen tcp 127.0.0.1:8080: bind: address already in use")
		}
		return nil
	}, 0)
	require.Equal(t, 3, calls)
}
