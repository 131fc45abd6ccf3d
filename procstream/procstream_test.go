package procstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_RoundTripsThroughCat(t *testing.T) {
	s, err := Start("cat")
	require.NoError(t, err)

	want := []byte("hello, gnzip\n")

	go func() {
		_, _ = s.Write(want)
		_ = s.CloseWrite()
	}()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Wait())
}

func TestStream_WaitReportsNonZeroExit(t *testing.T) {
	s, err := Start("false")
	require.NoError(t, err)

	err = s.Wait()
	require.Error(t, err)
}

func TestStream_KillIsIdempotent(t *testing.T) {
	s, err := Start("cat")
	require.NoError(t, err)

	s.Kill()
	s.Kill() // must not panic or block on a second call

	_, _ = io.Copy(&bytes.Buffer{}, s)
}
