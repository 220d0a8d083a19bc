package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const errTest = Error("something went wrong")

func TestError_Is_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, Is(errTest, Error("something went wrong")))
	assert.False(t, Is(errTest, Error("something else")))
}

func TestError_Wrap_Success(t *testing.T) {
	t.Parallel()

	cause := New("underlying cause")
	wrapped := errTest.Wrap(cause)

	assert.Equal(t, "something went wrong -- underlying cause", wrapped.Error())
	assert.True(t, Is(wrapped, errTest))
	require.ErrorIs(t, wrapped, cause)
}

func TestJoin_Success(t *testing.T) {
	t.Parallel()

	a := New("a")
	b := New("b")

	joined := Join(a, b)
	assert.True(t, Is(joined, a))
	assert.True(t, Is(joined, b))
}
