package keychain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyMaterialLength(t *testing.T) {
	k, err := NewKeyMaterial[Size16](make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, 16, k.Len())

	_, err = NewKeyMaterial[Size32](make([]byte, 31))
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = NewKeyMaterial[Size32](make([]byte, 33))
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = NewKeyMaterial[Size64](nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNewKeyMaterialTakesOwnership(t *testing.T) {
	b := make([]byte, 32)
	b[0] = 7
	k, err := NewKeyMaterial[Size32](b)
	require.NoError(t, err)

	k.Destroy()
	assert.Equal(t, byte(0), b[0], "Destroy must wipe the original buffer")
}

func TestRandomKeyMaterial(t *testing.T) {
	a, err := RandomKeyMaterial[Size64]()
	require.NoError(t, err)
	b, err := RandomKeyMaterial[Size64]()
	require.NoError(t, err)

	assert.Len(t, a.Bytes(), 64)
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a))
}

func TestDestroy(t *testing.T) {
	k, err := RandomKeyMaterial[Size32]()
	require.NoError(t, err)
	buf := k.Bytes()

	k.Destroy()
	assert.True(t, k.Consumed())
	assert.Nil(t, k.Bytes())
	assert.Equal(t, make([]byte, 32), buf)

	k.Destroy()
	assert.Equal(t, 32, k.Len(), "length is static")
}

func TestEqual(t *testing.T) {
	raw := []byte("0123456789abcdef")
	a, err := NewKeyMaterial[Size16](append([]byte(nil), raw...))
	require.NoError(t, err)
	b, err := NewKeyMaterial[Size16](append([]byte(nil), raw...))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))

	b.Destroy()
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestKeyMaterialRedacted(t *testing.T) {
	raw := []byte("0123456789abcdef0123456789abcdef")
	k, err := NewKeyMaterial[Size32](append([]byte(nil), raw...))
	require.NoError(t, err)

	for _, s := range []string{
		fmt.Sprint(k),
		fmt.Sprintf("%v", k),
		fmt.Sprintf("%+v", k),
		fmt.Sprintf("%#v", k),
		fmt.Sprintf("%s", k),
	} {
		assert.NotContains(t, s, string(raw))
		assert.Contains(t, s, "redacted")
	}
}
