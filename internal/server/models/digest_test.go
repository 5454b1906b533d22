package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigestHex = "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"

func TestNewContentDigest_Valid(t *testing.T) {
	d, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)
	assert.Equal(t, testDigestHex, d.String())
}

func TestNewContentDigest_NormalizesCase(t *testing.T) {
	d, err := NewContentDigest(strings.ToUpper(testDigestHex))
	require.NoError(t, err)
	assert.Equal(t, testDigestHex, d.String())
}

func TestNewContentDigest_InvalidLength(t *testing.T) {
	_, err := NewContentDigest("abcdef123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDigestLength)
}

func TestNewContentDigest_InvalidCharacters(t *testing.T) {
	_, err := NewContentDigest(testDigestHex[:63] + "z")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDigestCharacters)
}

func TestContentDigest_PathComponents(t *testing.T) {
	d, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)

	p1, p2, p3 := d.PathComponents()
	assert.Equal(t, "ab", p1)
	assert.Equal(t, "cd", p2)
	assert.Equal(t, "ef", p3)
	assert.Equal(t, "abcdef", d.Prefix())
}

func TestContentDigest_StoragePath(t *testing.T) {
	d, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)

	assert.Equal(t, "ab/cd/ef/"+testDigestHex, d.StoragePath())
}

func TestContentDigest_StoragePathsDoNotCollide(t *testing.T) {
	a, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)
	b, err := NewContentDigest("ab" + testDigestHex[2:63] + "1")
	require.NoError(t, err)

	assert.NotEqual(t, a.StoragePath(), b.StoragePath())
}

func TestZeroContentDigest(t *testing.T) {
	z := ZeroContentDigest()
	assert.True(t, z.IsZero())
	assert.Len(t, z.String(), DigestHexLength)

	d, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)
	assert.False(t, d.IsZero())
}
