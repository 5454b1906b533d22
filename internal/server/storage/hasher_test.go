package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestAndBuffer(t *testing.T) {
	digest, data, err := DigestAndBuffer(strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest.String())
	assert.Equal(t, []byte("hello world"), data)
}

func TestDigestAndBuffer_Empty(t *testing.T) {
	digest, data, err := DigestAndBuffer(strings.NewReader(""))
	require.NoError(t, err)

	// sha256 of the empty string
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", digest.String())
	assert.Empty(t, data)
}

func TestDigestBytes_MatchesStreaming(t *testing.T) {
	content := "identical either way"

	streamed, _, err := DigestAndBuffer(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, streamed, DigestBytes([]byte(content)))
}
