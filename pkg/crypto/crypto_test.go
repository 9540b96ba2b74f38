package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "secret"))
	require.False(t, VerifyPassword(hash, "incorrect"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	for i := 0; i < 20; i++ {
		password, err := GenerateTemporaryPassword(12)
		require.NoError(t, err)
		require.Len(t, password, 12)
		require.True(t, strings.ContainsAny(password, lowerChars))
		require.True(t, strings.ContainsAny(password, upperChars))
		require.True(t, strings.ContainsAny(password, digitChars))
		require.True(t, strings.ContainsAny(password, symbolChars))
	}

	_, err := GenerateTemporaryPassword(4)
	require.Error(t, err)
}
