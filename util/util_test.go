package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "probe")

	require.False(t, FileExists(file))

	err := os.WriteFile(file, []byte("x"), 0600)
	require.NoError(t, err)

	require.True(t, FileExists(file))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("UTIL_TEST_KEY", "value")

	require.Equal(t, "value", GetEnv("UTIL_TEST_KEY", "fallback"))
	require.Equal(t, "fallback", GetEnv("UTIL_TEST_MISSING", "fallback"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("UTIL_TEST_INT", "42")
	t.Setenv("UTIL_TEST_BAD_INT", "forty-two")

	require.Equal(t, 42, GetEnvAsInt("UTIL_TEST_INT", 7))
	require.Equal(t, 7, GetEnvAsInt("UTIL_TEST_BAD_INT", 7))
	require.Equal(t, 7, GetEnvAsInt("UTIL_TEST_MISSING", 7))
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(""))
	require.True(t, IsBlank("  \t "))
	require.False(t, IsBlank(" a "))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 1, Clamp(0, 1, 100))
	require.Equal(t, 100, Clamp(1000, 1, 100))
	require.Equal(t, 20, Clamp(20, 1, 100))
}
