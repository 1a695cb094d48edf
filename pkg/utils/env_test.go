package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetEnv_Existing(t *testing.T) {
	os.Setenv("FOO_BAR", "qux")
	val := GetEnv("FOO_BAR", "baz")
	require.Equal(t, "qux", val)
	os.Unsetenv("FOO_BAR")
}

func TestGetEnv_Default(t *testing.T) {
	os.Unsetenv("FOO_BAR")
	val := GetEnv("FOO_BAR", "baz")
	require.Equal(t, "baz", val)
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("FOO_INT", "42")
	require.Equal(t, 42, GetEnvInt("FOO_INT", 7))
	os.Setenv("FOO_INT", "not-a-number")
	require.Equal(t, 7, GetEnvInt("FOO_INT", 7))
	os.Unsetenv("FOO_INT")
	require.Equal(t, 7, GetEnvInt("FOO_INT", 7))
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("FOO_BOOL", "true")
	require.True(t, GetEnvBool("FOO_BOOL", false))
	os.Unsetenv("FOO_BOOL")
	require.False(t, GetEnvBool("FOO_BOOL", false))
}

func TestGetEnvDuration(t *testing.T) {
	os.Setenv("FOO_DUR", "90s")
	require.Equal(t, 90*time.Second, GetEnvDuration("FOO_DUR", time.Minute))
	os.Setenv("FOO_DUR", "nope")
	require.Equal(t, time.Minute, GetEnvDuration("FOO_DUR", time.Minute))
	os.Unsetenv("FOO_DUR")
}
