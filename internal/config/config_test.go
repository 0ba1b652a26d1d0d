package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("", 15*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	d, err = parseDuration("2m", 15*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	_, err = parseDuration("not-a-duration", 0)
	assert.Error(t, err)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 4, parseIntDefault("", 4))
	assert.Equal(t, 7, parseIntDefault("7", 4))
	assert.Equal(t, 4, parseIntDefault("zero", 4))
	assert.Equal(t, 4, parseIntDefault("-1", 4))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nWRITHA_TEST_KEY=from-file\nWRITHA_TEST_QUOTED=\"quoted\"\nmalformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("WRITHA_TEST_KEY", "from-env")
	os.Unsetenv("WRITHA_TEST_QUOTED")
	t.Cleanup(func() { os.Unsetenv("WRITHA_TEST_QUOTED") })

	require.NoError(t, loadEnvFile(path))

	// Existing env vars win over the file.
	assert.Equal(t, "from-env", os.Getenv("WRITHA_TEST_KEY"))
	assert.Equal(t, "quoted", os.Getenv("WRITHA_TEST_QUOTED"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAccessTokenKey(t *testing.T) {
	t.Setenv("WRITHA_ACCESS_TOKEN_KEY", "")
	key, err := loadAccessTokenKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	t.Setenv("WRITHA_ACCESS_TOKEN_KEY", "not-hex")
	_, err = loadAccessTokenKey()
	assert.Error(t, err)

	t.Setenv("WRITHA_ACCESS_TOKEN_KEY", "deadbeef")
	_, err = loadAccessTokenKey()
	assert.Error(t, err, "short keys must be rejected")

	t.Setenv("WRITHA_ACCESS_TOKEN_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	key, err = loadAccessTokenKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
