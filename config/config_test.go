package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0000000000000000000000000000000000000000000000000000000000000001"

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"sk", "pk", "numberOfWorkers", "difficulty", "mineTimeout", "maxIterations", "reportUrl", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkers, c.NumberOfWorkers)
	assert.Equal(t, DefaultDifficulty, c.Difficulty)
	assert.Equal(t, DefaultMineTimeout, c.MineTimeout)
	assert.Equal(t, 0, c.MaxIterations)
	assert.Equal(t, DefaultReportURL, c.ReportURL)
	assert.Equal(t, logrus.InfoLevel, c.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	for _, key := range []string{"sk", "pk", "numberOfWorkers", "difficulty", "mineTimeout", "arbRpcUrl", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(
		"sk="+testSecretKey+"\n"+
			"numberOfWorkers=4\n"+
			"difficulty=18\n"+
			"mineTimeout=1500ms\n"+
			"arbRpcUrl=wss://arb.example\n"+
			"LOG_LEVEL=debug\n"), 0o600))

	c, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, 4, c.NumberOfWorkers)
	assert.Equal(t, 18, c.Difficulty)
	assert.Equal(t, 1500*time.Millisecond, c.MineTimeout)
	assert.Equal(t, logrus.DebugLevel, c.LogLevel)

	require.NoError(t, c.Validate())
	assert.Equal(t, "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", c.PublicKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("difficulty", "twenty")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("difficulty", "")
	t.Setenv("mineTimeout", "soon")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := &Config{NumberOfWorkers: 1, ArbRpcUrl: "wss://arb.example"}
	assert.ErrorIs(t, c.Validate(), ErrMissingSecretKey)

	c.SecretKey = testSecretKey
	c.NumberOfWorkers = 0
	assert.Error(t, c.Validate())

	c.NumberOfWorkers = 2
	c.Difficulty = -1
	assert.Error(t, c.Validate())

	c.Difficulty = 21
	assert.NoError(t, c.Validate())
}
