package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkgvet/pkgvet/pkg/types"
)

func TestNewAuditCmdDefaults(t *testing.T) {
	cmd := NewAuditCmd()

	assert.Equal(t, "audit", cmd.Use)
	assert.Equal(t, ".", cmd.Flag("dir").DefValue)
	assert.Equal(t, "5", cmd.Flag("parallel").DefValue)
	assert.Equal(t, "false", cmd.Flag("warnings").DefValue)
	assert.Equal(t, "5m0s", cmd.Flag("timeout").DefValue)
}

func TestApplyConfigPrecedence(t *testing.T) {
	cmd := NewAuditCmd()
	require.NoError(t, cmd.Flags().Set("parallel", "9"))

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(`
dir: ./from-config
parallel: 3
timeout: 1m
warnings: true
runTests: false
registry: https://registry.example.com`), &cfg))

	opts := &types.Options{
		Dir:      ".",
		Parallel: 9,
		Timeout:  5 * time.Minute,
		RunTests: true,
	}
	applyConfig(cmd, opts, &cfg)

	assert.Equal(t, "./from-config", opts.Dir, "config fills unset flags")
	assert.Equal(t, 9, opts.Parallel, "explicit flags beat config")
	assert.Equal(t, time.Minute, opts.Timeout)
	assert.True(t, opts.Warnings)
	assert.False(t, opts.RunTests)
	assert.Equal(t, "https://registry.example.com", opts.RegistryURL)
}
