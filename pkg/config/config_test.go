package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	content := `
installations:
  - vendor: eclipse
    directory: jdk/21
    type: jdk
    version: 21
settings:
  workers: 4
  http_timeout: 10s
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Installations, 1)

	inst := cfg.Installations[0]
	assert.Equal(t, "eclipse", inst.Vendor)
	assert.Equal(t, "jdk/21", inst.Directory)
	assert.Equal(t, "21", string(inst.Version))
	assert.Equal(t, platform.HostArch(), inst.Architecture, "architecture defaults to host")
	assert.Equal(t, platform.HostOS(), inst.OS, "os defaults to host")
	assert.True(t, inst.IsEnabled(), "enabled defaults to true")

	assert.Equal(t, 4, cfg.Settings.Workers)
	assert.Equal(t, 10*time.Second, cfg.Settings.HTTPTimeout.Std())
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := Load("")
		assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, errors.ErrConfigNotFound)
	})
}

func TestLoadFromReader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty file",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Installations)
				assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
				assert.Equal(t, DefaultLogLevel, cfg.Settings.LogLevel)
			},
		},
		{
			name: "version as string",
			content: `
installations:
  - vendor: azul
    directory: d
    type: jdk
    version: "8"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8", string(cfg.Installations[0].Version))
			},
		},
		{
			name: "version as integer",
			content: `
installations:
  - vendor: azul
    directory: d
    type: jdk
    version: 8
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8", string(cfg.Installations[0].Version))
			},
		},
		{
			name: "explicitly disabled",
			content: `
installations:
  - vendor: azul
    directory: d
    enabled: false
`,
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Installations[0].IsEnabled())
			},
		},
		{
			name: "notify commands and hooks",
			content: `
installations:
  - vendor: eclipse
    directory: d
    on-success:
      - path: /usr/bin/notify-send
        args: ["updated", "${env.JU_NEW_VERSION}"]
    on-failure:
      - path: /usr/bin/notify-send
        directory: /tmp
    hooks:
      pre-update: hooks/pre.tengo
`,
			check: func(t *testing.T, cfg *Config) {
				inst := cfg.Installations[0]
				require.Len(t, inst.OnSuccess, 1)
				assert.Equal(t, []string{"updated", "${env.JU_NEW_VERSION}"}, inst.OnSuccess[0].Args)
				require.Len(t, inst.OnFailure, 1)
				assert.Equal(t, "/tmp", inst.OnFailure[0].Directory)
				assert.Equal(t, "hooks/pre.tengo", inst.Hooks.PreUpdate)
			},
		},
		{
			name: "unknown field rejected",
			content: `
installations:
  - vendor: eclipse
    directory: d
    typo: jdk
`,
			wantErr: errors.ErrConfigParse,
		},
		{
			name: "version as list rejected",
			content: `
installations:
  - vendor: eclipse
    directory: d
    version: [21]
`,
			wantErr: errors.ErrConfigParse,
		},
		{
			name:    "invalid duration rejected",
			content: "settings:\n  http_timeout: fast\n",
			wantErr: errors.ErrConfigParse,
		},
		{
			name:    "missing vendor rejected",
			content: "installations:\n  - directory: d\n",
			wantErr: errors.ErrConfigValidation,
		},
		{
			name:    "missing directory rejected",
			content: "installations:\n  - vendor: eclipse\n",
			wantErr: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromReader(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestInstallationConfig_Resolve(t *testing.T) {
	inst := &InstallationConfig{
		Vendor:       "eclipse",
		Architecture: "x64",
		Directory:    "jdk/${JU_CONFIG_VERSION}",
		Type:         "jdk",
		Version:      "17",
	}

	for name, expected := range map[string]string{
		"JU_CONFIG_ARCH":      "x64",
		"JU_CONFIG_DIRECTORY": "jdk/${JU_CONFIG_VERSION}",
		"JU_CONFIG_TYPE":      "jdk",
		"JU_CONFIG_VENDOR":    "eclipse",
		"JU_CONFIG_VERSION":   "17",
	} {
		value, err := inst.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, expected, value)
	}

	_, err := inst.Resolve("JU_CONFIG_UNKNOWN")
	assert.Error(t, err)
}

func TestInstallationConfig_ExpandDirectory(t *testing.T) {
	inst := &InstallationConfig{
		Vendor:       "eclipse",
		Architecture: "x64",
		Directory:    "${JU_CONFIG_ARCH}/${JU_CONFIG_TYPE}/${JU_CONFIG_VENDOR}/${JU_CONFIG_VERSION}/${JU_OS}/${JU_UNSUPPORTED}",
		Type:         "jdk",
		Version:      "17",
	}

	expected := "x64/jdk/eclipse/17/" + platform.HostOS() + "/${JU_UNSUPPORTED}"
	assert.Equal(t, expected, inst.ExpandDirectory())
}

func TestInstallationConfig_ExpandDirectoryEnv(t *testing.T) {
	t.Setenv("JAVUP_TEST_BASE", "/opt/java")
	inst := &InstallationConfig{Directory: "${env.JAVUP_TEST_BASE}/21"}
	assert.Equal(t, "/opt/java/21", inst.ExpandDirectory())
}

func TestInstallationConfig_TargetDir(t *testing.T) {
	base := t.TempDir()

	t.Run("relative joins base", func(t *testing.T) {
		inst := &InstallationConfig{Directory: "jdk/21"}
		assert.Equal(t, filepath.Join(base, "jdk", "21"), inst.TargetDir(base))
	})

	t.Run("absolute wins", func(t *testing.T) {
		abs := filepath.Join(base, "elsewhere")
		inst := &InstallationConfig{Directory: abs}
		assert.Equal(t, abs, inst.TargetDir(filepath.Join(base, "unused")))
	})
}
