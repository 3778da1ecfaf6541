package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKeychainctlCLI performs an integration test of the keychainctl binary
func TestKeychainctlCLI(t *testing.T) {
	// Skip if not running in CI environment
	if os.Getenv("CI") != "true" {
		t.Skip("Skipping integration test outside of CI environment")
	}

	binPath := filepath.Join("..", "bin", "keychainctl")
	if _, err := os.Stat(binPath); os.IsNotExist(err) {
		buildCmd := exec.Command("go", "build", "-o", binPath, "../cmd/keychainctl")
		output, err := buildCmd.CombinedOutput()
		require.NoError(t, err, "Failed to build keychainctl binary: %s", output)
	}

	tmpDir := t.TempDir()
	global := []string{
		"--config", filepath.Join(tmpDir, "keychain.yaml"),
		"--backend", "sqlite",
		"--db", filepath.Join(tmpDir, "keys.db"),
		"--seal", "none",
	}
	const hexKey = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"

	testCases := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, output []byte)
	}{
		{
			name: "Put key",
			args: []string{"put", "--hex", hexKey, "sk-key-encryption-key"},
			check: func(t *testing.T, output []byte) {
				assert.Contains(t, string(output), "stored", "Put output should indicate success")
			},
		},
		{
			name:    "Put again is refused",
			args:    []string{"put", "sk-key-encryption-key"},
			wantErr: true,
		},
		{
			name: "Reveal key",
			args: []string{"get", "--reveal", "sk-key-encryption-key"},
			check: func(t *testing.T, output []byte) {
				assert.Equal(t, hexKey+"\n", string(output), "Get output should be the stored key")
			},
		},
		{
			name: "Delete key",
			args: []string{"delete", "sk-key-encryption-key"},
		},
		{
			name: "Delete again",
			args: []string{"delete", "sk-key-encryption-key"},
		},
		{
			name:    "Get after delete",
			args:    []string{"get", "sk-key-encryption-key"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := exec.Command(binPath, append(global, tc.args...)...)
			output, err := cmd.Output()

			if tc.wantErr {
				assert.Error(t, err, "Expected error but got none")
			} else {
				assert.NoError(t, err, "Unexpected error: %v\nOutput: %s", err, output)
			}

			if tc.check != nil {
				tc.check(t, output)
			}
		})
	}
}
