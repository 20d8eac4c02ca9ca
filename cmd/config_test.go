package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestInitConfig_LoadsDotEnv(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "gravitas-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	envFile := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envFile, []byte("GRAVITAS_POLICY_MAX_RETRIES_PER_STEP=5\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("GRAVITAS_POLICY_MAX_RETRIES_PER_STEP")
		viper.Reset()
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	InitConfig()

	if got := viper.GetInt("policy.max_retries_per_step"); got != 5 {
		t.Errorf("policy.max_retries_per_step = %d, want 5 from .env", got)
	}
}

func TestInitConfig_DefaultsWithoutDotEnv(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "gravitas-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		viper.Reset()
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	InitConfig()

	if got := viper.GetInt("policy.identical_failure_threshold"); got != 2 {
		t.Errorf("policy.identical_failure_threshold = %d, want default 2", got)
	}
}
