package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a config pointing at a fresh SQLite file and returns
// its path. extra is appended verbatim.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	for _, k := range []string{"MATCHYARD_DATABASE_DSN", "MATCHYARD_JWT_SECRET", "MATCHYARD_SLACK_BOT_TOKEN", "MATCHYARD_DISCORD_BOT_TOKEN"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "matchyard.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite
  name: %s
  connect_attempts: 1
log:
  level: error
  format: json
%s`, filepath.Join(dir, "market.db"), extra)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
