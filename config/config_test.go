package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
)

func TestLoadDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	dir := t.TempDir()
	path := filepath.Join(dir, "host.toml")
	if err := os.WriteFile(path, []byte("script = [\"x = 1\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StackSize != engine.DefaultStackSize {
		t.Errorf("stack_size default not applied: %d", cfg.StackSize)
	}
	if len(cfg.Script) != 1 || cfg.Script[0] != "x = 1" {
		t.Errorf("scripts not loaded: %v", cfg.Script)
	}
}

func TestLoadOverrides(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	dir := t.TempDir()
	path := filepath.Join(dir, "host.toml")
	src := "stack_size = 65536\nresolve_timeout = \"5s\"\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StackSize != 65536 {
		t.Errorf("stack_size: got %d", cfg.StackSize)
	}
	if cfg.ResolveTimeout != "5s" {
		t.Errorf("resolve_timeout: got %q", cfg.ResolveTimeout)
	}
}

func TestApplyRunsInlineScripts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	cfg := Default()
	cfg.Script = []string{"answer = 6 * 7", "greeting = \"hi\""}
	setup, err := cfg.Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	defer setup.Close()
	if v, _ := setup.Namespace.Get("answer"); v != int64(42) {
		t.Errorf("answer = %s", interp.FormatValue(v))
	}
	if v, _ := setup.Namespace.Get("greeting"); v != "hi" {
		t.Errorf("greeting = %s", interp.FormatValue(v))
	}
}

func TestApplyIncludesGlob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.script"), []byte("a = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.script"), []byte("b = a + 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.Include = []string{filepath.Join(dir, "*.script")}
	setup, err := cfg.Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	defer setup.Close()
	if v, _ := setup.Namespace.Get("b"); v != int64(2) {
		t.Errorf("included scripts did not run in order: b = %s", interp.FormatValue(v))
	}
}

func TestApplyMissingIncludeFails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	cfg := Default()
	cfg.Include = []string{filepath.Join(t.TempDir(), "absent.script")}
	if _, err := cfg.Apply(); err == nil {
		t.Error("expected error for missing include file")
	}
}

func TestApplyCompileErrorIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	cfg := Default()
	cfg.Script = []string{"if {"}
	if _, err := cfg.Apply(); err == nil {
		t.Error("expected compile error to abort apply")
	}
}

func TestApplyBlockingCallIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	cfg := Default()
	cfg.Script = []string{"sleep(10)"}
	if _, err := cfg.Apply(); err == nil {
		t.Error("expected blocking call at configuration time to abort apply")
	}
}

func TestCompileCached(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.config")
	defer teardown()
	setup, err := Default().Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	defer setup.Close()
	first, err := setup.CompileCached("x = 1", "one.conf")
	if err != nil {
		t.Fatal(err)
	}
	second, err := setup.CompileCached("x = 1", "two.conf")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical source compiled twice")
	}
	other, err := setup.CompileCached("x = 2", "three.conf")
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("distinct source shared a cache entry")
	}
}
