package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cybermatrixco/nginx-python-module/builtins"
	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
	"github.com/cybermatrixco/nginx-python-module/reactor"
)

// Config describes a script host. The zero value is not usable; start from
// Default or Load.
type Config struct {
	// StackSize is the per-task stack budget in bytes.
	StackSize int `toml:"stack_size"`
	// ResolveTimeout bounds script-initiated name resolution, as a
	// duration string ("30s", "1m").
	ResolveTimeout string `toml:"resolve_timeout"`
	// Include lists script files to evaluate at configuration time.
	// Entries containing glob metacharacters are expanded.
	Include []string `toml:"include"`
	// Script lists inline scripts to evaluate at configuration time,
	// after the includes.
	Script []string `toml:"script"`
}

// Default returns the configuration applied when nothing is specified.
func Default() Config {
	return Config{
		StackSize:      engine.DefaultStackSize,
		ResolveTimeout: engine.DefaultResolveTimeout.String(),
	}
}

// Load reads a TOML configuration file. Unspecified fields keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.StackSize <= 0 {
		cfg.StackSize = engine.DefaultStackSize
	}
	return cfg, nil
}

// Setup is a wired script host: reactor, engine and a namespace with the
// builtins installed. Runtime tasks are created with NewTask; Close tears
// everything down.
type Setup struct {
	Reactor   *reactor.Reactor
	Engine    *engine.Engine
	Namespace *interp.Namespace

	cache map[string]*interp.Script
	tasks []*engine.Task
}

// Apply wires a Setup from the configuration and evaluates the configured
// scripts. A CompileError or a failed evaluation is fatal and aborts the
// apply; the partially built Setup is torn down before returning.
func (c Config) Apply() (*Setup, error) {
	resolveTimeout := engine.DefaultResolveTimeout
	if c.ResolveTimeout != "" {
		d, err := time.ParseDuration(c.ResolveTimeout)
		if err != nil {
			return nil, fmt.Errorf("resolve_timeout: %w", err)
		}
		resolveTimeout = d
	}
	r := reactor.New()
	e := engine.New(r,
		engine.WithStackSize(c.StackSize),
		engine.WithResolveTimeout(resolveTimeout),
	)
	ns := interp.NewNamespace()
	builtins.Install(e, ns)
	s := &Setup{
		Reactor:   r,
		Engine:    e,
		Namespace: ns,
		cache:     make(map[string]*interp.Script),
	}
	if err := s.evalConfigScripts(c); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// evalConfigScripts runs the configured includes and inline scripts
// synchronously in the setup's namespace.
func (s *Setup) evalConfigScripts(c Config) error {
	task := s.NewTask()
	for _, pattern := range c.Include {
		files, err := expandInclude(pattern)
		if err != nil {
			return err
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if err := s.evalSync(task, string(data), file); err != nil {
				return err
			}
		}
	}
	for i, src := range c.Script {
		origin := fmt.Sprintf("<script#%d>", i+1)
		if err := s.evalSync(task, src, origin); err != nil {
			return err
		}
	}
	return nil
}

func (s *Setup) evalSync(task *engine.Task, src, origin string) error {
	code, err := s.CompileCached(src, origin)
	if err != nil {
		return err
	}
	tracer().P("origin", origin).Debugf("evaluating configuration script")
	res := s.Engine.Eval(task, code, nil)
	if res.Kind != engine.ValueResult {
		return fmt.Errorf("%s: script evaluation failed", origin)
	}
	return nil
}

// expandInclude resolves one include entry to a file list. Entries without
// glob metacharacters name exactly one file, which must exist; a pattern
// matching nothing is not an error.
func expandInclude(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("include %q: %w", pattern, err)
	}
	return files, nil
}

// NewTask creates a runtime task in the setup's namespace. The task is
// tracked and torn down by Close; callers driving their own lifecycle call
// Task.Shutdown themselves, which makes the Close teardown a no-op for
// that task.
func (s *Setup) NewTask() *engine.Task {
	task := s.Engine.NewTask(s.Namespace)
	s.tasks = append(s.tasks, task)
	return task
}

// CompileCached compiles src, reusing an earlier compilation of identical
// source text. The origin label of the first compilation wins.
func (s *Setup) CompileCached(src, origin string) (*interp.Script, error) {
	key := interp.Fingerprint(src)
	if code, ok := s.cache[key]; ok && key != "" {
		tracer().P("origin", origin).Debugf("compile cache hit")
		return code, nil
	}
	code, err := interp.Compile(src, origin)
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.cache[key] = code
	}
	return code, nil
}

// Close terminates all tracked tasks and releases the namespace.
func (s *Setup) Close() {
	for _, task := range s.tasks {
		task.Shutdown()
	}
	s.tasks = nil
	if s.Namespace != nil {
		s.Namespace.Release()
		s.Namespace = nil
	}
}
