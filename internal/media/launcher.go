// Package media hands article links and images to external programs.
package media

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/validation"
)

type Launcher struct {
	defs          *Definitions
	goos          string
	defaultOpener string
	override      string
	validator     *validation.URLValidator
	lookPath      func(string) (string, error)
	start         func(*exec.Cmd) error
}

type Option func(*Launcher)

// WithPlatform pretends to run on goos.
func WithPlatform(goos string) Option {
	return func(l *Launcher) { l.goos = goos }
}

// WithLookPath replaces exec.LookPath when probing for viewers.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(l *Launcher) { l.lookPath = fn }
}

// WithStarter replaces how commands are started.
func WithStarter(fn func(*exec.Cmd) error) Option {
	return func(l *Launcher) { l.start = fn }
}

// WithDefinitions replaces the loaded opener definitions.
func WithDefinitions(defs *Definitions) Option {
	return func(l *Launcher) { l.defs = defs }
}

func NewLauncher(cfg *config.Config, opts ...Option) *Launcher {
	l := &Launcher{
		goos:      runtime.GOOS,
		validator: validation.NewLinkValidator(),
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
	if cfg != nil {
		l.override = cfg.Opener.Command
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.defs == nil {
		defs, err := LoadDefinitions()
		if err != nil {
			debuglog.Warnf("opener definitions unavailable, using built-ins: %v", err)
			defs, _ = ParseDefinitions(openersTOML)
		}
		l.defs = defs
	}

	l.defaultOpener = l.override
	if l.defaultOpener == "" {
		l.defaultOpener = l.defs.DefaultOpener(l.goos)
	}
	return l
}

// DefaultOpener is the program used for ordinary links.
func (l *Launcher) DefaultOpener() string {
	return l.defaultOpener
}

// Command builds the command that would open rawURL without starting it.
func (l *Launcher) Command(rawURL string) (*exec.Cmd, error) {
	target, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	program := l.defaultOpener
	kind := l.defs.DetectType(target)
	if l.override == "" {
		switch kind {
		case TypeImage:
			program = l.firstAvailable(l.defs.Image.Viewers, program)
		case TypeVideo:
			program = l.firstAvailable(l.defs.Video.Viewers, program)
		}
	}

	args, err := l.defs.Args(program, l.goos)
	if err != nil {
		debuglog.Warnf("%v, falling back to %s", err, l.defaultOpener)
		program = l.defaultOpener
		args, _ = l.defs.Args(program, l.goos)
	}
	args = append(args, target)

	debuglog.WithFields(map[string]any{"program": program, "type": kind.String()}).Debugf("open %s", target)
	return exec.Command(program, args...), nil
}

// Open starts the external program for rawURL and returns without waiting.
func (l *Launcher) Open(rawURL string) error {
	cmd, err := l.Command(rawURL)
	if err != nil {
		return err
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	return nil
}

func (l *Launcher) firstAvailable(candidates []string, fallback string) string {
	for _, c := range candidates {
		if _, err := l.lookPath(c); err == nil {
			return c
		}
	}
	return fallback
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
