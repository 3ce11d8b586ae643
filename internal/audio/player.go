// Package audio turns presentation lifecycle events into sound playback
// commands and provides the playback backends.
package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// Player is the playback capability the coordinator drives. Playback is keyed
// by an opaque id, so two ids playing the same sound reference do not affect
// each other. Play and Stop are fire-and-forget from the frame loop's
// perspective; implementations must not block on audio completion.
type Player interface {
	// Play starts the referenced sound under id, replacing any sound that
	// id is already playing. A loop plays until stopped.
	Play(id, ref string, loop bool) error

	// Stop halts the id's sound if it is playing.
	Stop(id string)

	// IsPlaying reports whether the id's sound is still audible.
	IsPlaying(id string) bool

	// Close stops all playback and releases resources.
	Close()
}

// DefaultPlayerCommand is the external player binary used by ExecPlayer.
const DefaultPlayerCommand = "ffplay"

// ExecPlayer plays sounds by spawning an external player process per playback
// id. One-shot processes exit on their own; loops run until killed.
type ExecPlayer struct {
	command string
	baseDir string
	mu      sync.Mutex
	procs   map[string]*exec.Cmd
}

// NewExecPlayer creates an ExecPlayer resolving relative sound references
// against baseDir. An empty baseDir leaves references untouched.
func NewExecPlayer(baseDir string) *ExecPlayer {
	return &ExecPlayer{
		command: DefaultPlayerCommand,
		baseDir: baseDir,
		procs:   make(map[string]*exec.Cmd),
	}
}

// SetCommand overrides the player binary.
func (p *ExecPlayer) SetCommand(command string) {
	if command == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.command = command
}

// Play starts playback of ref under id, replacing any process the id is
// already running.
func (p *ExecPlayer) Play(id, ref string, loop bool) error {
	path := ref
	if p.baseDir != "" && !filepath.IsAbs(ref) {
		path = filepath.Join(p.baseDir, ref)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sound %q: %w", ref, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked(id)

	args := []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	if loop {
		args = append(args, "-loop", "0")
	}
	args = append(args, path)

	cmd := exec.Command(p.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("play %q: %w", ref, err)
	}
	p.procs[id] = cmd

	// Reap the process and forget it once it exits on its own.
	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.procs[id] == cmd {
			delete(p.procs, id)
		}
		p.mu.Unlock()
	}()

	return nil
}

// Stop kills the process playing under id, if any.
func (p *ExecPlayer) Stop(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killLocked(id)
}

// IsPlaying reports whether a player process for id is still running.
func (p *ExecPlayer) IsPlaying(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.procs[id]
	return ok
}

// Close stops every running sound.
func (p *ExecPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.procs {
		p.killLocked(id)
	}
}

func (p *ExecPlayer) killLocked(id string) {
	cmd, ok := p.procs[id]
	if !ok {
		return
	}
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
	delete(p.procs, id)
}
