package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gonewx/partigon/pkg/animation"
	"github.com/gonewx/partigon/pkg/config"
	"github.com/gonewx/partigon/pkg/scheduler"
)

// Session plays one preset at a time into a sink.
type Session struct {
	presets   *config.PresetManager
	sink      animation.Sink
	scheduler scheduler.Scheduler

	mu     sync.Mutex
	name   string
	player animation.Player
	cancel context.CancelFunc
	paused bool
	plays  int
}

// NewSession creates a session. A nil scheduler gives every preset its own
// real time ticker.
func NewSession(presets *config.PresetManager, sink animation.Sink, s scheduler.Scheduler) *Session {
	return &Session{presets: presets, sink: sink, scheduler: s}
}

// Play stops the current preset and starts name from its first frame.
func (s *Session) Play(name string) error {
	preset, err := s.presets.Get(name)
	if err != nil {
		return err
	}
	player, err := preset.Build(s.sink, s.scheduler)
	if err != nil {
		return fmt.Errorf("build preset %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	ctx, cancel := context.WithCancel(context.Background())
	s.name, s.player, s.cancel, s.paused = name, player, cancel, false
	s.plays++
	player.Start(ctx)
	log.Printf("[Session] Playing preset %s", name)
	return nil
}

// Restart plays the current preset again from its first frame.
func (s *Session) Restart() error {
	s.mu.Lock()
	name := s.name
	s.mu.Unlock()
	if name == "" {
		return nil
	}
	return s.Play(name)
}

// TogglePause stops or resumes the current preset and returns whether it is
// now paused.
func (s *Session) TogglePause() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return false, nil
	}
	if s.paused {
		if err := s.player.Resume(nil); err != nil {
			return true, fmt.Errorf("resume %s: %w", s.name, err)
		}
		s.paused = false
		return false, nil
	}
	s.player.Stop()
	s.paused = true
	return true, nil
}

// Paused reports whether the current preset was paused by TogglePause.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Finished reports whether the current preset stopped on its own.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil && !s.paused && !s.player.Running()
}

// Name returns the current preset name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Plays returns how many times Play started a preset.
func (s *Session) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

// Close stops the current preset.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	s.player = nil
}

// stop must be called with s.mu held.
func (s *Session) stop() {
	if s.player != nil {
		s.player.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
