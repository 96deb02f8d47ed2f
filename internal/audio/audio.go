package audio

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// restartDelay paces restarts after the player command fails.
const restartDelay = time.Second

// runCommand plays the file once and returns when playback ends or ctx is cancelled.
var runCommand = func(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Player plays a sound file through an external command such as aplay.
type Player struct {
	command string
	file    string

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	playing bool
}

func NewPlayer(command, file string) *Player {
	return &Player{command: command, file: file}
}

// Play starts playback, restarting it if already playing. With loop the
// file repeats until Stop.
func (p *Player) Play(loop bool) {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.playing = true
	p.mu.Unlock()

	log.Debug().Str("file", p.file).Bool("loop", loop).Msg("Starting playback")
	go p.run(ctx, done, loop)
}

func (p *Player) run(ctx context.Context, done chan struct{}, loop bool) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		if p.done == done {
			p.playing = false
		}
		p.mu.Unlock()
	}()

	for {
		err := runCommand(ctx, p.command, p.file)
		if ctx.Err() != nil {
			return
		}
		if !loop {
			if err != nil {
				log.Error().Err(err).Str("command", p.command).Msg("Playback failed")
			}
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("command", p.command).Msg("Playback failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartDelay):
			}
		}
	}
}

// Stop ends playback and waits for the player command to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.playing = false
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debug().Str("file", p.file).Msg("Playback stopped")
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
