package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const defaultCommandTimeout = 30 * time.Second

// CommandSpeaker synthesizes speech with an external TTS engine and plays the
// result with an external player. Only one utterance plays at a time; requests
// arriving while busy are dropped.
type CommandSpeaker struct {
	Engine  string
	Player  string
	Timeout time.Duration

	busy chan struct{}
	run  func(ctx context.Context, name string, args ...string) error
}

var _ Speaker = (*CommandSpeaker)(nil)

// NewCommandSpeaker returns a speaker running engine (edge-tts compatible) and player (ffplay compatible).
func NewCommandSpeaker(engine, player string, timeout time.Duration) *CommandSpeaker {
	if engine == "" {
		engine = "edge-tts"
	}
	if player == "" {
		player = "ffplay"
	}
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &CommandSpeaker{
		Engine:  engine,
		Player:  player,
		Timeout: timeout,
		busy:    make(chan struct{}, 1),
		run:     runCommand,
	}
}

// Speak implements Speaker.
func (c *CommandSpeaker) Speak(u Utterance) {
	if u.Text == "" {
		return
	}
	select {
	case c.busy <- struct{}{}:
	default:
		slog.Debug("Speech busy, dropping utterance", "user_id", u.UserID)
		return
	}

	go func() {
		defer func() { <-c.busy }()
		if err := c.play(u); err != nil {
			slog.Warn("Speech playback failed", "engine", c.Engine, "error", err)
		}
	}()
}

func (c *CommandSpeaker) play(u Utterance) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "voc-speech-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	media := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(media) }()

	voice := u.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	if err := c.run(ctx, c.Engine, "--text", u.Text, "--voice", voice, "--write-media", media); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := c.run(ctx, c.Player, "-autoexit", "-nodisp", media); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, truncate(out, 256))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
