// Package chime plays a short alert when a step timer runs out.
package chime

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

const (
	// SampleRate is the playback rate of generated tones.
	SampleRate = 44100
	// ChannelCount is mono.
	ChannelCount = 1

	toneLength = 180 * time.Millisecond
	fadeLength = 10 * time.Millisecond
	amplitude  = 0.3
)

// Compile-time interface checks.
var (
	_ domain.Alarm = (*Player)(nil)
	_ domain.Alarm = NoOp{}
)

// Player rings a two-tone chime through the system audio device.
type Player struct {
	ctx     *oto.Context
	log     *logger.Logger
	pcm     []byte
	ringing atomic.Bool
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	pcm := append(Tone(880, toneLength, SampleRate), Tone(660, toneLength, SampleRate)...)

	log.Debug("chime initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log, pcm: pcm}, nil
}

// Ring starts the chime and returns immediately. A ring that arrives while
// the previous one is still playing is dropped.
func (p *Player) Ring() {
	if !p.ringing.CompareAndSwap(false, true) {
		p.log.Debug("chime: already ringing")
		return
	}
	go p.play()
}

func (p *Player) play() {
	defer p.ringing.Store(false)

	player := p.ctx.NewPlayer(bytes.NewReader(p.pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := player.Close(); err != nil {
		p.log.Warn("chime: closing player: %v", err)
	}
}

// NoOp is a silent alarm, used when audio is disabled or unavailable.
type NoOp struct{}

// Ring does nothing.
func (NoOp) Ring() {}

// Tone renders a sine wave as mono signed 16-bit little-endian PCM. The
// edges are faded to avoid clicks.
func Tone(freq float64, dur time.Duration, rate int) []byte {
	n := int(dur.Seconds() * float64(rate))
	if n <= 0 || rate <= 0 {
		return nil
	}
	fade := int(fadeLength.Seconds() * float64(rate))
	if fade > n/2 {
		fade = n / 2
	}

	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		gain := amplitude
		switch {
		case i < fade:
			gain *= float64(i) / float64(fade)
		case i >= n-fade:
			gain *= float64(n-1-i) / float64(fade)
		}
		s := math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*gain*math.MaxInt16)))
	}
	return out
}
