// ABOUTME: Confirmation sounds played on the current default playback endpoint.
// ABOUTME: Uses malgo (miniaudio bindings) for output and beep/go-audio for tones and decoding.

package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/777genius/audiodevice/internal/logging"
)

const (
	chimeRate = beep.SampleRate(44100)

	playbackTimeout = 30 * time.Second
)

// pcm is interleaved signed 16-bit audio.
type pcm struct {
	samples    []int16
	sampleRate uint32
	channels   int
}

func (p pcm) bytes() []byte {
	out := make([]byte, len(p.samples)*2)
	for i, s := range p.samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func (p pcm) scale(volume float64) {
	if volume >= 1.0 {
		return
	}
	for i := range p.samples {
		p.samples[i] = int16(float64(p.samples[i]) * volume)
	}
}

// Player plays sounds on whatever endpoint is the default for playback when
// Play or Chime is called.
type Player struct {
	ctx    *malgo.AllocatedContext
	volume float64
	mu     sync.Mutex
}

// NewPlayer creates a player. volume is clamped to [0, 1].
func NewPlayer(volume float64) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return &Player{ctx: ctx, volume: volume}, nil
}

// Chime plays a short rising two-tone chime.
func (p *Player) Chime() error {
	sound, err := chime()
	if err != nil {
		return fmt.Errorf("failed to generate chime: %w", err)
	}
	return p.play(sound, "chime")
}

// Play decodes and plays an mp3, wav, flac, ogg or aiff file.
func (p *Player) Play(soundPath string) error {
	if _, err := os.Stat(soundPath); os.IsNotExist(err) {
		return fmt.Errorf("sound file not found: %s", soundPath)
	}

	sound, err := decodeFile(soundPath)
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	return p.play(sound, soundPath)
}

// Close releases the audio context.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}

func (p *Player) play(sound pcm, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return fmt.Errorf("player is closed")
	}

	sound.scale(p.volume)
	data := sound.bytes()

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(sound.channels)
	cfg.SampleRate = sound.sampleRate
	cfg.PeriodSizeInFrames = 4096
	cfg.Periods = 4

	var pos int
	done := make(chan struct{})
	var doneOnce sync.Once

	onData := func(out, _ []byte, frameCount uint32) {
		n := int(frameCount) * sound.channels * 2
		if pos+n > len(data) {
			n = len(data) - pos
		}
		if n > 0 {
			copy(out, data[pos:pos+n])
			pos += n
		}
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		if pos >= len(data) {
			doneOnce.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		return fmt.Errorf("failed to init audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	select {
	case <-done:
		// let the device drain its buffer
		time.Sleep(200 * time.Millisecond)
		logging.Debug("Playback completed: %s", label)
	case <-time.After(playbackTimeout):
		logging.Warn("Playback timeout: %s", label)
	}

	_ = device.Stop()
	return nil
}

func chime() (pcm, error) {
	low, err := generators.SineTone(chimeRate, 880)
	if err != nil {
		return pcm{}, err
	}
	high, err := generators.SineTone(chimeRate, 1318.5)
	if err != nil {
		return pcm{}, err
	}

	s := beep.Seq(
		beep.Take(chimeRate.N(120*time.Millisecond), low),
		beep.Take(chimeRate.N(180*time.Millisecond), high),
	)
	return streamToPCM(s, chimeRate, 2), nil
}

type decoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

func decodeFile(soundPath string) (pcm, error) {
	f, err := os.Open(soundPath)
	if err != nil {
		return pcm{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(soundPath))
	if ext == ".aiff" || ext == ".aif" {
		return decodeAIFF(f)
	}

	decode, ok := decoders[ext]
	if !ok {
		return pcm{}, fmt.Errorf("unsupported audio format: %s", ext)
	}

	streamer, format, err := decode(f)
	if err != nil {
		return pcm{}, err
	}
	defer streamer.Close()

	return streamToPCM(streamer, format.SampleRate, format.NumChannels), nil
}

func decodeAIFF(f *os.File) (pcm, error) {
	d := aiff.NewDecoder(f)
	if !d.IsValidFile() {
		return pcm{}, fmt.Errorf("invalid AIFF file")
	}
	d.ReadInfo()

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("failed to read AIFF data: %w", err)
	}

	return pcm{
		samples:    toInt16(buf, int(d.BitDepth)),
		sampleRate: uint32(d.SampleRate),
		channels:   int(d.NumChans),
	}, nil
}

// streamToPCM drains s, keeping the left channel only when channels is 1.
func streamToPCM(s beep.Streamer, rate beep.SampleRate, channels int) pcm {
	var out []int16
	buf := make([][2]float64, 512)

	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, int16(buf[i][0]*32767))
			if channels >= 2 {
				out = append(out, int16(buf[i][1]*32767))
			}
		}
		if !ok || n == 0 {
			break
		}
	}

	if channels > 2 {
		channels = 2
	}
	return pcm{samples: out, sampleRate: uint32(rate), channels: channels}
}

// toInt16 rescales samples of the given bit depth to 16 bits.
func toInt16(buf *goaudio.IntBuffer, bitDepth int) []int16 {
	shift := 0
	switch bitDepth {
	case 8:
		shift = -8
	case 24:
		shift = 8
	case 32:
		shift = 16
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			samples[i] = int16(v >> shift)
		case shift < 0:
			samples[i] = int16(v << -shift)
		default:
			samples[i] = int16(v)
		}
	}
	return samples
}
