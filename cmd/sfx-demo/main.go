// sfx-demo is an interactive playground for the sound pool: digit
// keys fire sounds, placement modes exercise fixed and follow
// tracking, and the status pane shows live pool counters. Without a
// bank file it synthesizes a small procedural catalog.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/baratgabor/soundpool"
	"github.com/baratgabor/soundpool/bank"
	"github.com/baratgabor/soundpool/beepout"
	"github.com/baratgabor/soundpool/spatial"
)

const (
	tickMs        = 16
	maxEventLines = 6
	orbitRadius   = 8.0
	orbitSpeed    = 1.5 // radians per second
	debounce      = 300 * time.Millisecond
)

var (
	bankFile  string
	watchBank bool
)

func init() {
	flag.StringVar(&bankFile, "bank", "", "bank file to load (optional)")
	flag.BoolVar(&watchBank, "watch", false, "reload the bank when it changes")
}

// placement selects where played sounds are placed
type placement int

const (
	placePlain placement = iota
	placeFixed
	placeFollow
)

func (p placement) String() string {
	switch p {
	case placeFixed:
		return "fixed"
	case placeFollow:
		return "follow"
	default:
		return "plain"
	}
}

// soundKey maps a keyboard rune to a sound type
type soundKey struct {
	key   rune
	sound soundpool.SoundType
}

// eventLog keeps the most recent diagnostics for the status pane
type eventLog struct {
	soundpool.NopObserver
	mu    sync.Mutex
	lines []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	if len(l.lines) > maxEventLines {
		l.lines = l.lines[len(l.lines)-maxEventLines:]
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *eventLog) RequestRejected(st soundpool.SoundType, reason error) {
	l.add("rejected %q: %v", st, reason)
}

func (l *eventLog) PoolExhausted(st soundpool.SoundType) {
	l.add("pool exhausted on %q", st)
}

func (l *eventLog) PoolGrown(size int) {
	l.add("pool grown to %d", size)
}

func (l *eventLog) MissingSounds(sounds []soundpool.SoundType) {
	l.add("missing variants: %v", sounds)
}

func (l *eventLog) LateInit() {
	l.add("late init")
}

// orbitTarget circles the origin, giving follow mode something to chase
type orbitTarget struct {
	mu    sync.Mutex
	angle float64
	pos   spatial.Vec3
}

func (t *orbitTarget) advance(dt float64) {
	t.mu.Lock()
	t.angle += dt * orbitSpeed
	t.pos = spatial.Vec3{
		X: orbitRadius * math.Cos(t.angle),
		Z: orbitRadius * math.Sin(t.angle),
	}
	t.mu.Unlock()
}

func (t *orbitTarget) Position() spatial.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

type demo struct {
	screen  tcell.Screen
	manager *soundpool.Manager
	factory *beepout.Factory
	loader  *bank.Loader
	watcher *bank.Watcher
	events  *eventLog
	target  *orbitTarget

	width, height int
	keys          []soundKey
	mode          placement
	lastHandle    *soundpool.Handle
	audioReady    bool
}

func newDemo() (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	factory := beepout.NewFactory()
	events := &eventLog{}

	cfg := soundpool.ConfigFromEnv()
	var variants []soundpool.SoundVariant
	var loader *bank.Loader
	if bankFile != "" {
		loader = bank.NewLoader(factory.LoadClipFile)
		b, err := loader.Load(bankFile)
		if err != nil {
			screen.Fini()
			return nil, err
		}
		variants = b.Variants
		cfg = b.Config
		for _, loadErr := range b.Errors {
			events.add("load: %v", loadErr)
		}
	} else {
		variants = builtinVariants(factory)
	}

	mgr := soundpool.New(factory, variants, cfg)
	mgr.SetObserver(events)

	d := &demo{
		screen:  screen,
		manager: mgr,
		factory: factory,
		loader:  loader,
		events:  events,
		target:  &orbitTarget{},
	}
	d.width, d.height = screen.Size()

	// Audio failure is non-fatal, the pool diagnostics still show
	if err := mgr.Init(); err != nil {
		events.add("audio unavailable: %v", err)
	} else {
		d.audioReady = factory.Init() == nil
	}
	d.keys = bindKeys(mgr.Sounds())

	if watchBank && bankFile != "" {
		w, err := bank.Watch(bankFile, debounce, d.reloadBank)
		if err != nil {
			events.add("watch failed: %v", err)
		} else {
			d.watcher = w
		}
	}

	return d, nil
}

// reloadBank runs on the watcher goroutine; the key rebind is handed
// to the event loop via an interrupt event
func (d *demo) reloadBank() {
	b, err := d.loader.Load(bankFile)
	if err != nil {
		d.events.add("reload failed: %v", err)
		return
	}
	d.manager.Rebuild(b.Variants)
	d.events.add("bank reloaded")
	_ = d.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// builtinVariants synthesizes a small demo catalog so the sandbox
// runs without asset files
func builtinVariants(f *beepout.Factory) []soundpool.SoundVariant {
	return []soundpool.SoundVariant{
		{Sound: "coin", Clip: f.ToneClip(988, 90*time.Millisecond), Pitch: soundpool.Range{Low: 0.95, High: 1.1}},
		{Sound: "coin", Clip: f.ToneClip(1319, 90*time.Millisecond), Pitch: soundpool.Range{Low: 0.95, High: 1.1}},
		{Sound: "laser", Clip: f.ToneClip(1760, 120*time.Millisecond), Pitch: soundpool.Range{Low: 0.8, High: 1.2}},
		{Sound: "thud", Clip: f.ToneClip(110, 200*time.Millisecond), Volume: soundpool.Range{Low: 0.7, High: 1.0}},
		{Sound: "alarm", Clip: f.ToneClip(440, 350*time.Millisecond)},
		{Sound: "chirp", Clip: f.ToneClip(2093, 60*time.Millisecond), Pitch: soundpool.Range{Low: 0.9, High: 1.6}},
	}
}

// bindKeys assigns digit keys to the first nine catalog sounds
func bindKeys(sounds []soundpool.SoundType) []soundKey {
	keys := make([]soundKey, 0, 9)
	for i, st := range sounds {
		if i >= 9 {
			break
		}
		keys = append(keys, soundKey{key: rune('1' + i), sound: st})
	}
	return keys
}

func (d *demo) soundForKey(r rune) (soundpool.SoundType, bool) {
	for _, sk := range d.keys {
		if sk.key == r {
			return sk.sound, true
		}
	}
	return soundpool.SoundNone, false
}

func (d *demo) play(st soundpool.SoundType) {
	req := soundpool.Request{Sound: st}
	switch d.mode {
	case placeFixed:
		pos := d.target.Position()
		req.At = &pos
	case placeFollow:
		req.Follow = d.target
	}

	h, err := d.manager.Play(req)
	if err != nil {
		return
	}
	d.lastHandle = h
}

// errorBlip gives short feedback for unmapped keys, outside the pool
func (d *demo) errorBlip() {
	if !d.audioReady {
		return
	}
	sine, _ := generators.SineTone(d.factory.SampleRate(), 220)
	duration := d.factory.SampleRate().N(60 * time.Millisecond)
	speaker.Play(beep.Take(duration, sine))
}

func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch r := ev.Rune(); r {
		case 'q':
			return false
		case 'm':
			d.manager.ToggleMute()
		case '+', '=':
			d.manager.SetMasterVolume(d.manager.MasterVolume() + 0.1)
		case '-':
			d.manager.SetMasterVolume(d.manager.MasterVolume() - 0.1)
		case 'p':
			d.mode = (d.mode + 1) % 3
		case 's':
			if d.lastHandle != nil {
				_ = d.lastHandle.Stop()
				d.lastHandle = nil
			}
		default:
			if st, ok := d.soundForKey(r); ok {
				d.play(st)
			} else {
				d.errorBlip()
			}
		}

	case *tcell.EventResize:
		d.width, d.height = d.screen.Size()
		d.screen.Sync()

	case *tcell.EventInterrupt:
		d.keys = bindKeys(d.manager.Sounds())
	}

	return true
}

func (d *demo) draw() {
	d.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	normal := tcell.StyleDefault
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	accent := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	d.drawText(1, 0, title, "sfx-demo")

	mute := ""
	if d.manager.IsMuted() {
		mute = "  [MUTED]"
	}
	d.drawText(1, 1, normal, fmt.Sprintf("volume %.1f  placement %s%s", d.manager.MasterVolume(), d.mode, mute))

	row := 3
	for _, sk := range d.keys {
		d.drawText(1, row, accent, fmt.Sprintf("%c", sk.key))
		d.drawText(4, row, normal, string(sk.sound))
		row++
	}
	if len(d.keys) == 0 {
		d.drawText(1, row, dim, "catalog is empty")
		row++
	}

	s := d.manager.Stats()
	row++
	d.drawText(1, row, normal, fmt.Sprintf("pool %d/%d busy  played %d  done %d  rejected %d  grown %d  waits %d",
		s.PoolSize-s.IdleCount, s.PoolSize, s.Played, s.Completed, s.Rejected, s.Grown, s.ExtraWaits))
	row++

	pos := d.target.Position()
	d.drawText(1, row, dim, fmt.Sprintf("emitter (%5.1f, %5.1f, %5.1f)", pos.X, pos.Y, pos.Z))
	row += 2

	for _, line := range d.events.snapshot() {
		d.drawText(1, row, dim, line)
		row++
	}

	help := "[keys] play  [p] placement  [s] stop last  [m] mute  [+/-] volume  [q] quit"
	d.drawText(1, d.height-1, dim, help)

	d.screen.Show()
}

func (d *demo) drawText(x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		d.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func (d *demo) run() {
	ticker := time.NewTicker(tickMs * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- d.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return
			}

		case <-ticker.C:
			d.target.advance(float64(tickMs) / 1000.0)
			d.draw()
		}
	}
}

func (d *demo) cleanup() {
	if d.watcher != nil {
		d.watcher.Close()
	}
	d.manager.Close()
	d.screen.Fini()
}

func main() {
	flag.Parse()

	d, err := newDemo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer d.cleanup()

	d.run()
}
