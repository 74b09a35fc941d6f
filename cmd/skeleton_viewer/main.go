// cmd/skeleton_viewer/main.go
// Interactive viewer for DragonBones skeleton projects.
//
// Usage:
//   go run ./cmd/skeleton_viewer --config=cmd/skeleton_viewer/config.yaml
//
// Keys:
//   Left/Right  switch unit
//   Up/Down     switch animation clip
//   Space       pause/unpause
//   S           toggle interpolation
//   R           restart the current clip

package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/dragonbones/internal/atlas"
	"github.com/decker502/dragonbones/pkg/config"
	"github.com/decker502/dragonbones/pkg/render"
	"github.com/decker502/dragonbones/pkg/skeleton"
)

var (
	configPath = flag.String("config", "cmd/skeleton_viewer/config.yaml", "viewer config file (配置文件路径)")
	verbose    = flag.Bool("verbose", false, "verbose logging")
)

// Game drives the viewer loop for one skeleton unit at a time.
type Game struct {
	cfg     *ViewerConfig
	skelCfg *config.Config
	prefs   *PrefsManager
	watcher *Watcher

	unitIndex int
	skel      *skeleton.Skeleton
	renderer  *render.Renderer
	clips     []string
	clipIndex int
	paused    bool
	dt        float64
}

// NewGame loads the configured units and restores the previous session's
// selection where possible.
func NewGame(cfg *ViewerConfig, skelCfg *config.Config, prefs *PrefsManager) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		skelCfg: skelCfg,
		prefs:   prefs,
		dt:      1.0 / float64(cfg.Playback.TPS),
	}

	// Restore the last selected unit, defaulting to the first.
	for i, unit := range cfg.Units {
		if unit.Name == prefs.Prefs().Unit {
			g.unitIndex = i
			break
		}
	}

	if err := g.loadUnit(g.unitIndex); err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(cfg.Units))
	for _, unit := range cfg.Units {
		dirs = append(dirs, unit.Dir)
	}
	watcher, err := NewWatcher(dirs...)
	if err != nil {
		log.Printf("[Viewer] Warning: hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	return g, nil
}

// loadUnit loads the skeleton and atlas for the given unit and starts
// its preferred clip.
func (g *Game) loadUnit(index int) error {
	unit := g.cfg.Units[index]

	skel, err := skeleton.LoadProjectDir(unit.Dir, g.skelCfg)
	if err != nil {
		return fmt.Errorf("failed to load unit %q: %w", unit.Name, err)
	}
	subtextures, err := atlas.LoadProjectDir(unit.Dir)
	if err != nil {
		return fmt.Errorf("failed to load atlas for unit %q: %w", unit.Name, err)
	}

	skel.SetScale(unit.Scale, unit.Scale)

	clips := skel.Animations().ClipNames()
	sort.Strings(clips)
	if len(clips) == 0 {
		return fmt.Errorf("unit %q has no animations", unit.Name)
	}

	// Prefer the saved clip, then the configured default, then the first.
	clipIndex := 0
	want := g.prefs.Prefs().Clip
	if want == "" {
		want = unit.DefaultAnimation
	}
	for i, name := range clips {
		if name == want {
			clipIndex = i
			break
		}
	}

	if err := skel.Run(clips[clipIndex], nil); err != nil {
		return fmt.Errorf("failed to start clip %q: %w", clips[clipIndex], err)
	}
	if err := skel.SetSmooth(g.prefs.Prefs().Smooth); err != nil {
		return err
	}

	g.unitIndex = index
	g.skel = skel
	g.renderer = render.NewRenderer(subtextures)
	g.clips = clips
	g.clipIndex = clipIndex
	g.paused = false

	if *verbose {
		log.Printf("[Viewer] Loaded unit %q: %d bones, %d slots, %d clips",
			unit.Name, len(skel.Bones()), len(skel.Slots()), len(clips))
	}
	return nil
}

// reloadCurrentUnit reloads the active unit in place, keeping the
// current clip selection when it still exists.
func (g *Game) reloadCurrentUnit() {
	keepClip := g.clips[g.clipIndex]
	g.prefs.Prefs().Clip = keepClip
	if err := g.loadUnit(g.unitIndex); err != nil {
		log.Printf("[Viewer] Reload failed: %v (keeping previous state)", err)
	} else {
		log.Printf("[Viewer] Reloaded unit %q", g.cfg.Units[g.unitIndex].Name)
	}
}

func (g *Game) switchUnit(delta int) {
	next := (g.unitIndex + delta + len(g.cfg.Units)) % len(g.cfg.Units)
	if next == g.unitIndex {
		return
	}
	g.prefs.Prefs().Unit = g.cfg.Units[next].Name
	g.prefs.Prefs().Clip = ""
	if err := g.loadUnit(next); err != nil {
		log.Printf("[Viewer] %v", err)
		return
	}
	g.savePrefs()
}

func (g *Game) switchClip(delta int) {
	next := (g.clipIndex + delta + len(g.clips)) % len(g.clips)
	if err := g.skel.Run(g.clips[next], nil); err != nil {
		log.Printf("[Viewer] %v", err)
		return
	}
	g.clipIndex = next
	g.paused = false
	_ = g.skel.SetSmooth(g.prefs.Prefs().Smooth)
	g.prefs.Prefs().Clip = g.clips[next]
	g.savePrefs()
}

func (g *Game) savePrefs() {
	if err := g.prefs.Save(); err != nil {
		log.Printf("[Viewer] Warning: %v", err)
	}
}

// Update handles input, hot reload, and advances the skeleton.
func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.switchUnit(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.switchUnit(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.switchClip(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.switchClip(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if cur := g.skel.Animations().Current(); cur != nil {
			if g.paused {
				cur.Unpause()
			} else {
				cur.Pause()
			}
			g.paused = !g.paused
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		p := g.prefs.Prefs()
		p.Smooth = !p.Smooth
		_ = g.skel.SetSmooth(p.Smooth)
		g.savePrefs()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if cur := g.skel.Animations().Current(); cur != nil {
			cur.Restart()
		}
	}

	g.skel.Update(g.dt)
	return nil
}

// pollWatcher reloads the active unit when its project directory has
// settled after a change. Edits to other units are dropped; they get
// loaded fresh when switched to anyway.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	if err := g.watcher.Err(); err != nil {
		log.Printf("[Viewer] Watch error: %v", err)
	}

	current := filepath.Clean(g.cfg.Units[g.unitIndex].Dir)
	for _, dir := range g.watcher.SettledDirs() {
		if *verbose {
			log.Printf("[Viewer] Changed: %s", dir)
		}
		if filepath.Clean(dir) == current {
			g.reloadCurrentUnit()
		}
	}
}

// Draw renders the current skeleton centered in the window with a
// status line in the corner.
func (g *Game) Draw(screen *ebiten.Image) {
	originX := float64(g.cfg.Window.Width) / 2
	originY := float64(g.cfg.Window.Height) * 0.75
	g.renderer.Draw(screen, g.skel, originX, originY)

	status := fmt.Sprintf("%s / %s", g.cfg.Units[g.unitIndex].Name, g.clips[g.clipIndex])
	if g.paused {
		status += " [paused]"
	}
	if !g.prefs.Prefs().Smooth {
		status += " [no interp]"
	}
	ebitenutil.DebugPrintAt(screen, status, 10, 10)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

func main() {
	flag.Parse()

	cfg, err := LoadViewerConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("✓ Loaded config: %d unit(s)", len(cfg.Units))

	skelCfg := config.Default()
	if cfg.Skeleton != "" {
		skelCfg, err = config.Load(cfg.Skeleton)
		if err != nil {
			log.Fatalf("Failed to load skeleton config: %v", err)
		}
		log.Printf("✓ Loaded skeleton config: %s", cfg.Skeleton)
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "skeleton_viewer"})
	if err != nil {
		log.Printf("Warning: preferences storage unavailable: %v", err)
		gdataManager = nil
	}
	prefs := NewPrefsManager(gdataManager)

	game, err := NewGame(cfg, skelCfg, prefs)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if game.watcher != nil {
			_ = game.watcher.Close()
		}
	}()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Playback.TPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
