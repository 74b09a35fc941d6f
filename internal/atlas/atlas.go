// Package atlas loads DragonBones texture atlases: a `_tex.json` listing
// named subtexture regions plus the `_tex.png` sheet they are cropped from.
// Each subtexture becomes a shared *ebiten.Image sub-image with a center
// anchor, ready for slot rendering.
package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // sheet decoding
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// Subtexture is one cropped region of the atlas sheet.
type Subtexture struct {
	Name string

	// Frame* describe the original sprite bounds before the packer trimmed
	// transparent borders.
	FrameX      int
	FrameY      int
	FrameWidth  int
	FrameHeight int

	// Image is a sub-image of the shared atlas sheet; drawing it does not
	// copy pixels.
	Image *ebiten.Image

	// AnchorX and AnchorY are the center anchor in pixels, matching the
	// anchor convention slot rendering rotates and scales around.
	AnchorX int
	AnchorY int
}

// AtlasJSON is the root structure of a `_tex.json` file.
type AtlasJSON struct {
	ImagePath   string           `json:"imagePath"`
	SubTextures []SubtextureJSON `json:"SubTexture"`
}

// SubtextureJSON describes one packed region of the sheet.
type SubtextureJSON struct {
	Name        string `json:"name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FrameX      int    `json:"frameX"`
	FrameY      int    `json:"frameY"`
	FrameWidth  int    `json:"frameWidth"`
	FrameHeight int    `json:"frameHeight"`
}

// LoadFile loads an atlas from its JSON description and sheet image.
//
// Parameters:
//   - texturePath: Path to the `_tex.json` file
//   - imagePath: Path to the `_tex.png` sheet
//
// Returns:
//   - map[string]*Subtexture: Subtextures keyed by name
//   - error: Read, parse or decode error, or nil if successful
func LoadFile(texturePath, imagePath string) (map[string]*Subtexture, error) {
	data, err := os.ReadFile(texturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas file '%s': %w", texturePath, err)
	}

	var desc AtlasJSON
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse atlas JSON from '%s': %w", texturePath, err)
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas image '%s': %w", imagePath, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode atlas image '%s': %w", imagePath, err)
	}

	return Build(&desc, ebiten.NewImageFromImage(img))
}

// LoadProjectDir loads the atlas of a DragonBones project folder named after
// its entity: `<dir>/<entity>_tex.json` and `<dir>/<entity>_tex.png`.
func LoadProjectDir(dir string) (map[string]*Subtexture, error) {
	entity := filepath.Base(dir)
	return LoadFile(
		filepath.Join(dir, entity+"_tex.json"),
		filepath.Join(dir, entity+"_tex.png"),
	)
}

// Build crops the sheet into subtextures according to the parsed
// description.
func Build(desc *AtlasJSON, sheet *ebiten.Image) (map[string]*Subtexture, error) {
	bounds := sheet.Bounds()
	subtextures := make(map[string]*Subtexture, len(desc.SubTextures))

	for _, st := range desc.SubTextures {
		rect := image.Rect(st.X, st.Y, st.X+st.Width, st.Y+st.Height)
		if !rect.In(bounds) {
			return nil, fmt.Errorf("subtexture %q region %v lies outside the %v sheet", st.Name, rect, bounds.Size())
		}

		subtextures[st.Name] = &Subtexture{
			Name:        st.Name,
			FrameX:      st.FrameX,
			FrameY:      st.FrameY,
			FrameWidth:  st.FrameWidth,
			FrameHeight: st.FrameHeight,
			Image:       sheet.SubImage(rect).(*ebiten.Image),
			AnchorX:     st.Width / 2,
			AnchorY:     st.Height / 2,
		}
	}

	return subtextures, nil
}
