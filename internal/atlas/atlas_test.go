package atlas

import (
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestBuild(t *testing.T) {
	sheet := ebiten.NewImage(64, 64)
	desc := &AtlasJSON{
		ImagePath: "hero_tex.png",
		SubTextures: []SubtextureJSON{
			{Name: "head", X: 0, Y: 0, Width: 32, Height: 16},
			{Name: "body", X: 32, Y: 16, Width: 16, Height: 48},
		},
	}

	subtextures, err := Build(desc, sheet)
	if err != nil {
		t.Fatalf("Failed to build atlas: %v", err)
	}
	if len(subtextures) != 2 {
		t.Fatalf("Expected 2 subtextures, got %d", len(subtextures))
	}

	head := subtextures["head"]
	if head == nil {
		t.Fatal("Expected subtexture \"head\"")
	}
	if w, h := head.Image.Bounds().Dx(), head.Image.Bounds().Dy(); w != 32 || h != 16 {
		t.Errorf("Expected 32x16 crop, got %dx%d", w, h)
	}
	if head.AnchorX != 16 || head.AnchorY != 8 {
		t.Errorf("Expected center anchor (16, 8), got (%d, %d)", head.AnchorX, head.AnchorY)
	}

	body := subtextures["body"]
	if body.Image.Bounds().Min.X != 32 || body.Image.Bounds().Min.Y != 16 {
		t.Errorf("Expected crop origin (32, 16), got %v", body.Image.Bounds().Min)
	}
}

func TestBuild_RegionOutsideSheet(t *testing.T) {
	sheet := ebiten.NewImage(32, 32)
	desc := &AtlasJSON{
		SubTextures: []SubtextureJSON{
			{Name: "giant", X: 16, Y: 16, Width: 32, Height: 32},
		},
	}

	_, err := Build(desc, sheet)
	if err == nil {
		t.Fatal("Expected an error for a region outside the sheet")
	}
	if !strings.Contains(err.Error(), "giant") {
		t.Errorf("Expected the error to name the subtexture, got: %v", err)
	}
}

func TestLoadFile_MissingFiles(t *testing.T) {
	if _, err := LoadFile("no/such/file_tex.json", "no/such/file_tex.png"); err == nil {
		t.Error("Expected an error for a missing atlas file")
	}
}
