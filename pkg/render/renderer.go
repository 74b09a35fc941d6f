// Package render draws a skeleton's slots with Ebiten. The core never calls
// back into the renderer: each frame the renderer reads the world poses and
// display selections the tick produced and issues plain DrawImage calls.
package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/dragonbones/internal/atlas"
	"github.com/decker502/dragonbones/pkg/skeleton"
)

// Renderer draws one skeleton using a loaded texture atlas.
type Renderer struct {
	subtextures map[string]*atlas.Subtexture
}

// NewRenderer creates a renderer over the given atlas subtextures.
func NewRenderer(subtextures map[string]*atlas.Subtexture) *Renderer {
	return &Renderer{subtextures: subtextures}
}

// Draw renders every visible slot of the skeleton onto target. Slots draw in
// armature order. originX/originY place the skeleton-space origin on the
// target; skeleton space is y-up, so world y is flipped onto the y-down
// screen.
func (r *Renderer) Draw(target *ebiten.Image, skel *skeleton.Skeleton, originX, originY float64) {
	for _, slot := range skel.Slots() {
		name := slot.DisplayName()
		if name == "" {
			continue
		}
		st := r.subtextures[name]
		if st == nil || st.Image == nil {
			continue
		}

		pos := slot.WorldPosition()
		scale := slot.WorldScale()
		angle := slot.WorldAngle()

		opts := &ebiten.DrawImageOptions{}

		// Anchor at the subtexture center, then scale, rotate and place.
		opts.GeoM.Translate(-float64(st.AnchorX), -float64(st.AnchorY))
		opts.GeoM.Scale(scale.X, scale.Y)
		opts.GeoM.Rotate(angle * math.Pi / 180)
		opts.GeoM.Translate(originX+pos.X, originY-pos.Y)

		target.DrawImage(st.Image, opts)
	}
}
