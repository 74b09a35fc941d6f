// Package body integrates a skeleton with Chipmunk2D physics. The body owns
// the root's world position: each tick the caller steps the space, lets the
// body clamp its velocity, and pushes the resulting position into the
// skeleton before Skeleton.Update runs. The core never computes physics
// itself.
package body

import (
	"github.com/jakecoffman/cp"

	"github.com/decker502/dragonbones/pkg/skeleton"
)

// Collision types for the skeleton body and the terrain it collides with.
const (
	CollisionTypeSkeleton cp.CollisionType = 1
	CollisionTypeTerrain  cp.CollisionType = 2
)

// Body wraps a cp.Body driving a skeleton's root position.
type Body struct {
	body  *cp.Body
	space *cp.Space

	// maxVelocity clamps the body's speed after every step; 0 disables the
	// clamp.
	maxVelocity float64

	colliding bool
}

// New creates a body and adds it to the space.
func New(space *cp.Space, mass, moment float64) *Body {
	b := &Body{
		body:  cp.NewBody(mass, moment),
		space: space,
	}
	space.AddBody(b.body)
	return b
}

// CP exposes the underlying chipmunk body for shape attachment and impulses.
func (b *Body) CP() *cp.Body { return b.body }

// SetupCollisionHandlers registers the skeleton/terrain contact callbacks:
// contact stops the body dead and flags the collision until separation.
func (b *Body) SetupCollisionHandlers() {
	handler := b.space.NewCollisionHandler(CollisionTypeSkeleton, CollisionTypeTerrain)
	handler.UserData = b

	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		bd, ok := userData.(*Body)
		if ok && bd != nil {
			bd.colliding = true
		}
		return true
	}
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		bd, ok := userData.(*Body)
		if ok && bd != nil {
			bd.body.SetVelocityVector(cp.Vector{})
		}
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		bd, ok := userData.(*Body)
		if ok && bd != nil {
			bd.colliding = false
		}
	}
}

// IsColliding reports whether the body is currently touching terrain.
func (b *Body) IsColliding() bool { return b.colliding }

// SetMaxVelocity sets the speed clamp applied on Update; 0 disables it.
func (b *Body) SetMaxVelocity(v float64) { b.maxVelocity = v }

// MaxVelocity returns the current speed clamp.
func (b *Body) MaxVelocity() float64 { return b.maxVelocity }

// Update enforces the velocity clamp. Call once per tick after stepping the
// space.
func (b *Body) Update() {
	b.limitSpeed()
}

func (b *Body) limitSpeed() {
	if b.maxVelocity <= 0 {
		return
	}
	v := b.body.Velocity()
	speed := v.Length()
	if speed > b.maxVelocity {
		b.body.SetVelocityVector(v.Normalize().Mult(b.maxVelocity))
	}
}

// Apply pushes the body's position into the skeleton root. Call between
// Update and Skeleton.Update.
func (b *Body) Apply(skel *skeleton.Skeleton) {
	pos := b.body.Position()
	skel.SetPosition(pos.X, pos.Y)
}
