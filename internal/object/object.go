// Package object holds the things that move on the play field: drops, the
// bucket and short-lived visual effects.
package object

import (
	"time"

	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/input"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// Input is an alias for the input package's Input type.
type Input = input.Input

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Input   Input
	Field   Screen
	Spawner Spawner
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // Half-block canvas in logical coordinates
	Writer *draw.ChunkWriter // Text output, drawn after the canvas
}

// Screen is the size of the play field in logical units.
type Screen struct {
	Width  int
	Height int
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object onto ctx.Canvas.
	Draw(ctx DrawContext) error
}

// Overlay is implemented by objects that also write text on top of the
// rendered canvas.
type Overlay interface {
	DrawOverlay(ctx DrawContext)
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// Layer is a list of objects updated and drawn together. Objects spawned
// during an update join the layer once the update finishes.
type Layer struct {
	Objects []Object
	toSpawn []Object
}

var _ Spawner = (*Layer)(nil)

// Spawn queues obj to be added after the current update cycle.
func (l *Layer) Spawn(obj Object) {
	l.toSpawn = append(l.toSpawn, obj)
}

// Update advances every object, dropping and releasing the finished ones.
func (l *Layer) Update(ctx UpdateContext) error {
	l.flush()
	if ctx.Spawner == nil {
		ctx.Spawner = l
	}
	kept := l.Objects[:0]
	var firstErr error
	for _, obj := range l.Objects {
		remove, err := obj.Update(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if remove {
			ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(l.Objects[len(kept):])
	l.Objects = kept
	l.flush()
	return firstErr
}

func (l *Layer) flush() {
	l.Objects = append(l.Objects, l.toSpawn...)
	clear(l.toSpawn)
	l.toSpawn = l.toSpawn[:0]
}

// Draw draws every object onto the canvas.
func (l *Layer) Draw(ctx DrawContext) error {
	for _, obj := range l.Objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DrawOverlays writes the text of every Overlay in the layer.
func (l *Layer) DrawOverlays(ctx DrawContext) {
	for _, obj := range l.Objects {
		if o, ok := obj.(Overlay); ok {
			o.DrawOverlay(ctx)
		}
	}
}

// Reset removes every object.
func (l *Layer) Reset() {
	for _, obj := range l.Objects {
		ReleaseObject(obj)
	}
	clear(l.Objects)
	l.Objects = l.Objects[:0]
	clear(l.toSpawn)
	l.toSpawn = l.toSpawn[:0]
}

// Len returns the number of live objects, including queued spawns.
func (l *Layer) Len() int {
	return len(l.Objects) + len(l.toSpawn)
}
