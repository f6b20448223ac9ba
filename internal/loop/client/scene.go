package client

import (
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/object"
	"github.com/tomz197/raindrops/internal/physics"
)

// Scene holds the sprites of one client: falling drops and effects.
type Scene struct {
	Objects []object.Object
	toSpawn []object.Object // Objects to add after current update cycle
	drops   map[game.DropID]*object.Drop
	landed  []game.DropID // Reused between updates
}

func newScene() *Scene {
	return &Scene{
		drops: make(map[game.DropID]*object.Drop),
	}
}

// Spawn queues an object to be added after the current update cycle.
// Implements object.Spawner interface.
func (s *Scene) Spawn(obj object.Object) {
	s.toSpawn = append(s.toSpawn, obj)
}

// AddDrop adds the sprite of a newly spawned drop.
func (s *Scene) AddDrop(d *object.Drop) {
	s.drops[d.ID] = d
	s.Objects = append(s.Objects, d)
}

// RemoveDrop removes a drop's sprite. Unknown ids are ignored.
func (s *Scene) RemoveDrop(id game.DropID) (*object.Drop, bool) {
	d, ok := s.drops[id]
	if !ok {
		return nil, false
	}
	delete(s.drops, id)
	kept := s.Objects[:0]
	for _, obj := range s.Objects {
		if obj != object.Object(d) {
			kept = append(kept, obj)
		}
	}
	clear(s.Objects[len(kept):])
	s.Objects = kept
	return d, true
}

// Drop returns the sprite of an active drop.
func (s *Scene) Drop(id game.DropID) (*object.Drop, bool) {
	d, ok := s.drops[id]
	return d, ok
}

// Drops returns the number of drop sprites.
func (s *Scene) Drops() int {
	return len(s.drops)
}

// DropAt returns the drop whose hit box, grown by margin, contains the
// logical point. Overlapping drops resolve to the one nearest the point.
func (s *Scene) DropAt(x, y, margin float64) (*object.Drop, bool) {
	var best *object.Drop
	bestDist := 0.0
	for _, d := range s.drops {
		box := d.Bounds()
		if !box.Inflate(margin).Contains(x, y) {
			continue
		}
		cx, cy := box.Center()
		dist := physics.DistanceSquared(x, y, cx, cy)
		if best == nil || dist < bestDist || (dist == bestDist && d.ID < best.ID) {
			best, bestDist = d, dist
		}
	}
	return best, best != nil
}

// Update advances every sprite and returns the ids of drops that reached
// the floor during this update.
func (s *Scene) Update(ctx object.UpdateContext) []game.DropID {
	s.landed = s.landed[:0]

	kept := s.Objects[:0]
	for _, obj := range s.Objects {
		remove, _ := obj.Update(ctx)
		if !remove {
			kept = append(kept, obj)
			continue
		}
		if d, ok := obj.(*object.Drop); ok {
			delete(s.drops, d.ID)
			s.landed = append(s.landed, d.ID)
		}
		object.ReleaseObject(obj)
	}
	clear(s.Objects[len(kept):])
	s.Objects = kept
	s.FlushSpawned()

	return s.landed
}

// FlushSpawned adds all queued objects to the scene and clears the queue.
func (s *Scene) FlushSpawned() {
	s.Objects = append(s.Objects, s.toSpawn...)
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]
}

// Draw draws every canvas sprite. Text pop-ups are drawn by DrawText.
func (s *Scene) Draw(ctx object.DrawContext) error {
	for _, obj := range s.Objects {
		if _, ok := obj.(*object.Popup); ok {
			continue
		}
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DrawText draws text pop-ups. Call after the canvas is rendered so the
// text ends up on top.
func (s *Scene) DrawText(ctx object.DrawContext) error {
	for _, obj := range s.Objects {
		if p, ok := obj.(*object.Popup); ok {
			if err := p.Draw(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear removes every sprite and effect.
func (s *Scene) Clear() {
	for _, obj := range s.Objects {
		object.ReleaseObject(obj)
	}
	clear(s.Objects)
	s.Objects = s.Objects[:0]
	clear(s.drops)
}
