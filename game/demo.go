package game

import (
	"reflect"

	"github.com/DoumanAsh/vn/ecs"
)

const (
	DemoSystemName = "Demo-System"
	// DemoPeriod is the time between two flips, in seconds.
	DemoPeriod = 2.5
)

var mirroredType = reflect.TypeFor[Mirrored]()

// DemoSystem periodically mirrors every sprite and shifts it by half the play field
// towards the side it now faces.
type DemoSystem struct {
	Sprites ecs.Query[struct {
		Id ecs.EntityId
		*Transform2D
		*SpriteRender
		Mirrored *Mirrored `ecs:"optional"`
	}]

	Timer float64
}

func (s *DemoSystem) Execute(frame *ecs.UpdateFrame) {
	s.Timer += frame.DeltaTime
	if s.Timer < DemoPeriod {
		return
	}
	s.Timer = 0

	for item := range s.Sprites.Values() {
		if item.Mirrored != nil {
			frame.Commands.RemoveComponent(item.Id, mirroredType)
			item.MoveRight(CameraWidth * 0.5)
		} else {
			frame.Commands.AddComponent(item.Id, Mirrored{})
			item.MoveLeft(CameraWidth * 0.5)
		}
	}
}
