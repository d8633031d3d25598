package debugui

import "github.com/DoumanAsh/vn/ecs"

// Windows groups the debug windows so the entity browser selection feeds the inspector.
type Windows struct {
	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Performance *PerformanceStats
}

// SpawnDebugUI spawns one ImguiItem rendering every debug window and makes sure the
// ImguiInputState singleton exists. dispatcher may be nil, in which case schedule
// statistics are not shown.
func SpawnDebugUI(storage *ecs.Storage, dispatcher *ecs.Dispatcher) (ecs.EntityId, *Windows) {
	ecs.NewSingleton[ImguiInputState](storage)

	windows := &Windows{
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Performance: NewPerformanceStats(120),
	}

	id := storage.Spawn(ImguiItem{
		Render: func() {
			windows.Browser.Render(storage)
			windows.Inspector.Render(storage, windows.Browser.GetSelectedEntity())
			windows.Performance.Render(storage, dispatcher)
		},
	})
	return id, windows
}
