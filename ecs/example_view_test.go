package ecs_test

import (
	"fmt"

	"github.com/plus3/sparsecs/ecs"
)

// ExampleNewView2 demonstrates a cached view over two component tables with an exclusion.
func ExampleNewView2() {
	registry := ecs.NewComponentRegistry()
	storage := ecs.NewStorage(registry)

	positions := ecs.Table[Position](storage)
	accels := ecs.Table[Acceleration](storage)
	radii := ecs.Table[Radius](storage)

	for range 4 {
		e := storage.NextEntity()
		positions.Add(e, Position{X: float32(e)})
		accels.Add(e, Acceleration{DX: 1})
	}
	radii.Add(2, 0.5)

	view := ecs.NewView2[Position, Acceleration](storage, ecs.Exclude[Radius]())
	for _, e := range view.Entities() {
		view.Get1(e).X += view.Get2(e).DX
		fmt.Printf("entity %d at %.0f\n", e, view.Get1(e).X)
	}

	// Output:
	// entity 0 at 1
	// entity 1 at 2
	// entity 3 at 4
}

// ExampleView_Entities shows that a view recomputes only after membership changes.
func ExampleView_Entities() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	names := ecs.Table[Name](storage)
	names.Add(storage.NextEntity(), Name{"a"})
	names.Add(storage.NextEntity(), Name{"b"})

	view := ecs.NewView1[Name](storage, ecs.OnlyOnStructuralChange())
	fmt.Println(view.Entities())
	fmt.Println(view.Entities())

	names.Remove(0)
	fmt.Println(view.Entities())

	// Output:
	// [0 1]
	// []
	// [1]
}
