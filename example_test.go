package unitgrid_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/pkg/adapters/memory"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/flow"
)

// ExampleService_UpdateInputData shows that a write stores disabled cells empty.
// Power only applies to conveyors, so it is cleared on a System row.
func ExampleService_UpdateInputData() {
	svc := unitgrid.NewService(memory.NewStore(),
		unitgrid.WithIDGenerator(func() string { return "p1" }),
	)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Line 4", "acme")
	if err != nil {
		log.Fatal(err)
	}

	p, err = svc.UpdateInputData(ctx, p.ID, unitgrid.UpdateInput{
		InputData: domain.Grid{{"A", "B", "", "System", "Belt", "VFD"}},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Project: %s\n", p.ID)
	fmt.Printf("Power: %q\n", p.InputData[0][5])
	// Output:
	// Project: p1
	// Power: ""
}

// Example_flowOrder sorts rows along their Next pointers.
func Example_flowOrder() {
	rows := []domain.Row{
		{"C", ""},
		{"A", "B"},
		{"B", "C"},
	}
	for _, r := range flow.Sort(rows).Rows {
		fmt.Println(r[0])
	}
	// Output:
	// A
	// B
	// C
}
