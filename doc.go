/*
Package unitgrid is a collaborative engine for spreadsheet-like engineering parameter
sheets (conveyor and unit specifications) edited by several people at once.

Every project carries an ordered column schema. Each column declares a validation rule
and a visibility condition over the other cells of its row. After any change the whole
grid is recomputed: disabled cells are stored empty and enabled cells are flagged valid
or invalid. Committed grids are pushed to every session subscribed to the project, and
a session replaces its local grid wholesale when the pushed one differs.

# Packages

  - pkg/schema: rule and condition variants, the persisted column codec, the default schema.
  - pkg/grid: the recompute pass and the editing Engine with undo and redo.
  - pkg/flow: orders rows along their "next" pointers.
  - pkg/broadcast: the per-project subscriber hub.
  - pkg/session and pkg/client: the editing side (reconcile, save, reconnecting subscription).
  - pkg/adapters: storage (memory, file, redis, gorm) and the chi HTTP transport.

# Usage

	store := memory.NewStore()
	hub := broadcast.NewHub()
	svc := unitgrid.NewService(store, unitgrid.WithPublisher(hub))

	p, err := svc.Create(ctx, "Line 1", "acme")
	if err != nil {
		log.Fatal(err)
	}

	sub := hub.Subscribe(p.ID)
	defer sub.Close()

	rows := p.InputData.Clone()
	rows[0][0] = "C1"
	if _, err := svc.UpdateInputData(ctx, p.ID, unitgrid.UpdateInput{InputData: rows}); err != nil {
		log.Fatal(err)
	}

	msg := <-sub.C() // {projectId, inputData, inputDataConfig}
*/
package unitgrid
