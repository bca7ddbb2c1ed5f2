package fleet_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/container"
	"github.com/jonwraymond/fleetwatch/fleet"
	"github.com/jonwraymond/fleetwatch/registry"
	"github.com/jonwraymond/fleetwatch/status"
)

func Example() {
	reg, _ := registry.New([]registry.Service{
		{ID: "db", Name: "PostgreSQL", ContainerName: "hub-db-1", Category: "database"},
		{ID: "watchtower", ContainerName: "hub-watchtower-1", ContainerDefined: true, Category: "system"},
		{ID: "qdrant", ContainerName: "hub-qdrant-1", Category: "database"},
	})

	rt := container.NewStatic()
	rt.SetRunning("hub-db-1", status.NativeHealthy)
	rt.SetRunning("hub-watchtower-1", status.NativeNone)

	acc := cache.NewAccessor(cache.NewMemoryStore(cache.DefaultPolicy()))
	m, _ := fleet.New(reg, rt, acc, fleet.Config{})

	all, _ := m.Services(context.Background())
	for _, st := range all {
		fmt.Printf("%s: %s\n", st.ID, st.Status)
	}
	// Output:
	// db: Production Ready
	// watchtower: Running
	// qdrant: Not Deployed
}
