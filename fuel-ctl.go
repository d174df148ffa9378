package main

import (
	"log"
)

// Anything that can restock the inventory, used when no fuel is carried.
type refresher interface {
	refreshInventory() bool
}

// fuelCtl keeps the fuel level above a minimum.
type fuelCtl struct {
	api      turtleAPI
	inv      refresher
	events   eventSink
	log      *log.Logger
	items    []string
	minLevel int
}

func newFuelCtl(api turtleAPI, cfg fuelConfig, inv refresher, events eventSink, lg *log.Logger) *fuelCtl {
	return &fuelCtl{
		api:      api,
		inv:      inv,
		events:   events,
		log:      lg,
		items:    cfg.Items,
		minLevel: cfg.MinLevel,
	}
}

func (f *fuelCtl) findFuel() (itemSlot, bool) {
	return findFirstItem(f.api, func(item itemDetail) bool {
		return containsName(f.items, item.Name)
	})
}

// Refuels one item when the fuel level is below the minimum. A failed
// refuel is reported and not retried; the next move asks again.
func (f *fuelCtl) ensureFuel() {
	cur_fuel := f.api.getFuelLevel()
	if cur_fuel >= f.minLevel {
		return
	}
	fuel, ok := f.findFuel()
	if !ok && f.inv != nil {
		// Nothing carried, try restocking from the supply chest.
		f.inv.refreshInventory()
		fuel, ok = f.findFuel()
	}
	if !ok {
		f.log.Printf("fuel: error: no fuel in inventory or resupplied (level %d/%d)", cur_fuel, f.minLevel)
		return
	}
	f.api.selectSlot(fuel.slot)
	if !f.api.refuel(1) {
		f.log.Printf("fuel: error: refuel with %v failed", fuel.item.Name)
		return
	}
	f.log.Printf("fuel: refueled with %v", fuel.item.Name)
	emit(f.events, mineEvent{Kind: evRefuel, Name: fuel.item.Name, Count: 1})
}
