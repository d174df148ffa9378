package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/joho/godotenv"
	"golang.org/x/net/websocket"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	log.SetPrefix("[ninja]")
	config_path := flag.String("config", "", "YAML config file (defaults are used when empty)")
	env_path := flag.String("env", ".env", "dotenv file with NINJA_* overrides")
	sim := flag.Bool("sim", false, "mine a generated world in memory instead of serving turtles")
	iterations := flag.Int("iterations", 0, "mining iterations in -sim mode (0 = sim.iterations from config)")
	flag.Parse()

	if err := godotenv.Load(*env_path); err != nil {
		log.Printf("no env file loaded (%v)", err)
	}
	cfg, err := loadConfig(*config_path)
	check(err)

	stats, err := openMineStats(filepath.Join(cfg.StateDir, "stats.db"))
	check(err)
	defer stats.close()
	journal := newEventJournal(cfg.StateDir)
	defer journal.close()
	hub := newSyncHub()
	mgr := newWorkMgr(cfg, hub, stats, journal)

	if *sim {
		n := cfg.Sim.Iterations
		if *iterations > 0 {
			n = *iterations
		}
		runSim(mgr, cfg, n)
		return
	}

	// Run lua script and get version.
	log.Printf("running kernel\n")
	kern, err := loadKernel(cfg.BaseURL + cfg.Key)
	check(err)
	log.Printf("kernel version %v ready\n", kern.version)
	log.Printf("starting http server on %v\n", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, newServeMux(cfg.Key, kern, mgr, hub)))
}

func newServeMux(key string, kern kernel, mgr *workMgr, hub *syncHub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(key+"/kernel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(kern.src))
	})
	mux.HandleFunc(key+"/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(fmt.Sprintf("%d", kern.version)))
	})
	mux.HandleFunc(key+"/turtles", func(w http.ResponseWriter, r *http.Request) {
		raw, err := json.Marshal(mgr.online())
		if err != nil {
			writeRspInternalError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	})
	mux.Handle(key+"/turtle", websocket.Handler(mgr.serveTurtle))
	mux.Handle(key+"/sync", websocket.Handler(hub.serveWS))
	return mux
}

func writeRspInternalError(w http.ResponseWriter) {
	http.Error(w, "<h1>Internal Server Error</h1>", http.StatusInternalServerError)
}

// Builds the in-memory world and turtle used by -sim. The turtle carries
// the supply chest, torches, fuel and some path blocks; the chest holds
// spare torches and coal.
func newSimSession(cfg config) (*simWorld, *simTurtle) {
	world := newSimWorld("minecraft:stone")
	world.chestItem = cfg.Inventory.Chest
	world.generate(cfg.Sim)
	world.set(vec3Zero, "")
	for _, s := range cfg.Inventory.Supply {
		world.ender.insert(itemDetail{Name: s.Name, Count: 4 * s.Count}, 0)
	}
	t := newSimTurtle(world, 0)
	t.give(cfg.Inventory.Chest, 1)
	for _, s := range cfg.Inventory.Supply {
		t.give(s.Name, s.Count)
	}
	if len(cfg.Path.Blocks) > 0 {
		t.give(cfg.Path.Blocks[0], 64)
	}
	return world, t
}

func runSim(mgr *workMgr, cfg config, iterations int) {
	_, t := newSimSession(cfg)
	label := turtleID("sim.1")
	log.Printf("sim: seed %d, %d veins, %d iterations", cfg.Sim.Seed, cfg.Sim.Veins, iterations)
	err := mgr.runSession(label, t, iterations)
	check(err)
	mined, err := mgr.stats.minedTotals(label)
	check(err)
	for name, n := range mined {
		log.Printf("sim: mined %d %v", n, name)
	}
	log.Printf("sim: done, %v", t)
}
