package main

import (
	"flag"
	"log"
	"math"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "voxelstream.dev/internal/persistence/log"

	"voxelstream.dev/internal/persistence/chunkio"
	"voxelstream.dev/internal/persistence/indexdb"
	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/gen"
	"voxelstream.dev/internal/sim/mesh"
	"voxelstream.dev/internal/sim/tuning"
	"voxelstream.dev/internal/stream"
	"voxelstream.dev/internal/transport/wsdebug"
)

// streamd runs the chunk streaming engine headless: a scripted viewpoint
// orbits the origin while chunks load, mesh and evict, with pprof and a
// websocket stats feed for observation. Rendering is a null backend; a
// real client wires its own mesh.Renderer instead.
func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed       = flag.Int64("seed", 0, "world seed override (0: use tuning)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite save index")
		orbitR     = flag.Float64("orbit_radius", 200, "scripted viewpoint orbit radius in blocks")
		orbitSecs  = flag.Float64("orbit_secs", 120, "seconds per full orbit")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[streamd] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	cat, err := block.Load(*configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("blocks.json not found in %s; using built-in palette", *configDir)
			cat = block.Defaults()
		} else {
			logger.Fatalf("load block catalog: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)
	store := chunkio.NewStore(*dataDir, gen.Version)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "index.db"))
		if err != nil {
			logger.Fatalf("open save index: %v", err)
		}
		defer idx.Close()
		store.SetObserver(idx)
		if err := idx.UpsertCatalog(cat, tune); err != nil {
			logger.Printf("index catalog upsert: %v", err)
		}
	}

	events := persistlog.NewStreamLogger(*dataDir)
	defer events.Close()

	world := stream.NewWorld(stream.Options{
		Config: stream.Config{
			LoadRadius:   tune.LoadRadius,
			UnloadRadius: tune.UnloadRadius,
		},
		Logger:        logger,
		Catalog:       cat,
		Gen:           gen.NewTerrain(tune.Seed, cat),
		Store:         store,
		Renderer:      &mesh.NullRenderer{},
		Events:        events,
		AtlasGridSize: tune.AtlasGridSize,
	})

	mux := http.NewServeMux()
	ws := wsdebug.NewServer(world, logger,
		time.Duration(tune.StatsEveryMs)*time.Millisecond)
	mux.Handle("/v1/stats", ws.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := http.ListenAndServe(*addr, mux); err != nil {
			logger.Printf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(tune.TickRateHz))
	defer ticker.Stop()

	logger.Printf("streaming: seed=%d load_r=%d unload_r=%d",
		tune.Seed, tune.LoadRadius, tune.UnloadRadius)

	start := time.Now()
	lastStats := time.Now()
	for {
		select {
		case <-sig:
			logger.Printf("shutting down")
			world.Close()
			return
		case <-ticker.C:
			t := time.Since(start).Seconds()
			angle := 2 * math.Pi * t / *orbitSecs
			px := *orbitR * math.Cos(angle)
			pz := *orbitR * math.Sin(angle)

			world.UpdateStream(px, pz)
			world.UploadReadyMeshes()

			if time.Since(lastStats) >= time.Duration(tune.StatsEveryMs)*time.Millisecond {
				s := world.DebugStats()
				logger.Printf("resident=%d meshed=%d pending_load=%d pending_remesh=%d tris=%d queue=%d",
					s.Resident, s.Meshed, s.PendingLoad, s.PendingRemesh, s.Triangles, s.QueuedJobs)
				lastStats = time.Now()
			}
		}
	}
}
