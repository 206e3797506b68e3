package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"trump304/internal/server"
	"trump304/internal/session"
	"trump304/internal/storage"
	"trump304/internal/timer"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: load .env: %v", err)
	}

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	dbPath := "trump304.db"
	if p := os.Getenv("DB_PATH"); p != "" {
		dbPath = p
	}

	turnTimeout := 30 * time.Second
	if v := os.Getenv("TURN_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			log.Fatalf("invalid TURN_TIMEOUT_SECONDS: %q", v)
		}
		turnTimeout = time.Duration(secs) * time.Second
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	mgr := session.NewManager(store)
	if err := mgr.Restore(); err != nil {
		log.Printf("warning: restore sessions: %v", err)
	}

	// Cleanup stale sessions every minute, remove after 24 hours
	go mgr.CleanupLoop(1*time.Minute, 24*time.Hour)

	sched, err := timer.NewGocron()
	if err != nil {
		log.Fatalf("turn scheduler: %v", err)
	}
	defer sched.Shutdown()

	srv := server.New(mgr, sched, turnTimeout)
	sched.Start()

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server: %v", err)
	}
}
