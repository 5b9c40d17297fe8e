// Command validate replays captured provider payloads from the SQLite
// archive through the current payload mappers. It catches mapper regressions
// and provider format drift: every stored payload must still normalize
// without error.
//
// Usage:
//
//	go run ./cmd/validate -db data/wxbench.sqlite
//	go run ./cmd/validate -db data/wxbench.sqlite -provider openweather -limit 100
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/ericfeunekes/wxbench/internal/mapper"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

// tally tracks replay outcomes for one provider.
type tally struct {
	provider     string
	payloads     int
	observations int
	hourly       int
	daily        int
	errors       []string
}

func (t *tally) errorf(format string, args ...any) {
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
}

func (t *tally) passed() bool { return len(t.errors) == 0 }

func main() {
	dbPath := flag.String("db", "data/wxbench.sqlite", "path to the SQLite archive")
	providerName := flag.String("provider", "", "replay only this provider's payloads")
	limit := flag.Int("limit", 0, "replay at most this many payloads (0 = all)")
	lat := flag.Float64("lat", 0, "latitude for mappers that need a location context")
	lon := flag.Float64("lon", 0, "longitude for mappers that need a location context")
	flag.Parse()

	if code := run(*dbPath, *providerName, *limit, *lat, *lon); code != 0 {
		os.Exit(code)
	}
}

func run(dbPath, providerName string, limit int, lat, lon float64) int {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open database: %v\n", err)
		return 1
	}
	defer store.Close()

	payloads, err := store.ListRawPayloads(context.Background(), providerName, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list raw payloads: %v\n", err)
		return 1
	}
	if len(payloads) == 0 {
		fmt.Println("No raw payloads to replay.")
		return 0
	}

	fmt.Println("=== Raw Payload Replay Validation ===")
	fmt.Println()

	registry := mapper.NewRegistry()
	tallies := map[string]*tally{}

	for _, stored := range payloads {
		t := tallies[stored.Provider]
		if t == nil {
			t = &tally{provider: stored.Provider}
			tallies[stored.Provider] = t
		}
		t.payloads++
		replayPayload(t, registry, stored, lat, lon)
	}

	names := make([]string, 0, len(tallies))
	for name := range tallies {
		names = append(names, name)
	}
	sort.Strings(names)

	allPassed := true
	for _, name := range names {
		t := tallies[name]
		status := "\033[32mPASS\033[0m"
		if !t.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(t.errors))
			allPassed = false
		}
		fmt.Printf("  %-20s %4d payloads  %4d obs  %4d hourly  %4d daily  %s\n",
			t.provider, t.payloads, t.observations, t.hourly, t.daily, status)
	}

	for _, name := range names {
		t := tallies[name]
		if t.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", t.provider)
		for i, e := range t.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll payloads replayed cleanly.")
		return 0
	}
	fmt.Println("\nReplay FAILED.")
	return 1
}

// replayPayload re-runs one stored payload through its provider's mapper.
func replayPayload(t *tally, registry mapper.Registry, stored sqlite.StoredPayload, lat, lon float64) {
	m, err := registry.Lookup(stored.Provider)
	if err != nil {
		t.errorf("payload %d: %v", stored.ID, err)
		return
	}

	var payload any
	if err := json.Unmarshal([]byte(stored.PayloadJSON), &payload); err != nil {
		t.errorf("payload %d (%s): invalid JSON: %v", stored.ID, stored.Endpoint, err)
		return
	}

	result, err := m.Map(stored.Endpoint, payload, mapper.Context{
		Latitude:  lat,
		Longitude: lon,
		IssuedAt:  stored.RunAt,
	})
	if err != nil {
		t.errorf("payload %d (%s): %v", stored.ID, stored.Endpoint, err)
		return
	}

	t.observations += len(result.Observations)
	t.hourly += len(result.Hourly)
	t.daily += len(result.Daily)
}
