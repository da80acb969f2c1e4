package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abrahamm4/HomeCare/internal/db"
)

// simulate hammers the booking endpoint with concurrent workers and checks
// afterwards that no slot ended up with more than one booking. Run it against
// a seeded database (cmd/seed).

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	HotSlots    int // size of the contended slot set workers fight over
	Username    string
	Password    string
	PostgresDSN string
}

type DataPool struct {
	Patients []uuid.UUID
	Slots    []uuid.UUID
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	token   string
	metrics OperationMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	log.Printf("loaded: %d patients, %d contended slots", len(dataPool.Patients), len(dataPool.Slots))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	if err := sim.login(); err != nil {
		log.Fatalf("login: %v", err)
	}

	sim.Run()
	sim.PrintReport()

	if err := verifyIntegrity(context.Background(), pgPool); err != nil {
		log.Fatalf("INTEGRITY VIOLATION: %v", err)
	}
	log.Println("integrity check passed: every slot holds at most one booking")
}

func loadSimConfig() SimConfig {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	return SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 20),
		HotSlots:    getInt("SIM_HOT_SLOTS", 10),
		Username:    getEnv("SIM_USERNAME", "admin"),
		Password:    getEnv("SIM_PASSWORD", "password123"),
		PostgresDSN: dsn,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `SELECT id FROM patients LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}

	// A deliberately small slot set so workers collide on the same slots.
	rows, err = pool.Query(ctx, `
		SELECT s.id FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE b.id IS NULL
		ORDER BY s.date, s.start_minute
		LIMIT $1
	`, cfg.HotSlots)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Slots = append(dataPool.Slots, id)
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(dataPool.Slots) == 0 {
		return nil, fmt.Errorf("no free slots loaded, run cmd/seed first")
	}

	return dataPool, nil
}

func (s *Simulator) login() error {
	body, _ := json.Marshal(map[string]string{
		"username": s.config.Username,
		"password": s.config.Password,
	})

	resp, err := s.client.Post(s.config.APIBaseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login returned %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	s.token = parsed.Token
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers over %d slots",
		s.config.Duration, s.config.Workers, len(s.pool.Slots))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		slotID := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
		patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

		s.book(ctx, slotID, patientID)
	}
}

func (s *Simulator) book(ctx context.Context, slotID, patientID uuid.UUID) {
	body, _ := json.Marshal(map[string]string{
		"slotId":    slotID.String(),
		"patientId": patientID.String(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.metrics.Record(latency, false, false)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.metrics.Record(latency,
		resp.StatusCode == http.StatusCreated,
		resp.StatusCode == http.StatusConflict,
	)
}

func (s *Simulator) PrintReport() {
	avg, min, max, p50, p95 := s.metrics.Stats()

	fmt.Println("==== booking simulation report ====")
	fmt.Printf("total:    %d\n", atomic.LoadInt64(&s.metrics.Total))
	fmt.Printf("success:  %d\n", atomic.LoadInt64(&s.metrics.Success))
	fmt.Printf("conflict: %d\n", atomic.LoadInt64(&s.metrics.Conflict))
	fmt.Printf("error:    %d\n", atomic.LoadInt64(&s.metrics.Error))
	fmt.Printf("latency:  avg=%s min=%s max=%s p50=%s p95=%s\n", avg, min, max, p50, p95)
}

// verifyIntegrity fails when any slot holds more than one booking, which
// would mean the atomicity guarantee was violated.
func verifyIntegrity(ctx context.Context, pool *pgxpool.Pool) error {
	var doubleBooked int
	err := pool.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT slot_id FROM bookings GROUP BY slot_id HAVING count(*) > 1
		) d
	`).Scan(&doubleBooked)
	if err != nil {
		return fmt.Errorf("integrity query: %w", err)
	}
	if doubleBooked > 0 {
		return fmt.Errorf("%d slots hold more than one booking", doubleBooked)
	}
	return nil
}
