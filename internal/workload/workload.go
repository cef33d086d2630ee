// Package workload simulates a small multi-service application that logs
// through a dual-tag logger. It drives the demo command and gives the
// analysis and export paths realistic input.
package workload

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// Feature tags: user-facing functionality.
const (
	FeatureUserAuth         = "user_authentication"
	FeatureDataProcessing   = "data_processing"
	FeatureFileOperations   = "file_operations"
	FeatureAPICalls         = "api_calls"
	FeatureReportGeneration = "report_generation"
)

// Module tags: internal components.
const (
	ModuleAuth        = "auth_module"
	ModuleDatabase    = "database"
	ModuleFileHandler = "file_handler"
	ModuleAPIClient   = "api_client"
	ModuleAnalytics   = "analytics"
)

// Options configures a simulation run.
type Options struct {
	// Workers is the number of flows run concurrently.
	Workers int
	// Rounds is how many times the full set of flows is run.
	Rounds int
	// Seed makes the simulated outcomes reproducible.
	Seed int64
	// Sleep simulates work. Nil means no delay.
	Sleep func(time.Duration)
}

// DefaultOptions runs every flow once on four workers.
func DefaultOptions() Options {
	return Options{Workers: 4, Rounds: 1, Seed: time.Now().UnixNano(), Sleep: time.Sleep}
}

// Simulator owns the services and their shared random source.
type Simulator struct {
	log   *logging.Logger
	sleep func(time.Duration)

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a simulator logging to l.
func New(l *logging.Logger, opts Options) *Simulator {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	return &Simulator{log: l, sleep: sleep, rng: rand.New(rand.NewSource(opts.Seed))}
}

func (s *Simulator) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// work sleeps for a duration in [lo, hi) and returns it in seconds.
func (s *Simulator) work(lo, hi time.Duration) float64 {
	d := lo + time.Duration(s.float()*float64(hi-lo))
	s.sleep(d)
	return d.Seconds()
}

// Run executes every flow opts.Rounds times on a bounded worker pool. It
// stops scheduling new flows once ctx is cancelled.
func Run(ctx context.Context, l *logging.Logger, opts Options) error {
	s := New(l, opts)
	workers := max(opts.Workers, 1)
	rounds := max(opts.Rounds, 1)

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for round := 0; round < rounds; round++ {
		for _, flow := range s.flows(round) {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				flow()
				return nil
			})
		}
	}
	return p.Wait()
}

func (s *Simulator) flows(round int) []func() {
	return []func(){
		func() { s.Authenticate("admin", "password") },
		func() { s.Authenticate("user", "wrongpass") },
		func() { s.CheckPermissions("admin", "/api/users") },
		func() { _ = s.ProcessData(fmt.Sprintf("dataset_%d_0", round), 1000) },
		func() { _ = s.ProcessData(fmt.Sprintf("dataset_%d_1", round), 2000) },
		func() { _ = s.ProcessData(fmt.Sprintf("dataset_%d_2", round), 3000) },
		func() { s.SaveFile("output.txt", "Sample content") },
		func() { s.SaveFile("report.pdf", strings.Repeat("Report data", 100)) },
		func() { s.MakeRequest("/api/users", "GET") },
		func() { s.MakeRequest("/api/users", "GET") },
		func() { s.MakeRequest("/api/orders", "POST") },
		func() { s.GenerateReport() },
	}
}

// Authenticate logs a login attempt; only admin/password succeeds.
func (s *Simulator) Authenticate(username, password string) bool {
	s.log.Info(FeatureUserAuth, ModuleAuth, "authenticate_user", "Starting user authentication",
		logging.Params{"username": username, "ip_address": "192.168.1.100"})

	elapsed := s.work(100*time.Millisecond, 101*time.Millisecond)

	if username == "admin" && password == "password" {
		s.log.Info(FeatureUserAuth, ModuleAuth, "authenticate_user", "User authenticated successfully",
			logging.Params{"username": username, "duration": elapsed})
		return true
	}
	s.log.Warning(FeatureUserAuth, ModuleAuth, "authenticate_user", "Authentication failed",
		logging.Params{"username": username, "reason": "Invalid credentials"})
	return false
}

// CheckPermissions grants or denies access at random.
func (s *Simulator) CheckPermissions(username, resource string) bool {
	params := logging.Params{"username": username, "resource": resource}
	s.log.Debug(FeatureUserAuth, ModuleDatabase, "check_permissions", "Checking user permissions", params)

	if s.intn(2) == 0 {
		s.log.Info(FeatureUserAuth, ModuleDatabase, "check_permissions", "Permission granted", params)
		return true
	}
	s.log.Warning(FeatureUserAuth, ModuleDatabase, "check_permissions", "Permission denied", params)
	return false
}

// ProcessData simulates a processing job that fails about a fifth of the
// time.
func (s *Simulator) ProcessData(dataID string, size int) error {
	s.log.Info(FeatureDataProcessing, ModuleAnalytics, "process_data", "Starting data processing",
		logging.Params{"data_id": dataID, "data_size": size})

	elapsed := s.work(100*time.Millisecond, 500*time.Millisecond)

	if s.float() < 0.2 {
		err := fmt.Errorf("data validation failed")
		s.log.Error(FeatureDataProcessing, ModuleAnalytics, "process_data", "Data processing failed: "+err.Error(),
			logging.Params{"data_id": dataID, "error_type": "ValidationError", "elapsed_time": elapsed})
		return err
	}

	s.log.Info(FeatureDataProcessing, ModuleAnalytics, "process_data", "Data processing completed",
		logging.Params{
			"data_id":      dataID,
			"elapsed_time": elapsed,
			"result":       map[string]any{"processed_records": size, "status": "success"},
		})
	return nil
}

// SaveFile simulates a file write.
func (s *Simulator) SaveFile(filename, content string) {
	s.log.Info(FeatureFileOperations, ModuleFileHandler, "save_file", "Attempting to save file",
		logging.Params{"filename": filename, "content_size": len(content)})

	elapsed := s.work(50*time.Millisecond, 51*time.Millisecond)

	s.log.Info(FeatureFileOperations, ModuleFileHandler, "save_file", "File saved successfully",
		logging.Params{"filename": filename, "bytes_written": len(content), "duration": elapsed})
}

// MakeRequest simulates an API call answering 200, 404 or 500.
func (s *Simulator) MakeRequest(endpoint, method string) int {
	requestID := uuid.New().String()
	s.log.Info(FeatureAPICalls, ModuleAPIClient, "make_request", "Making API request",
		logging.Params{"request_id": requestID, "endpoint": endpoint, "method": method})

	elapsed := s.work(100*time.Millisecond, 300*time.Millisecond)

	status := []int{200, 200, 200, 404, 500}[s.intn(5)]
	params := logging.Params{"request_id": requestID, "status_code": status, "response_time": elapsed, "duration": elapsed}
	if status == 200 {
		s.log.Info(FeatureAPICalls, ModuleAPIClient, "make_request", "API request successful", params)
	} else {
		s.log.Error(FeatureAPICalls, ModuleAPIClient, "make_request", "API request failed", params)
	}
	return status
}

// GenerateReport touches the analytics, database and file modules under
// one feature.
func (s *Simulator) GenerateReport() {
	reportID := fmt.Sprintf("report_%d", 10000+s.intn(90000))

	s.log.Info(FeatureReportGeneration, ModuleAnalytics, "generate_report", "Starting report generation",
		logging.Params{"report_id": reportID})
	s.log.Debug(FeatureReportGeneration, ModuleDatabase, "generate_report", "Fetching data from database",
		logging.Params{"report_id": reportID, "query": "SELECT * FROM metrics"})

	elapsed := s.work(200*time.Millisecond, 300*time.Millisecond)

	s.log.Info(FeatureReportGeneration, ModuleFileHandler, "generate_report", "Writing report to file",
		logging.Params{"report_id": reportID, "filename": reportID + ".pdf"})
	s.log.Info(FeatureReportGeneration, ModuleAnalytics, "generate_report", "Report generation completed",
		logging.Params{"report_id": reportID, "duration": elapsed})
}
