package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/quadlab/internal/config"
	"github.com/san-kum/quadlab/internal/quad"
)

// Store persists integration runs under a base directory, one subdirectory
// per run: metadata.json with the configuration echo and outcome, trace.csv
// with the per-iteration convergence trace.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                  string    `json:"id"`
	Field               string    `json:"field"`
	Timestamp           time.Time `json:"timestamp"`
	XMin                float64   `json:"x_min"`
	XMax                float64   `json:"x_max"`
	YMin                float64   `json:"y_min"`
	YMax                float64   `json:"y_max"`
	MaxIterations       int       `json:"max_iterations"`
	InitialNStep        int       `json:"initial_nstep"`
	MaxError            float64   `json:"max_error"`
	InLoge              bool      `json:"in_loge"`
	FastDensityIncrease bool      `json:"fast_density_increase"`
	Value               float64   `json:"value"`
	ErrEstimate         float64   `json:"err_estimate"`
	Iterations          int       `json:"iterations"`
	Evaluations         int       `json:"evaluations"`
	Converged           bool      `json:"converged"`
}

var traceHeader = []string{"iter", "np_x", "np_y", "sum", "prev_sum", "err_pct", "new_evals"}

// Save writes one run. Unconverged runs are saved too: the trace is the
// diagnostic record of why the budget ran out.
func (s *Store) Save(cfg *config.Config, res *quad.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Field, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                  runID,
		Field:               cfg.Field,
		Timestamp:           time.Now(),
		XMin:                cfg.X.Min,
		XMax:                cfg.X.Max,
		YMin:                cfg.Y.Min,
		YMax:                cfg.Y.Max,
		MaxIterations:       cfg.MaxIterations,
		InitialNStep:        cfg.InitialNStep,
		MaxError:            cfg.MaxError,
		InLoge:              cfg.InLoge,
		FastDensityIncrease: cfg.FastDensityIncrease,
		Value:               res.Value,
		ErrEstimate:         res.ErrEstimate,
		Iterations:          res.Iterations,
		Evaluations:         res.Evaluations,
		Converged:           res.Converged,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(traceHeader); err != nil {
		return "", err
	}
	for _, it := range res.Trace {
		row := []string{
			strconv.Itoa(it.Index),
			strconv.Itoa(it.NP0),
			strconv.Itoa(it.NP1),
			strconv.FormatFloat(it.Sum, 'g', -1, 64),
			strconv.FormatFloat(it.PrevSum, 'g', -1, 64),
			strconv.FormatFloat(it.ErrPct, 'g', -1, 64),
			strconv.Itoa(it.NewEvals),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]quad.Iteration, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := make([]quad.Iteration, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < len(traceHeader) {
			continue
		}
		var it quad.Iteration
		it.Index, _ = strconv.Atoi(record[0])
		it.NP0, _ = strconv.Atoi(record[1])
		it.NP1, _ = strconv.Atoi(record[2])
		it.Sum, _ = strconv.ParseFloat(record[3], 64)
		it.PrevSum, _ = strconv.ParseFloat(record[4], 64)
		it.ErrPct, _ = strconv.ParseFloat(record[5], 64)
		it.NewEvals, _ = strconv.Atoi(record[6])
		trace = append(trace, it)
	}

	return trace, nil
}
