// Package aggregate accumulates metric samples per configuration across
// seeds and drives a full aggregation run over a result tree.
package aggregate

import "github.com/nvandessel/resultagg/internal/metricfile"

// Store maps a configuration key to its metric sample lists.
// Keys keep first-insertion order.
type Store struct {
	keys    []string
	samples map[string]map[string][]float64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{samples: make(map[string]map[string][]float64)}
}

// Record appends value to the samples of (key, metric).
func (s *Store) Record(key, metric string, value float64) {
	metrics, ok := s.samples[key]
	if !ok {
		metrics = make(map[string][]float64)
		s.samples[key] = metrics
		s.keys = append(s.keys, key)
	}
	metrics[metric] = append(metrics[metric], value)
}

// Touch registers key without recording a sample, so a configuration whose
// file matched no requested metric still gets a row.
func (s *Store) Touch(key string) {
	if _, ok := s.samples[key]; ok {
		return
	}
	s.samples[key] = make(map[string][]float64)
	s.keys = append(s.keys, key)
}

// Configurations returns the configuration keys in first-insertion order.
func (s *Store) Configurations() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Samples returns a copy of the samples of (key, metric); empty if none were recorded.
func (s *Store) Samples(key, metric string) []float64 {
	values := s.samples[key][metric]
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// Len returns the number of configurations.
func (s *Store) Len() int {
	return len(s.keys)
}

// Recorder returns a metricfile.Recorder that records into key.
func (s *Store) Recorder(key string) metricfile.Recorder {
	return keyRecorder{store: s, key: key}
}

type keyRecorder struct {
	store *Store
	key   string
}

func (r keyRecorder) Record(metric string, value float64) {
	r.store.Record(r.key, metric, value)
}
