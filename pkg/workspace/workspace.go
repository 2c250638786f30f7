// Package workspace manages per-run output directories where pipeline
// artifacts (raw solutions, feedback, refined concepts, phase envelopes,
// evidence) are written as JSON.
package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Workspace struct {
	BaseDir string
	RunID   string
	RunDir  string
}

// GenerateRunID creates YYYYMMDD-HHMMSS-{4 hex bytes}
func GenerateRunID() string {
	now := time.Now()
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback: use nanoseconds if crypto/rand fails
		return fmt.Sprintf("%s-%08x", now.Format("20060102-150405"), now.UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("%s-%s", now.Format("20060102-150405"), hex.EncodeToString(b))
}

func New(baseDir string) (*Workspace, error) {
	runID := GenerateRunID()
	runDir := filepath.Join(baseDir, "runs", runID)

	dirs := []string{
		filepath.Join(runDir, "artifacts"),
		filepath.Join(runDir, "phases"),
		filepath.Join(runDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Workspace{BaseDir: baseDir, RunID: runID, RunDir: runDir}, nil
}

func (w *Workspace) ArtifactPath(name string) string {
	return filepath.Join(w.RunDir, "artifacts", name+".json")
}

func (w *Workspace) PhasePath(phase string) string {
	return filepath.Join(w.RunDir, "phases", phase+".json")
}

// WriteArtifact writes a pipeline artifact as indented JSON and returns
// its path.
func (w *Workspace) WriteArtifact(name string, data interface{}) (string, error) {
	return writeJSON(w.ArtifactPath(name), data)
}

// WritePhase records a phase envelope under phases/.
func (w *Workspace) WritePhase(phase string, data interface{}) (string, error) {
	return writeJSON(w.PhasePath(phase), data)
}

// WriteReport writes a rendered report at the run root and returns its
// path.
func (w *Workspace) WriteReport(name string, content []byte) (string, error) {
	path := filepath.Join(w.RunDir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, data interface{}) (string, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return path, nil
}
