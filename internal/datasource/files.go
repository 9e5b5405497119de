package datasource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// ReadStatsFile reads an array of statistics rows
func ReadStatsFile(path string) ([]RawPlayerStat, error) {
	var rows []RawPlayerStat
	if err := readJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadStats reads one or more statistics files (typically one per season)
// and returns their records in file order.
func LoadStats(paths ...string) ([]models.GameStatRecord, error) {
	var records []models.GameStatRecord
	for _, path := range paths {
		rows, err := ReadStatsFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, Records(rows)...)
	}
	return records, nil
}

// WriteStatsFile writes statistics rows as indented JSON
func WriteStatsFile(path string, rows []RawPlayerStat) error {
	if rows == nil {
		rows = []RawPlayerStat{}
	}
	return WriteJSON(path, rows)
}

// ReadPropsFile reads an array of raw props
func ReadPropsFile(path string) ([]RawProp, error) {
	var props []RawProp
	if err := readJSON(path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// LoadProps reads a props file into typed prop lines
func LoadProps(path string) ([]models.PropLine, error) {
	props, err := ReadPropsFile(path)
	if err != nil {
		return nil, err
	}
	return PropLines(props), nil
}

// WritePropsFile writes raw props as indented JSON
func WritePropsFile(path string, props []RawProp) error {
	if props == nil {
		props = []RawProp{}
	}
	return WriteJSON(path, props)
}

// WriteJSON writes v as indented JSON, creating parent directories. The file
// is written beside path and renamed over it, so readers see either the old
// or the new content.
func WriteJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
