package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

func isStructured(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// readKeywords accepts a YAML or JSON list, or plain text with one keyword
// per line. Blank lines and lines starting with # are skipped.
func readKeywords(path string) ([]string, error) {
	if isStructured(path) {
		var keywords []string
		if err := decodeFile(path, &keywords); err != nil {
			return nil, err
		}
		return keywords, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	return keywords, scanner.Err()
}

func readDataset(path string) ([]models.TrainingDataPoint, error) {
	var data []models.TrainingDataPoint
	if err := decodeFile(path, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: dataset is empty", path)
	}
	return data, nil
}

func readRankings(path string) ([]models.KeywordRanking, error) {
	var rankings []models.KeywordRanking
	if err := decodeFile(path, &rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}

func readSnapshot(path string) (intent.Snapshot, error) {
	var snap intent.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse model %s: %w", path, err)
	}
	return snap, nil
}

func writeSnapshot(path string, snap intent.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// decodeFile reads YAML, which also covers JSON documents.
func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
