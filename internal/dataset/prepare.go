// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRecords reads a YAML or JSON document holding a list of records.
// JSON input parses through the YAML decoder unchanged.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", path, err)
	}

	return records, nil
}

// Write emits records as line-delimited JSON, one compact object per line.
// Every record is validated first; nothing is written if any record is invalid.
func Write(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to write")
	}
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	buffered := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffered)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return err
		}
	}

	return buffered.Flush()
}

// Prepare converts a YAML/JSON list of records into a training file and returns the
// number of records written.
func Prepare(inputPath, outputPath string) (int, error) {
	records, err := LoadRecords(inputPath)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	if err := Write(out, records); err != nil {
		out.Close()
		_ = os.Remove(outputPath)
		return 0, err
	}

	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", outputPath, err)
	}

	return len(records), nil
}
