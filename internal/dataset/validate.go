// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"finetune.quickstart/pkg/models"
)

// maxLineSize bounds a single training record
const maxLineSize = 16 * 1024 * 1024

// LineError describes why a line of a training file is not a valid record
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e LineError) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Report is the outcome of validating a training file
type Report struct {
	Lines   int         `json:"lines"`
	Records int         `json:"records"`
	Errors  []LineError `json:"errors,omitempty"`
}

// Valid reports whether every line is a valid record
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks every line of a line-delimited training file. The returned error is
// only set for read failures; format problems, oversized lines included, are collected
// in the report.
func Validate(r io.Reader) (*Report, error) {
	report := &Report{}
	reader := bufio.NewReaderSize(r, 64*1024)

	for {
		line, tooLong, err := readLine(reader, maxLineSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read training data at line %d: %w", report.Lines+1, err)
		}
		atEOF := err != nil
		if atEOF && len(line) == 0 && !tooLong {
			break
		}

		report.Lines++
		switch {
		case tooLong:
			report.Errors = append(report.Errors, LineError{
				Line:   report.Lines,
				Reason: fmt.Sprintf("line is longer than %d MiB", maxLineSize/(1024*1024)),
			})
		default:
			if err := ValidateLine(line); err != nil {
				report.Errors = append(report.Errors, LineError{Line: report.Lines, Reason: err.Error()})
			} else {
				report.Records++
			}
		}

		if atEOF {
			break
		}
	}

	if report.Lines == 0 {
		report.Errors = append(report.Errors, LineError{Reason: "file contains no records"})
	}

	return report, nil
}

// readLine reads one line without its terminator. A line longer than limit is
// consumed and dropped, and tooLong is set instead.
func readLine(reader *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit+len("\r\n") {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line = bytes.TrimSuffix(bytes.TrimSuffix(line, []byte("\n")), []byte("\r"))
		return line, tooLong, err
	}
}

// ValidateFile opens and validates a training file
func ValidateFile(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	return Validate(file)
}

// ValidateLine checks that a single line is a JSON object with a non-empty "messages"
// array whose entries all carry a "role" from {system, user, assistant} and a "content".
func ValidateLine(line []byte) error {
	if len(bytes.TrimSpace(line)) == 0 {
		return errors.New("blank line")
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(line, &record); err != nil {
		return fmt.Errorf("not a JSON object: %v", err)
	}

	rawMessages, ok := record["messages"]
	if !ok {
		return errors.New(`missing "messages" field`)
	}

	var messages []map[string]json.RawMessage
	if err := json.Unmarshal(rawMessages, &messages); err != nil {
		return errors.New(`"messages" must be an array of objects`)
	}
	if len(messages) == 0 {
		return errors.New(`"messages" is empty`)
	}

	for i, message := range messages {
		rawRole, ok := message["role"]
		if !ok {
			return fmt.Errorf("message %d: missing \"role\"", i)
		}
		var role string
		if err := json.Unmarshal(rawRole, &role); err != nil {
			return fmt.Errorf("message %d: \"role\" must be a string", i)
		}
		if !models.ChatRole(role).IsValid() {
			return fmt.Errorf("message %d: invalid role %q (expected system, user or assistant)", i, role)
		}

		content, ok := message["content"]
		if !ok {
			return fmt.Errorf("message %d: missing \"content\"", i)
		}
		if bytes.Equal(bytes.TrimSpace(content), []byte("null")) {
			return fmt.Errorf("message %d: \"content\" is null", i)
		}
	}

	return nil
}
