// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"finetune.quickstart/pkg/models"
)

// Record is one training example: an ordered conversation that becomes a single
// line of the training file.
type Record struct {
	Messages []models.ChatMessage `json:"messages" yaml:"messages"`
}

// Validate checks the record against the chat training format
func (r Record) Validate() error {
	if len(r.Messages) == 0 {
		return errors.New("record has no messages")
	}
	for i, msg := range r.Messages {
		if !msg.Role.IsValid() {
			return fmt.Errorf("message %d: invalid role %q (expected system, user or assistant)", i, msg.Role)
		}
	}
	return nil
}

// ReadConversation decodes the first record of r. It accepts a single JSON object,
// pretty-printed or not, and the first line of a JSONL file.
func ReadConversation(r io.Reader) (Record, error) {
	var record Record
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return record, errors.New("messages file is empty")
		}
		return record, fmt.Errorf("failed to parse messages file: %w", err)
	}
	if err := record.Validate(); err != nil {
		return record, err
	}
	return record, nil
}
