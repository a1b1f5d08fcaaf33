package overlay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kjans/mboxkit/model"
)

// The overlay file is JSON Lines, one header edit per line:
//
//	{"message_id":"...","header":"Subject","value":"edited"}
//
// Edits are collected per message; a later line for the same message and
// header wins. The overlay lives outside the parsed messages: export
// applies it, parse results are never written back.

type editRecord struct {
	MessageID string `json:"message_id"`
	Header    string `json:"header"`
	Value     string `json:"value"`
}

// Load reads an overlay file. A missing file is an empty overlay, not an
// error, so the export path works without one.
func Load(path string) (model.EditOverlay, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.EditOverlay{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open overlay file: %w", err)
	}
	defer file.Close()

	edits := model.EditOverlay{}
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}

		var record editRecord
		if err := json.Unmarshal(text, &record); err != nil {
			return nil, fmt.Errorf("parse overlay line %d: %w", line, err)
		}
		if record.MessageID == "" || strings.TrimSpace(record.Header) == "" {
			return nil, fmt.Errorf("overlay line %d: message_id and header are required", line)
		}

		if edits[record.MessageID] == nil {
			edits[record.MessageID] = map[string]string{}
		}
		edits[record.MessageID][record.Header] = record.Value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read overlay file: %w", err)
	}

	return edits, nil
}

// Save writes the overlay back out in deterministic order so files diff
// cleanly between edit sessions.
func Save(path string, edits model.EditOverlay) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open overlay file for write: %w", err)
	}

	writer := bufio.NewWriter(file)

	ids := make([]string, 0, len(edits))
	for id := range edits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		headers := make([]string, 0, len(edits[id]))
		for name := range edits[id] {
			headers = append(headers, name)
		}
		sort.Strings(headers)

		for _, name := range headers {
			data, err := json.Marshal(editRecord{MessageID: id, Header: name, Value: edits[id][name]})
			if err != nil {
				file.Close()
				return fmt.Errorf("encode overlay record: %w", err)
			}
			if _, err := writer.Write(data); err != nil {
				file.Close()
				return fmt.Errorf("write overlay record: %w", err)
			}
			if err := writer.WriteByte('\n'); err != nil {
				file.Close()
				return fmt.Errorf("write newline: %w", err)
			}
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush overlay file: %w", err)
	}
	return file.Close()
}
