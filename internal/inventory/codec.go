package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EncodeState serializes both collections into their storage blobs.
func EncodeState(s State) (map[string][]byte, error) {
	items := s.Items
	if items == nil {
		items = []Item{}
	}
	logs := s.Logs
	if logs == nil {
		logs = []LogEntry{}
	}
	itemsRaw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("inventory: encode items: %w", err)
	}
	logsRaw, err := json.Marshal(logs)
	if err != nil {
		return nil, fmt.Errorf("inventory: encode logs: %w", err)
	}
	return map[string][]byte{ItemsKey: itemsRaw, LogsKey: logsRaw}, nil
}

// DecodeState rebuilds both collections from storage blobs. A missing key
// yields an empty collection. A blob that fails to parse also yields an empty
// collection, and the returned error wraps ErrMalformedState for each such
// key; the State is usable either way.
func DecodeState(blobs map[string][]byte) (State, error) {
	state := State{Items: []Item{}, Logs: []LogEntry{}}
	var errs []error
	if raw, ok := blobs[ItemsKey]; ok && len(raw) > 0 {
		var items []Item
		if err := json.Unmarshal(raw, &items); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrMalformedState, ItemsKey, err))
		} else if items != nil {
			state.Items = items
		}
	}
	if raw, ok := blobs[LogsKey]; ok && len(raw) > 0 {
		var logs []LogEntry
		if err := json.Unmarshal(raw, &logs); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrMalformedState, LogsKey, err))
		} else if logs != nil {
			state.Logs = logs
		}
	}
	return state, errors.Join(errs...)
}
