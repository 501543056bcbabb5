// Package storage keeps a bounded per-guild history of help requests on a
// persistent JSON datastore.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const helpHistoryLimit = 20

// HelpRequest is one recorded invocation of the help command.
type HelpRequest struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Query     string    `json:"query"`
	Datetime  time.Time `json:"datetime"`
}

// Record is the per-guild document.
type Record struct {
	HelpHistory []HelpRequest `json:"help_history"`
}

type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// AddHelpRequest appends a request to the guild's history, trimming to the
// most recent entries.
func (s *Storage) AddHelpRequest(guildID string, req HelpRequest) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	record.HelpHistory = append(record.HelpHistory, req)
	if len(record.HelpHistory) > helpHistoryLimit {
		record.HelpHistory = record.HelpHistory[len(record.HelpHistory)-helpHistoryLimit:]
	}
	s.ds.Add(guildID, record)
	return nil
}

// HelpHistory returns the guild's recorded requests, oldest first.
func (s *Storage) HelpHistory(guildID string) ([]HelpRequest, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.HelpHistory, nil
}

// guildRecord loads the guild document, creating an empty one when missing.
// Values round-trip through JSON because the datastore rehydrates them as
// generic maps.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		return &Record{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal guild record: %w", err)
	}
	record := &Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("unmarshal guild record: %w", err)
	}
	return record, nil
}
