package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/set-night/chatfeedback/internal/domain"
)

const (
	historyFile  = "history.jsonl"
	feedbackFile = "feedback.jsonl"
)

type turnLine struct {
	ChatID string `json:"chat_id"`
	domain.Turn
}

// FileStore appends one JSON object per line to history.jsonl and
// feedback.jsonl under its directory. Each line is written with a single
// write call, so a crash loses at most the last record.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) AppendTurn(_ context.Context, chatID string, turn domain.Turn) error {
	return s.appendLine(historyFile, turnLine{ChatID: chatID, Turn: turn})
}

func (s *FileStore) Turns(_ context.Context, chatID string) ([]domain.Turn, error) {
	var turns []domain.Turn
	err := s.scan(historyFile, func(line []byte) error {
		var tl turnLine
		if err := json.Unmarshal(line, &tl); err != nil {
			return err
		}
		if tl.ChatID == chatID {
			turns = append(turns, tl.Turn)
		}
		return nil
	})
	return turns, err
}

func (s *FileStore) AppendFeedback(_ context.Context, rec domain.FeedbackRecord) error {
	return s.appendLine(feedbackFile, rec)
}

func (s *FileStore) Feedback(_ context.Context, chatID string) ([]domain.FeedbackRecord, error) {
	var records []domain.FeedbackRecord
	err := s.scan(feedbackFile, func(line []byte) error {
		var rec domain.FeedbackRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		if rec.ChatID == chatID {
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) appendLine(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", name, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func (s *FileStore) scan(name string, fn func(line []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			return fmt.Errorf("%s line %d: %w", name, n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}
