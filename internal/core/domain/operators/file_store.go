// internal/core/domain/operators/file_store.go
package operators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type adminsFile struct {
	Admins []int64 `json:"admins"`
}

// FileStore хранит админов в JSON-файле вида {"admins":[...]}
type FileStore struct {
	mu   sync.Mutex
	path string
	ids  []int64
}

// NewFileStore создает хранилище. Файл читается в Load.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает файл. Отсутствующий файл - пустой список.
func (s *FileStore) Load(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.ids = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", s.path, err)
	}

	var file adminsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("некорректный формат %s: %w", s.path, err)
	}
	s.ids = file.Admins
	return append([]int64(nil), s.ids...), nil
}

func (s *FileStore) Add(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.ids {
		if id == userID {
			return nil
		}
	}
	return s.write(append(append([]int64(nil), s.ids...), userID))
}

func (s *FileStore) Remove(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]int64, 0, len(s.ids))
	for _, id := range s.ids {
		if id != userID {
			next = append(next, id)
		}
	}
	return s.write(next)
}

// write атомарно заменяет файл через временный
func (s *FileStore) write(ids []int64) error {
	data, err := json.MarshalIndent(adminsFile{Admins: ids}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".admins-*.json")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", s.path, err)
	}

	s.ids = ids
	return nil
}
