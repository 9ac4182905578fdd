package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"job-portal/internal/domain"
)

// fileState es el layout en disco: tres slots independientes.
type fileState struct {
	Token     string            `json:"token,omitempty"`
	User      *domain.User      `json:"user,omitempty"`
	Companies map[string]string `json:"company_names,omitempty"`
}

// FileStore guarda las credenciales en un archivo JSON del perfil local.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// DefaultSessionFile devuelve la ruta por defecto dentro del directorio de config del usuario.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "job-portal", "session.json")
}

func (s *FileStore) Load(_ context.Context) (domain.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	if err != nil {
		return domain.Credentials{}, false, err
	}
	if st.Token == "" || st.User == nil {
		return domain.Credentials{}, false, nil
	}
	return domain.Credentials{Token: st.Token, User: *st.User}, true, nil
}

func (s *FileStore) Save(_ context.Context, token string, user domain.User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	if err != nil {
		st = fileState{}
	}
	st.Token = token
	st.User = &user
	return s.write(st)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) CacheCompanyName(_ context.Context, userID, name string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(name) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	if err != nil {
		st = fileState{}
	}
	if st.Companies == nil {
		st.Companies = make(map[string]string)
	}
	st.Companies[userID] = name
	return s.write(st)
}

func (s *FileStore) CachedCompanyName(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	if err != nil {
		return "", false, err
	}
	name := st.Companies[userID]
	return name, name != "", nil
}

func (s *FileStore) read() (fileState, error) {
	var st fileState
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return fileState{}, fmt.Errorf("decode session file: %w", err)
	}
	return st, nil
}

// write reemplaza el archivo con rename para no dejar JSON truncado.
func (s *FileStore) write(st fileState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
