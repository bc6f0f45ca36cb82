package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/til/internal/common"
)

// SessionKey is the metadata key holding the persisted session.
const SessionKey = "session"

// SessionStorage persists the current session between runs.
type SessionStorage interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// MetadataStorage keeps the session as JSON in the metadata table.
type MetadataStorage struct {
	repo metadata.Repository
}

func NewMetadataStorage(repo metadata.Repository) *MetadataStorage {
	return &MetadataStorage{repo: repo}
}

func (m *MetadataStorage) Load(ctx context.Context) (*models.Session, error) {
	raw, err := m.repo.Get(ctx, SessionKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode stored session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func (m *MetadataStorage) Save(ctx context.Context, s *models.Session) error {
	if s == nil {
		return m.Clear(ctx)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.repo.Put(ctx, SessionKey, raw)
}

func (m *MetadataStorage) Clear(ctx context.Context) error {
	return m.repo.Delete(ctx, SessionKey)
}

// memoryStorage is used when no persistent storage is configured.
type memoryStorage struct {
	s *models.Session
}

func (m *memoryStorage) Load(context.Context) (*models.Session, error) { return m.s.Clone(), nil }
func (m *memoryStorage) Save(_ context.Context, s *models.Session) error {
	m.s = s.Clone()
	return nil
}
func (m *memoryStorage) Clear(context.Context) error {
	m.s = nil
	return nil
}
