package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

var _ repository.EntitlementStore = (*EntitlementStore)(nil)

// EntitlementStore keeps one JSON document per subject under "<prefix>_<subjectId>".
// Records never expire on their own; expiry is decided by the lifecycle controller.
type EntitlementStore struct {
	client *Client
	prefix string
}

func NewEntitlementStore(client *Client, prefix string) *EntitlementStore {
	if prefix == "" {
		prefix = "betiq_vip"
	}
	return &EntitlementStore{client: client, prefix: prefix}
}

func (s *EntitlementStore) key(subjectID string) string {
	return fmt.Sprintf("%s_%s", s.prefix, subjectID)
}

func (s *EntitlementStore) Get(ctx context.Context, subjectID string) (*model.Entitlement, error) {
	data, err := s.client.Get(ctx, s.key(subjectID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var e model.Entitlement
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("decode entitlement: %w", err)
	}
	e.SubjectID = subjectID
	return &e, nil
}

func (s *EntitlementStore) Set(ctx context.Context, subjectID string, e *model.Entitlement) error {
	if e == nil {
		return domain.ErrInvalidArgument
	}
	cp := *e
	cp.SubjectID = subjectID
	data, err := json.Marshal(&cp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(subjectID), data, 0)
}
