package settings

import (
	"context"

	"github.com/pathakanu/bendonHelper/internal/model"
)

// Profile returns the shared profile. Fields that are empty in the shared
// scope fall back to the device-local cache written by older popup versions.
func (s *Store) Profile(ctx context.Context) (model.Profile, error) {
	shared, err := s.Get(ctx, model.ScopeSync, emptyProfile())
	if err != nil {
		return model.Profile{}, err
	}
	local, err := s.Get(ctx, model.ScopeLocal, emptyProfile())
	if err != nil {
		return model.Profile{}, err
	}

	for _, k := range model.ProfileKeys {
		if shared[k] == "" {
			shared[k] = local[k]
		}
	}
	return model.ProfileFromMap(shared), nil
}

// MigrateLocalProfile copies cached local profile values into the shared scope
// where the shared value is still empty. It returns the keys it copied.
func (s *Store) MigrateLocalProfile(ctx context.Context) ([]string, error) {
	shared, err := s.Get(ctx, model.ScopeSync, emptyProfile())
	if err != nil {
		return nil, err
	}
	local, err := s.Get(ctx, model.ScopeLocal, emptyProfile())
	if err != nil {
		return nil, err
	}

	updates := make(map[string]string)
	var copied []string
	for _, k := range model.ProfileKeys {
		if shared[k] == "" && local[k] != "" {
			updates[k] = local[k]
			copied = append(copied, k)
		}
	}
	if len(updates) == 0 {
		return nil, nil
	}
	if err := s.Set(ctx, model.ScopeSync, updates); err != nil {
		return nil, err
	}
	return copied, nil
}

func emptyProfile() map[string]string {
	defaults := make(map[string]string, len(model.ProfileKeys))
	for _, k := range model.ProfileKeys {
		defaults[k] = ""
	}
	return defaults
}
