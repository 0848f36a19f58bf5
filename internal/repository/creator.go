package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"scribble/internal/cache"
	"scribble/internal/models"
)

// CreatorRepository serves the top-creators leaderboard.
type CreatorRepository interface {
	Top(ctx context.Context, limit int) ([]models.TopCreator, error)
}

// fileCreatorRepository reads creators from a flat JSON array on disk.
type fileCreatorRepository struct {
	path string
}

// NewFileCreatorRepository reads the leaderboard from path. A missing file
// is an empty leaderboard.
func NewFileCreatorRepository(path string) CreatorRepository {
	return &fileCreatorRepository{path: path}
}

func (r *fileCreatorRepository) Top(ctx context.Context, limit int) ([]models.TopCreator, error) {
	var creators []models.TopCreator
	err := cache.Aside(ctx, cache.TopCreatorsKey(limit), &creators, cache.TopCreatorsTTL, func() error {
		all, err := r.load()
		if err != nil {
			return err
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].Views > all[j].Views })
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		creators = all
		return nil
	})
	if err != nil {
		return nil, err
	}
	if creators == nil {
		creators = []models.TopCreator{}
	}
	return creators, nil
}

func (r *fileCreatorRepository) load() ([]models.TopCreator, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.TopCreator{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read creators file: %w", err)
	}

	var creators []models.TopCreator
	if err := json.Unmarshal(raw, &creators); err != nil {
		return nil, fmt.Errorf("decode creators file: %w", err)
	}
	return creators, nil
}
