package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/refresh-booking/internal/model"
)

// GormDirectory: справочник пользователей и провайдеров.
type GormDirectory struct {
	users     UserRepository
	providers ProviderRepository
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{
		users:     NewGormUserRepository(db),
		providers: NewGormProviderRepository(db),
	}
}

func (d *GormDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := d.users.GetByID(ctx, id)
	return found(err)
}

func (d *GormDirectory) ProviderExists(ctx context.Context, id string) (bool, error) {
	_, err := d.providers.GetByID(ctx, id)
	return found(err)
}

// ProviderIDs - идентификаторы провайдеров в порядке id.
func (d *GormDirectory) ProviderIDs(ctx context.Context) ([]string, error) {
	providers, err := d.providers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	ids := make([]string, 0, len(providers))
	for _, p := range providers {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// SeedDemo заводит демо-справочник (user1..user4, провайдеры 1..3), если записей ещё нет.
func (d *GormDirectory) SeedDemo(ctx context.Context) error {
	users := []model.User{
		{ID: "user1", DisplayName: "Kim Ye-yak"},
		{ID: "user2", DisplayName: "Park Seon-ho"},
		{ID: "user3", DisplayName: "Lee Min-jun"},
		{ID: "user4", DisplayName: "Choi Yu-ri"},
	}
	for i := range users {
		if err := d.users.EnsureExists(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].ID, err)
		}
	}

	providers := []model.Provider{
		{ID: "1", DisplayName: "Lee Chun-hee", Specialty: "swedish massage", ImageURL: "https://picsum.photos/seed/chunhee/300/300"},
		{ID: "2", DisplayName: "Choi Deok-sam", Specialty: "deep tissue massage", ImageURL: "https://picsum.photos/seed/deoksam/300/300"},
		{ID: "3", DisplayName: "Hong Ju-hee", Specialty: "aromatherapy", ImageURL: "https://picsum.photos/seed/juhee/300/300"},
	}
	for i := range providers {
		if err := d.providers.EnsureExists(ctx, &providers[i]); err != nil {
			return fmt.Errorf("seed provider %s: %w", providers[i].ID, err)
		}
	}
	return nil
}
