package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CharacterRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewCharacterRepository(queries *db.Queries, logger zerolog.Logger) *CharacterRepository {
	return &CharacterRepository{
		queries: queries,
		logger:  logger,
	}
}

func (r *CharacterRepository) GetSnapshot(ctx context.Context, userCharacterID string) (*domain.CharacterSnapshot, error) {
	row, err := r.queries.GetUserCharacterSnapshot(ctx, userCharacterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.CharacterSnapshot{
		UserCharacterID:     row.ID,
		UserID:              row.UserID,
		CharacterID:         row.CharacterID,
		Name:                row.Name,
		Archetype:           row.Archetype,
		Rarity:              row.Rarity,
		Title:               row.Title,
		ImageURL:            row.ImageUrl,
		Description:         row.Description,
		Level:               row.Level,
		Experience:          row.Experience,
		TotalBattles:        row.TotalBattles,
		TotalWins:           row.TotalWins,
		CurrentAttack:       row.CurrentAttack,
		CurrentDefense:      row.CurrentDefense,
		CurrentSpeed:        row.CurrentSpeed,
		CurrentMaxHealth:    row.CurrentMaxHealth,
		CurrentMentalHealth: row.CurrentMentalHealth,
		BondLevel:           row.BondLevel,
		SerialNumber:        row.SerialNumber,
		AcquiredAt:          row.AcquiredAt,
	}, nil
}

func (r *CharacterRepository) GetTemplate(ctx context.Context, characterID string) (*domain.CharacterTemplate, error) {
	c, err := r.queries.GetCharacter(ctx, characterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.CharacterTemplate{
		ID:               c.ID,
		Name:             c.Name,
		Archetype:        c.Archetype,
		Rarity:           c.Rarity,
		BaseAttack:       c.BaseAttack,
		BaseDefense:      c.BaseDefense,
		BaseSpeed:        c.BaseSpeed,
		BaseHealth:       c.BaseHealth,
		BaseMentalHealth: c.BaseMentalHealth,
	}, nil
}

// CreateFromTemplate instantiates a level 1 character for the user with the
// template's base stats and returns the new instance id.
func (r *CharacterRepository) CreateFromTemplate(ctx context.Context, userID string, tpl *domain.CharacterTemplate, acquiredAt time.Time) (string, error) {
	id := uuid.NewString()
	serial := fmt.Sprintf("%s-%s", tpl.ID, id[:8])

	err := r.queries.CreateUserCharacter(ctx, db.CreateUserCharacterParams{
		ID:                  id,
		UserID:              userID,
		CharacterID:         tpl.ID,
		SerialNumber:        &serial,
		Level:               1,
		CurrentAttack:       tpl.BaseAttack,
		CurrentDefense:      tpl.BaseDefense,
		CurrentSpeed:        tpl.BaseSpeed,
		CurrentMaxHealth:    tpl.BaseHealth,
		CurrentMentalHealth: tpl.BaseMentalHealth,
		AcquiredAt:          acquiredAt,
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug().Str("user_character_id", id).Str("character_id", tpl.ID).Msg("character instance created")
	return id, nil
}

func (r *CharacterRepository) Delete(ctx context.Context, userCharacterID string) error {
	return r.queries.DeleteUserCharacter(ctx, userCharacterID)
}
