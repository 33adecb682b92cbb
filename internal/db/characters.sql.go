package db

import (
	"context"
	"time"
)

const getUserWalletAddress = `
SELECT cardano_wallet_address FROM users WHERE id = ?
`

func (q *Queries) GetUserWalletAddress(ctx context.Context, id string) (*string, error) {
	row := q.db.QueryRowContext(ctx, getUserWalletAddress, id)
	var cardano_wallet_address *string
	err := row.Scan(&cardano_wallet_address)
	return cardano_wallet_address, err
}

const getUserCharacterSnapshot = `
SELECT
    uc.id, uc.user_id, uc.character_id,
    c.name, c.archetype, c.rarity, c.title, c.image_url, c.description,
    uc.level, uc.experience, uc.total_battles, uc.total_wins,
    uc.current_attack, uc.current_defense, uc.current_speed,
    uc.current_max_health, uc.current_mental_health, uc.bond_level,
    uc.serial_number, uc.acquired_at
FROM user_characters uc
LEFT JOIN characters c ON c.id = uc.character_id
WHERE uc.id = ?
`

type GetUserCharacterSnapshotRow struct {
	ID                  string
	UserID              string
	CharacterID         string
	Name                *string
	Archetype           *string
	Rarity              *string
	Title               *string
	ImageUrl            *string
	Description         *string
	Level               *int64
	Experience          *int64
	TotalBattles        *int64
	TotalWins           *int64
	CurrentAttack       *int64
	CurrentDefense      *int64
	CurrentSpeed        *int64
	CurrentMaxHealth    *int64
	CurrentMentalHealth *int64
	BondLevel           *int64
	SerialNumber        *string
	AcquiredAt          *time.Time
}

func (q *Queries) GetUserCharacterSnapshot(ctx context.Context, id string) (GetUserCharacterSnapshotRow, error) {
	row := q.db.QueryRowContext(ctx, getUserCharacterSnapshot, id)
	var i GetUserCharacterSnapshotRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CharacterID,
		&i.Name,
		&i.Archetype,
		&i.Rarity,
		&i.Title,
		&i.ImageUrl,
		&i.Description,
		&i.Level,
		&i.Experience,
		&i.TotalBattles,
		&i.TotalWins,
		&i.CurrentAttack,
		&i.CurrentDefense,
		&i.CurrentSpeed,
		&i.CurrentMaxHealth,
		&i.CurrentMentalHealth,
		&i.BondLevel,
		&i.SerialNumber,
		&i.AcquiredAt,
	)
	return i, err
}

const getCharacter = `
SELECT id, name, title, archetype, rarity, description, image_url,
       base_attack, base_defense, base_speed, base_health, base_mental_health
FROM characters
WHERE id = ?
`

func (q *Queries) GetCharacter(ctx context.Context, id string) (Character, error) {
	row := q.db.QueryRowContext(ctx, getCharacter, id)
	var i Character
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Title,
		&i.Archetype,
		&i.Rarity,
		&i.Description,
		&i.ImageUrl,
		&i.BaseAttack,
		&i.BaseDefense,
		&i.BaseSpeed,
		&i.BaseHealth,
		&i.BaseMentalHealth,
	)
	return i, err
}

const createUserCharacter = `
INSERT INTO user_characters (
    id, user_id, character_id, serial_number, level, experience,
    total_battles, total_wins, current_attack, current_defense, current_speed,
    current_max_health, current_mental_health, bond_level, acquired_at
) VALUES (?, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, ?, 0, ?)
`

type CreateUserCharacterParams struct {
	ID                  string
	UserID              string
	CharacterID         string
	SerialNumber        *string
	Level               int64
	CurrentAttack       int64
	CurrentDefense      int64
	CurrentSpeed        int64
	CurrentMaxHealth    int64
	CurrentMentalHealth int64
	AcquiredAt          time.Time
}

func (q *Queries) CreateUserCharacter(ctx context.Context, arg CreateUserCharacterParams) error {
	_, err := q.db.ExecContext(ctx, createUserCharacter,
		arg.ID,
		arg.UserID,
		arg.CharacterID,
		arg.SerialNumber,
		arg.Level,
		arg.CurrentAttack,
		arg.CurrentDefense,
		arg.CurrentSpeed,
		arg.CurrentMaxHealth,
		arg.CurrentMentalHealth,
		arg.AcquiredAt,
	)
	return err
}

const deleteUserCharacter = `
DELETE FROM user_characters WHERE id = ?
`

func (q *Queries) DeleteUserCharacter(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteUserCharacter, id)
	return err
}
