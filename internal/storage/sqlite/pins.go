package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage"
)

const pinColumns = `id, name, code, display_order, required_personal_recruits, required_team_volume,
	benefits, required_pv, bonus_percentage, pin_image, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPinLevel(row rowScanner) (*models.PinLevel, error) {
	var (
		level models.PinLevel
		image sql.NullString
	)
	err := row.Scan(
		&level.ID,
		&level.Name,
		&level.Code,
		&level.DisplayOrder,
		&level.RequiredPersonalRecruits,
		&level.RequiredTeamVolume,
		&level.Benefits,
		&level.RequiredPV,
		&level.BonusPercentage,
		&image,
		&level.IsActive,
		&level.CreatedAt,
		&level.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		level.PinImage = &image.String
	}
	return &level, nil
}

// ListPinLevels returns every PIN ordered by the cycles it requires.
func (s *SQLiteStore) ListPinLevels(ctx context.Context) ([]models.PinLevel, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+pinColumns+" FROM pin_levels ORDER BY display_order, created_at, name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pin levels: %w", err)
	}
	defer rows.Close()

	levels := []models.PinLevel{}
	for rows.Next() {
		level, err := scanPinLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pin level: %w", err)
		}
		levels = append(levels, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pin levels: %w", err)
	}
	return levels, nil
}

// GetPinLevel retrieves a PIN by ID.
func (s *SQLiteStore) GetPinLevel(ctx context.Context, id string) (*models.PinLevel, error) {
	level, err := scanPinLevel(s.db.QueryRowContext(ctx,
		"SELECT "+pinColumns+" FROM pin_levels WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pin level %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pin level: %w", err)
	}
	return level, nil
}

// CreatePinLevel inserts a PIN. Temporary draft IDs are replaced with a UUID.
func (s *SQLiteStore) CreatePinLevel(ctx context.Context, level *models.PinLevel) error {
	if models.IsTemporaryID(level.ID) {
		level.ID = uuid.New().String()
	}
	if level.Code == "" {
		level.Code = models.PinCode(level.Name)
	}
	now := time.Now().Unix()
	level.CreatedAt = now
	level.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pin_levels ("+pinColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		level.ID,
		level.Name,
		level.Code,
		level.DisplayOrder,
		level.RequiredPersonalRecruits,
		level.RequiredTeamVolume,
		level.Benefits,
		level.RequiredPV,
		level.BonusPercentage,
		level.PinImage,
		level.IsActive,
		level.CreatedAt,
		level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pin level: %w", err)
	}
	return nil
}

// UpdatePinLevel replaces every column of an existing PIN except created_at.
func (s *SQLiteStore) UpdatePinLevel(ctx context.Context, level *models.PinLevel) error {
	if level.Code == "" {
		level.Code = models.PinCode(level.Name)
	}
	level.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx, `
		UPDATE pin_levels SET
			name = ?, code = ?, display_order = ?, required_personal_recruits = ?,
			required_team_volume = ?, benefits = ?, required_pv = ?, bonus_percentage = ?,
			pin_image = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		level.Name,
		level.Code,
		level.DisplayOrder,
		level.RequiredPersonalRecruits,
		level.RequiredTeamVolume,
		level.Benefits,
		level.RequiredPV,
		level.BonusPercentage,
		level.PinImage,
		level.IsActive,
		level.UpdatedAt,
		level.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pin level: %w", err)
	}
	if err := expectOneRow(res, "pin level", level.ID); err != nil {
		return err
	}

	return s.db.QueryRowContext(ctx,
		"SELECT created_at FROM pin_levels WHERE id = ?", level.ID,
	).Scan(&level.CreatedAt)
}

// DeletePinLevel removes a PIN.
func (s *SQLiteStore) DeletePinLevel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pin_levels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pin level: %w", err)
	}
	return expectOneRow(res, "pin level", id)
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
