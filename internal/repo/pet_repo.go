package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/pkg/dbutil"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

// PetRepo reads the pet-management collaborator's tables. This subsystem
// never writes them.
type PetRepo struct {
	db *sql.DB
}

func NewPetRepo(db *sql.DB) *PetRepo {
	return &PetRepo{db: db}
}

func (r *PetRepo) GetProfile(ctx context.Context, ownerID, petID string) (*model.PetProfile, error) {
	where := map[string]interface{}{
		"id":       petID,
		"owner_id": ownerID,
	}
	sqlStr, args, err := builder.BuildSelect("pet_profiles", where,
		[]string{"id", "owner_id", "name", "species", "breed", "sex", "birth_date", "weight_kg", "notes"})
	if err != nil {
		return nil, err
	}
	sqlStr, args, err = dbutil.In(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var p model.PetProfile
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.BirthDate, &p.WeightKg, &p.Notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.PetProfile, error) {
	return r.list(ctx, map[string]interface{}{
		"owner_id": ownerID,
		"_orderby": "id asc",
	})
}

// ListAll walks every registered pet, used by the weekly refresh job.
func (r *PetRepo) ListAll(ctx context.Context) ([]model.PetProfile, error) {
	return r.list(ctx, map[string]interface{}{
		"_orderby": "id asc",
	})
}

func (r *PetRepo) list(ctx context.Context, where map[string]interface{}) ([]model.PetProfile, error) {
	sqlStr, args, err := builder.BuildSelect("pet_profiles", where,
		[]string{"id", "owner_id", "name", "species", "breed", "sex", "birth_date", "weight_kg", "notes"})
	if err != nil {
		return nil, err
	}
	sqlStr, args, err = dbutil.In(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pets []model.PetProfile
	for rows.Next() {
		var p model.PetProfile
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.BirthDate, &p.WeightKg, &p.Notes); err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}
