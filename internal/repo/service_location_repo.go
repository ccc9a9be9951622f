package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/pkg/dbutil"
)

// ServiceLocationRepo reads the nearby-services catalog. Ranking by distance
// happens in the retrieval service, not in SQL.
type ServiceLocationRepo struct {
	db *sql.DB
}

func NewServiceLocationRepo(db *sql.DB) *ServiceLocationRepo {
	return &ServiceLocationRepo{db: db}
}

func (r *ServiceLocationRepo) List(ctx context.Context, category string) ([]model.ServiceLocation, error) {
	where := map[string]interface{}{
		"_orderby": "id asc",
	}
	if category != "" {
		where["category"] = category
	}
	sqlStr, args, err := builder.BuildSelect("service_locations", where,
		[]string{"id", "name", "category", "address", "lat", "lng"})
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
	var services []model.ServiceLocation
	for rows.Next() {
		var s model.ServiceLocation
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Address, &s.Lat, &s.Lng); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
