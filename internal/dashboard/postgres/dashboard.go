package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

// DashboardRepository aggregates with hand-written SQL over the shared
// connection pool. Month extraction follows the driver's dialect.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

var _ dashboard.Repository = (*DashboardRepository)(nil)

func (r *DashboardRepository) UserDistribution(ctx context.Context) (dashboard.UserDistribution, error) {
	var rows []struct {
		Role  string `db:"role"`
		Total int64  `db:"total"`
	}
	var d dashboard.UserDistribution
	if err := r.db.SelectContext(ctx, &rows, `SELECT role, COUNT(*) AS total FROM users GROUP BY role`); err != nil {
		return d, err
	}

	for _, row := range rows {
		switch identity.Role(row.Role) {
		case identity.RoleAdmin:
			d.Admins = row.Total
		case identity.RoleDriver:
			d.Drivers = row.Total
		case identity.RoleDepartmentHead:
			d.DepartmentHeads = row.Total
		case identity.RolePublicUser:
			d.PublicUsers = row.Total
		}
	}
	return d, nil
}

func (r *DashboardRepository) VehicleUsage(ctx context.Context) ([]dashboard.VehicleUsage, error) {
	const query = `
		SELECT v.plate_number AS plate_number, COUNT(t.id) AS trip_count
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		GROUP BY v.plate_number
		ORDER BY trip_count DESC, v.plate_number ASC`

	usage := []dashboard.VehicleUsage{}
	if err := r.db.SelectContext(ctx, &usage, query); err != nil {
		return nil, err
	}
	return usage, nil
}

func (r *DashboardRepository) FuelUsage(ctx context.Context) ([]dashboard.MonthlyFuel, error) {
	query := fmt.Sprintf(`
		SELECT %s AS year, %s AS month, SUM(fuel_amount) AS total_fuel
		FROM fuel_logs
		WHERE status = ?
		GROUP BY 1, 2
		ORDER BY 1, 2`, r.part("YEAR", "refill_date"), r.part("MONTH", "refill_date"))

	usage := []dashboard.MonthlyFuel{}
	if err := r.db.SelectContext(ctx, &usage, r.db.Rebind(query), "approved"); err != nil {
		return nil, err
	}
	return usage, nil
}

func (r *DashboardRepository) MaintenanceTrend(ctx context.Context) ([]dashboard.MonthlyMaintenance, error) {
	query := fmt.Sprintf(`
		SELECT %s AS year, %s AS month, COUNT(*) AS total_requests
		FROM maintenance_requests
		GROUP BY 1, 2
		ORDER BY 1, 2`, r.part("YEAR", "created_at"), r.part("MONTH", "created_at"))

	trend := []dashboard.MonthlyMaintenance{}
	if err := r.db.SelectContext(ctx, &trend, query); err != nil {
		return nil, err
	}
	return trend, nil
}

// part extracts a calendar field from a timestamp column as an integer.
func (r *DashboardRepository) part(field, column string) string {
	if r.db.DriverName() == "sqlite3" {
		format := "%Y"
		if field == "MONTH" {
			format = "%m"
		}
		return fmt.Sprintf("CAST(strftime('%s', %s) AS INTEGER)", format, column)
	}
	return fmt.Sprintf("CAST(EXTRACT(%s FROM %s) AS INTEGER)", field, column)
}
