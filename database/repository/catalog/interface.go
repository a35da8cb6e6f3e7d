package catalogRepo

import (
	"context"

	"salonflow/models"
)

// CatalogRepository defines read access to the service catalog and staff
// roster used by the slot finder.
type CatalogRepository interface {
	// GetServiceByID retrieves a catalog service by its unique ID.
	GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error)
	// ListServices retrieves the active services for a salon.
	ListServices(ctx context.Context, salonID string) ([]models.Service, error)
	// GetStaffByID retrieves a staff member by its unique ID.
	GetStaffByID(ctx context.Context, staffID string) (*models.Staff, error)
	// ListQualifiedStaff retrieves active staff members qualified for a service.
	ListQualifiedStaff(ctx context.Context, salonID, serviceID string) ([]models.Staff, error)
}
