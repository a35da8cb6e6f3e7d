package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salonflow/database"
	"salonflow/models"
)

// MongoCatalogRepo is the MongoDB implementation of CatalogRepository.
type MongoCatalogRepo struct {
	serviceColl *mongo.Collection
	staffColl   *mongo.Collection
}

// NewMongoCatalogRepo returns a repo backed by the "services" and "staff"
// collections.
func NewMongoCatalogRepo() *MongoCatalogRepo {
	db := database.DB()
	return &MongoCatalogRepo{
		serviceColl: db.Collection("services"),
		staffColl:   db.Collection("staff"),
	}
}

func (repo *MongoCatalogRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := repo.serviceColl.FindOne(ctx, bson.M{"id": serviceID}).Decode(&svc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("service %s not found", serviceID)
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", serviceID, err)
	}
	return &svc, nil
}

func (repo *MongoCatalogRepo) ListServices(ctx context.Context, salonID string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := repo.serviceColl.Find(ctx, bson.M{"salon_id": salonID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cur.Close(ctx)

	var services []models.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (repo *MongoCatalogRepo) GetStaffByID(ctx context.Context, staffID string) (*models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var st models.Staff
	if err := repo.staffColl.FindOne(ctx, bson.M{"id": staffID}).Decode(&st); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("staff %s not found", staffID)
		}
		return nil, fmt.Errorf("failed to fetch staff %s: %w", staffID, err)
	}
	return &st, nil
}

func (repo *MongoCatalogRepo) ListQualifiedStaff(ctx context.Context, salonID, serviceID string) ([]models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"salon_id":    salonID,
		"active":      true,
		"service_ids": serviceID,
	}
	cur, err := repo.staffColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualified staff: %w", err)
	}
	defer cur.Close(ctx)

	var staff []models.Staff
	if err := cur.All(ctx, &staff); err != nil {
		return nil, fmt.Errorf("failed to decode staff: %w", err)
	}
	return staff, nil
}
