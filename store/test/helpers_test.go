package test

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/store"
)

func createTestingManager(ctx context.Context, ts *store.Store) (*store.Manager, error) {
	suffix := uuid.NewString()[:8]
	return ts.CreateManager(ctx, &store.Manager{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Username:     "ada-" + suffix,
		Email:        "ada-" + suffix + "@example.com",
		PasswordHash: "$2a$10$not-a-real-hash",
		DefaultRate:  37,
	})
}

func createTestingEmployee(ctx context.Context, ts *store.Store, managerID uuid.UUID, firstName string) (*store.Employee, error) {
	return ts.CreateEmployee(ctx, &store.Employee{
		ManagerID: managerID,
		FirstName: firstName,
		LastName:  "Tester",
		Mobile:    "+15550000000",
		Email:     firstName + "-" + uuid.NewString()[:8] + "@example.com",
	})
}

func createTestingClient(ctx context.Context, ts *store.Store, managerID uuid.UUID, name string) (*store.Client, error) {
	return ts.CreateClient(ctx, &store.Client{
		ManagerID:         managerID,
		ClientName:        name,
		Mobile:            "+15551111111",
		Email:             uuid.NewString()[:8] + "@client.example.com",
		ClientDescription: "Retail chain",
	})
}

// unitAt returns a unit vector in the xy-plane whose cosine with (1, 0, 0) is cos.
func unitAt(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos)), 0}
}
