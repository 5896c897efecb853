package stub

import (
	"context"

	"gorm.io/gorm"
)

// Seed inserts the demo doctors a fresh database starts with, so
// availability questions have something to answer. A database that already
// has doctors is left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	store := NewStore(db)
	existing, err := store.ListDoctors(ctx, 0, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, d := range []Doctor{
		{Name: "Dr. Ahuja", Specialty: "Cardiology", Email: "ahuja@smartdoctor.local"},
		{Name: "Dr. Mehta", Specialty: "Dermatology", Email: "mehta@smartdoctor.local"},
	} {
		if err := store.CreateDoctor(ctx, &d); err != nil {
			return err
		}
	}
	return nil
}
