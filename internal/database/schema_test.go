package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_brands_table.sql",
		"00002_create_categories_table.sql",
		"00003_create_products_table.sql",
		"00004_create_product_variants_table.sql",
		"00005_create_shipping_zones_table.sql",
		"00006_create_shipping_zone_pincodes_table.sql",
		"00007_create_non_serviceable_pincodes_table.sql",
		"00008_create_orders_table.sql",
		"00009_create_order_items_table.sql",
		"00010_create_notifications_table.sql",
		"00011_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		text := string(content)
		if !strings.Contains(text, "-- +goose Up") {
			t.Errorf("Migration %s is missing the Up section", file.Name())
		}
		if !strings.Contains(text, "-- +goose Down") {
			t.Errorf("Migration %s is missing the Down section", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No migration files found")
	}
}

// Pincode uniqueness is schema-enforced; imports rely on ON CONFLICT
// against these constraints.
func TestPincodeTablesDeclareUniqueness(t *testing.T) {
	for _, name := range []string{
		"00006_create_shipping_zone_pincodes_table.sql",
		"00007_create_non_serviceable_pincodes_table.sql",
	} {
		content, err := os.ReadFile(filepath.Join("../../migrations", name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if !strings.Contains(string(content), "UNIQUE") {
			t.Errorf("Migration %s should declare a UNIQUE pincode constraint", name)
		}
	}
}
