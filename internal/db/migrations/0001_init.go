// Package migrations registers the goose migrations creating the legacy
// pint schema. The table and column names must match what the external
// data loader writes.
package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rjschwei/public-cloud-info-service/internal/models"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func migrationTables() []any {
	return []any{
		&models.AmazonImage{},
		&models.AlibabaImage{},
		&models.GoogleImage{},
		&models.MicrosoftImage{},
		&models.OracleImage{},
		&models.AmazonRegionServer{},
		&models.AmazonUpdateServer{},
		&models.GoogleRegionServer{},
		&models.GoogleUpdateServer{},
		&models.MicrosoftRegionServer{},
		&models.MicrosoftUpdateServer{},
		&models.MicrosoftRegionMap{},
		&models.DataVersion{},
	}
}

func gormFromTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		Conn:                 tx,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx,
		`CREATE TYPE image_state AS ENUM ('deleted', 'deprecated', 'inactive', 'active')`); err != nil {
		return err
	}

	gormDB, err := gormFromTx(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).AutoMigrate(migrationTables()...)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gormFromTx(tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(migrationTables()...); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TYPE IF EXISTS image_state`)
	return err
}
