// Package database wires the PostgreSQL connection used by the repositories.
package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a PostgreSQL connection using GORM. The service name is only
// used for log attribution.
func Connect(service, dsn string) *gorm.DB {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("%s: failed to connect to postgres: %v", service, err)
	}
	return conn
}
