package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/mysql"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sisu-network/drelay/config"
	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/lib/log"
)

// Database is the write-mostly journal of operations and their status
// transitions. It is audit history only: tracking state is never recovered
// from it after a restart, and journal failures never block tracking.
type Database interface {
	Init() error
	Close() error

	RecordOperation(op *types.OperationTracking)
	RecordStatusUpdate(id string, status types.OperationStatus, message string)

	// LoadStatusHistory is for inspection and tests only.
	LoadStatusHistory(id string) ([]*StatusRecord, error)
}

// StatusRecord is one journaled status transition.
type StatusRecord struct {
	OperationId string
	Status      types.OperationStatus
	Message     string
	CreatedAt   time.Time
}

type dbLogger struct {
}

func (logger *dbLogger) Printf(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func (logger *dbLogger) Verbose() bool {
	return true
}

type DefaultDatabase struct {
	cfg *config.Drelay
	db  *sql.DB
}

func NewDb(cfg *config.Drelay) Database {
	return &DefaultDatabase{
		cfg: cfg,
	}
}

func (d *DefaultDatabase) Init() error {
	if err := d.connect(); err != nil {
		log.Error("Failed to connect to DB. Err = ", err)
		return err
	}

	if err := d.doMigration(); err != nil {
		return err
	}

	return nil
}

func (d *DefaultDatabase) connect() error {
	if d.cfg.InMemory {
		database, err := sql.Open("sqlite3", "file::memory:?cache=shared")
		if err != nil {
			return err
		}

		// Every pooled connection must see the same in-memory database.
		database.SetMaxOpenConns(1)

		d.db = database
		return nil
	}

	host := d.cfg.DbHost
	if host == "" {
		return fmt.Errorf("DB host cannot be empty")
	}

	port := d.cfg.DbPort
	username := d.cfg.DbUsername
	password := d.cfg.DbPassword
	schema := d.cfg.DbSchema

	database, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/", username, password, host, port))
	if err != nil {
		return err
	}
	_, err = database.Exec("CREATE DATABASE IF NOT EXISTS " + schema)
	if err != nil {
		return err
	}
	database.Close()

	database, err = sql.Open("mysql",
		fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", username, password, host, port, schema))
	if err != nil {
		return err
	}

	d.db = database
	log.Info("Db is connected successfully")
	return nil
}

func (d *DefaultDatabase) doMigration() error {
	if d.cfg.InMemory {
		// Sqlite keeps everything in process memory; apply the schema
		// directly instead of going through the migration machinery.
		return applySchema(d.db)
	}

	driver, err := mysql.WithInstance(d.db, &mysql.Config{})
	if err != nil {
		return err
	}

	migrationDir, err := MigrationsTempDir()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationDir,
		"mysql",
		driver,
	)
	if err != nil {
		return err
	}

	m.Log = &dbLogger{}
	m.Up()

	return nil
}

func (d *DefaultDatabase) Close() error {
	return d.db.Close()
}

func (d *DefaultDatabase) RecordOperation(op *types.OperationTracking) {
	_, err := d.db.Exec(
		`INSERT INTO operations (operation_id, from_chain_id, to_chain_id, from_token,
			to_token, amount, from_address, to_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.OperationId, op.Intent.FromChainId, op.Intent.ToChainId, op.Intent.FromToken,
		op.Intent.ToToken, op.Intent.Amount, op.Intent.FromAddress, op.Intent.ToAddress,
		op.StartTime,
	)
	if err != nil {
		log.Error("Cannot journal operation ", op.OperationId, ", err = ", err)
	}
}

func (d *DefaultDatabase) RecordStatusUpdate(id string, status types.OperationStatus,
	message string) {
	if len(message) > 1024 {
		message = message[:1024]
	}

	_, err := d.db.Exec(
		"INSERT INTO operation_status_history (operation_id, status, message, created_at) VALUES (?, ?, ?, ?)",
		id, string(status), message, time.Now(),
	)
	if err != nil {
		log.Error("Cannot journal status update for operation ", id, ", err = ", err)
	}
}

func (d *DefaultDatabase) LoadStatusHistory(id string) ([]*StatusRecord, error) {
	rows, err := d.db.Query(
		"SELECT operation_id, status, message, created_at FROM operation_status_history WHERE operation_id=? ORDER BY created_at",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*StatusRecord, 0)
	for rows.Next() {
		record := new(StatusRecord)
		var status string
		if err := rows.Scan(&record.OperationId, &status, &record.Message,
			&record.CreatedAt); err != nil {
			return nil, err
		}

		record.Status = types.OperationStatus(status)
		records = append(records, record)
	}

	return records, nil
}
