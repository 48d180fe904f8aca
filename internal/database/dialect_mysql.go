package database

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

const mysqlDefaultPort = 3306

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

// Open builds the handle from a driver Config rather than a DSN string, so
// credentials never need escaping.
//
// parseTime stays off: DATE columns come back as []byte and the record
// normalizer turns them into dates.
func (mysqlDialect) Open(opts OpenOptions) (*sql.DB, error) {
	cfg := opts.Config

	port := cfg.Port
	if port == 0 {
		port = mysqlDefaultPort
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.QueryTimeout
	mc.WriteTimeout = cfg.QueryTimeout
	if !opts.ServerOnly {
		mc.DBName = cfg.Name
	}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("failed to build mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	applyPool(db, cfg)
	return db, nil
}

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) IdentityStrategy() IdentityStrategy { return LastInsertID }

func (mysqlDialect) CreateDatabaseStatement(name string) string {
	return "CREATE DATABASE IF NOT EXISTS `" + name + "`"
}

func (mysqlDialect) CreateEnumStatement() string { return "" }

func (mysqlDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
	id INT AUTO_INCREMENT PRIMARY KEY,
	roll_no INT NOT NULL,
	name VARCHAR(100) NOT NULL,
	class VARCHAR(50) NOT NULL,
	CONSTRAINT uq_students_roll_no UNIQUE (roll_no)
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS attendance (
	id INT AUTO_INCREMENT PRIMARY KEY,
	student_id INT NOT NULL,
	date DATE NOT NULL,
	status ENUM('Present','Absent') NOT NULL,
	CONSTRAINT fk_attendance_student FOREIGN KEY (student_id) REFERENCES students(id),
	CONSTRAINT uq_attendance_student_date UNIQUE (student_id, date)
) ENGINE=InnoDB`,
	}
}

func (mysqlDialect) DropTableStatements() []string {
	return []string{
		"DROP TABLE IF EXISTS attendance",
		"DROP TABLE IF EXISTS students",
	}
}
