package db

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/bitebuddy/migrations"
	"gorm.io/gorm"
)

var (
	migrationFileName = regexp.MustCompile(`^(\d+)_[\w-]+\.sql$`)
	addColumnPrefix   = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

// migrationRecord is one row of schema_migrations.
type migrationRecord struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (migrationRecord) TableName() string {
	return "schema_migrations"
}

type sqlMigration struct {
	version    string
	sequence   int
	file       string
	statements []string
}

func applyEmbeddedMigrations(database *gorm.DB, logger logrus.FieldLogger) error {
	return applyMigrations(database, embeddedmigrations.Files, logger)
}

// applyMigrations runs every file of source not yet recorded, in version
// order, each inside its own transaction.
func applyMigrations(database *gorm.DB, source fs.FS, logger logrus.FieldLogger) error {
	if err := database.AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("prepare schema_migrations: %w", err)
	}

	migrations, err := loadMigrations(source)
	if err != nil {
		return err
	}

	var records []migrationRecord
	if err := database.Find(&records).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(records))
	for _, record := range records {
		applied[record.Version] = true
	}

	for _, migration := range migrations {
		if applied[migration.version] {
			continue
		}
		if err := database.Transaction(migration.run); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"version": migration.version,
			"file":    migration.file,
		}).Info("schema migration applied")
	}
	return nil
}

func (migration sqlMigration) run(tx *gorm.DB) error {
	for _, statement := range migration.statements {
		if table, column, ok := addedColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
			continue
		}
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("migration %s: %w", migration.file, err)
		}
	}
	record := migrationRecord{Version: migration.version, Name: migration.file, AppliedAt: time.Now().UTC()}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", migration.file, err)
	}
	return nil
}

func loadMigrations(source fs.FS) ([]sqlMigration, error) {
	names, err := fs.Glob(source, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(names))
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		match := migrationFileName.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		version := match[1]
		if previous, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("migration version %s used by %s and %s", version, previous, name)
		}
		byVersion[version] = name

		sequence, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
		content, err := fs.ReadFile(source, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s is empty", name)
		}
		migrations = append(migrations, sqlMigration{version: version, sequence: sequence, file: name, statements: statements})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].sequence < migrations[j].sequence
	})
	return migrations, nil
}

// splitSQLStatements splits on ';'. Migration files must not put semicolons
// inside literals or trigger bodies.
func splitSQLStatements(script string) []string {
	var statements []string
	for _, part := range strings.Split(script, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// addedColumn recognizes ALTER TABLE ... ADD COLUMN so reruns against a
// schema that already has the column are skipped.
func addedColumn(statement string) (string, string, bool) {
	match := addColumnPrefix.FindStringSubmatch(statement)
	if match == nil {
		return "", "", false
	}
	unquote := func(identifier string) string {
		return strings.Trim(identifier, "\"`[]")
	}
	return unquote(match[1]), unquote(match[2]), true
}
