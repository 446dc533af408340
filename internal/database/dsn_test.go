package database

import (
	"path/filepath"
	"strings"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSNDefaults(t *testing.T) {
	dsn, err := postgresDSN(Config{User: "studentms", Name: "studentms"})
	require.NoError(t, err)
	require.Equal(t, "postgres://studentms@localhost:5432/studentms?sslmode=disable", dsn)
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	dsn, err := postgresDSN(Config{
		User:     "registrar",
		Password: "p@ss word/1",
		Name:     "school",
		Host:     "db.example.com",
		Port:     6543,
		Options:  map[string]string{"search_path": "notifications"},
	})
	require.NoError(t, err)

	parsed, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	require.Equal(t, "db.example.com", parsed.Host)
	require.EqualValues(t, 6543, parsed.Port)
	require.Equal(t, "registrar", parsed.User)
	require.Equal(t, "p@ss word/1", parsed.Password)
	require.Equal(t, "school", parsed.Database)
	require.Equal(t, "notifications", parsed.RuntimeParams["search_path"])
}

func TestPostgresDSNValidation(t *testing.T) {
	_, err := postgresDSN(Config{})
	require.ErrorContains(t, err, "requires user and database name")

	_, err = postgresDSN(Config{DSN: "postgres://user@host:notaport/db"})
	require.ErrorContains(t, err, "invalid postgres dsn")
}

func TestMySQLDSNRoundTrip(t *testing.T) {
	dsn, err := mysqlDSN(Config{
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options:  map[string]string{"autocommit": "true"},
	})
	require.NoError(t, err)

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "user", parsed.User)
	require.Equal(t, "secret", parsed.Passwd)
	require.Equal(t, "db.example.com:3307", parsed.Addr)
	require.Equal(t, "db", parsed.DBName)
	require.True(t, parsed.ParseTime)
	require.Contains(t, dsn, "charset=utf8mb4")
	require.Equal(t, "true", parsed.Params["autocommit"])
}

func TestMySQLDSNDefaultsAndValidation(t *testing.T) {
	dsn, err := mysqlDSN(Config{User: "studentms", Name: "studentms"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dsn, "studentms@tcp(127.0.0.1:3306)/studentms?"), dsn)

	_, err = mysqlDSN(Config{Host: "localhost"})
	require.ErrorContains(t, err, "requires user and database name")

	_, err = mysqlDSN(Config{DSN: "not a dsn"})
	require.ErrorContains(t, err, "invalid mysql dsn")
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN(Config{})
	require.NoError(t, err)
	require.Contains(t, dsn, "memory")

	path := filepath.Join(t.TempDir(), "nested", "studentms.sqlite")
	dsn, err = sqliteDSN(Config{Path: path})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dsn, "file:"+filepath.ToSlash(path)+"?"))
	require.Contains(t, dsn, "_journal_mode=WAL")
	require.DirExists(t, filepath.Dir(path))
}
