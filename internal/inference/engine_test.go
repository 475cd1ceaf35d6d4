package inference

import (
	"testing"

	"github.com/plantarium-platform/compose-datasources/internal/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer_PostgresScenario(t *testing.T) {
	service := compose.Service{
		Image: "postgres:15",
		Ports: compose.Ports{"5555:5432"},
		Environment: compose.Environment{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "secret",
		},
	}

	info, ok := Infer("db", service)
	require.True(t, ok)

	assert.Equal(t, ConnectionInfo{
		ServiceName:  "db",
		Engine:       Postgres,
		Host:         "localhost",
		Port:         5555,
		DatabaseName: "postgres",
		Username:     "admin",
		Password:     "secret",
	}, info)
	assert.Equal(t, "jdbc:postgresql://localhost:5555/postgres", info.JDBCURL())
	assert.Equal(t, "postgresql", info.DriverName())
}

func TestInfer_NoImage(t *testing.T) {
	_, ok := Infer("worker", compose.Service{
		Ports:       compose.Ports{"5432:5432"},
		Environment: compose.Environment{"POSTGRES_DB": "app"},
	})
	assert.False(t, ok)
}

func TestInfer_UnsupportedImage(t *testing.T) {
	for _, image := range []string{"redis:7", "nginx", "mongo:6", "bitnami/elasticsearch"} {
		_, ok := Infer("svc", compose.Service{Image: image})
		assert.False(t, ok, "image %s must not be detected as database", image)
	}
}

func TestDetectEngine(t *testing.T) {
	cases := []struct {
		image  string
		engine Engine
	}{
		{"postgres", Postgres},
		{"POSTGRES:16-alpine", Postgres},
		{"bitnami/postgresql:16", Postgres},
		{"docker.io/library/mysql:8.0", MySQL},
		{"mariadb:11", MariaDB},
		{"bitnami/MariaDB:10.6", MariaDB},
		// Ambiguous names resolve by fixed priority postgres > mysql > mariadb.
		{"postgres-mysql-proxy", Postgres},
		{"mariadb-mysql-compat", MySQL},
	}

	for _, tc := range cases {
		t.Run(tc.image, func(t *testing.T) {
			engine, ok := DetectEngine(tc.image)
			assert.True(t, ok)
			assert.Equal(t, tc.engine, engine)
		})
	}

	_, ok := DetectEngine("")
	assert.False(t, ok)
}

func TestInfer_PrimaryDatabaseKey(t *testing.T) {
	cases := []struct {
		image string
		key   string
	}{
		{"postgres", "POSTGRES_DB"},
		{"mysql", "MYSQL_DATABASE"},
		{"mariadb", "MARIADB_DATABASE"},
	}

	for _, tc := range cases {
		t.Run(tc.image, func(t *testing.T) {
			info, ok := Infer("db", compose.Service{Image: tc.image, Environment: compose.Environment{tc.key: "foo"}})
			require.True(t, ok)
			assert.Equal(t, "foo", info.DatabaseName)
		})
	}
}

func TestInfer_Defaults(t *testing.T) {
	cases := []struct {
		image    string
		database string
		username string
		port     int
	}{
		{"postgres", "postgres", "postgres", 5432},
		{"mysql", "mysql", "root", 3306},
		{"mariadb", "mysql", "root", 3306},
	}

	for _, tc := range cases {
		t.Run(tc.image, func(t *testing.T) {
			info, ok := Infer("db", compose.Service{Image: tc.image})
			require.True(t, ok)
			assert.Equal(t, tc.database, info.DatabaseName)
			assert.Equal(t, tc.username, info.Username)
			assert.Equal(t, "", info.Password)
			assert.Equal(t, tc.port, info.Port)
			assert.Equal(t, "localhost", info.Host)
		})
	}
}

func TestInfer_PostgresFallbacks(t *testing.T) {
	info, _ := Infer("db", compose.Service{Image: "postgres", Environment: compose.Environment{"POSTGRES_DATABASE": "legacy"}})
	assert.Equal(t, "legacy", info.DatabaseName)

	info, _ = Infer("db", compose.Service{Image: "postgres", Environment: compose.Environment{"POSTGRES_DB": "new", "POSTGRES_DATABASE": "legacy"}})
	assert.Equal(t, "new", info.DatabaseName)
}

func TestInfer_NullEnvironmentValuesUseDefaults(t *testing.T) {
	doc, err := compose.Parse([]byte(`
services:
  db:
    image: postgres:16
    environment:
      POSTGRES_USER:
      POSTGRES_DB:
`))
	require.NoError(t, err)

	info, ok := Infer("db", doc.Services["db"])
	require.True(t, ok)
	assert.Equal(t, "postgres", info.Username)
	assert.Equal(t, "postgres", info.DatabaseName)
}

func TestInfer_MySQLPasswordFallback(t *testing.T) {
	info, _ := Infer("db", compose.Service{Image: "mysql", Environment: compose.Environment{"MYSQL_ROOT_PASSWORD": "root-pw"}})
	assert.Equal(t, "root-pw", info.Password)
	assert.Equal(t, "root", info.Username)

	info, _ = Infer("db", compose.Service{Image: "mysql", Environment: compose.Environment{
		"MYSQL_USER":          "app",
		"MYSQL_PASSWORD":      "app-pw",
		"MYSQL_ROOT_PASSWORD": "root-pw",
	}})
	assert.Equal(t, "app-pw", info.Password)
	assert.Equal(t, "app", info.Username)
}

func TestInfer_MariaDBFallbacks(t *testing.T) {
	env := compose.Environment{
		"MYSQL_DATABASE":      "shop",
		"MYSQL_USER":          "legacy",
		"MYSQL_ROOT_PASSWORD": "root-pw",
	}
	info, _ := Infer("db", compose.Service{Image: "mariadb:11", Environment: env})
	assert.Equal(t, "shop", info.DatabaseName)
	assert.Equal(t, "legacy", info.Username)
	assert.Equal(t, "root-pw", info.Password)

	env["MYSQL_PASSWORD"] = "mysql-pw"
	info, _ = Infer("db", compose.Service{Image: "mariadb:11", Environment: env})
	assert.Equal(t, "mysql-pw", info.Password)

	env["MARIADB_ROOT_PASSWORD"] = "maria-root-pw"
	info, _ = Infer("db", compose.Service{Image: "mariadb:11", Environment: env})
	assert.Equal(t, "maria-root-pw", info.Password)

	env["MARIADB_PASSWORD"] = "maria-pw"
	env["MARIADB_USER"] = "maria"
	env["MARIADB_DATABASE"] = "maria-db"
	info, _ = Infer("db", compose.Service{Image: "mariadb:11", Environment: env})
	assert.Equal(t, "maria-pw", info.Password)
	assert.Equal(t, "maria", info.Username)
	assert.Equal(t, "maria-db", info.DatabaseName)
	assert.Equal(t, "jdbc:mariadb://localhost:3306/maria-db", info.JDBCURL())
}

func TestInfer_EmptyValueCountsAsSet(t *testing.T) {
	info, _ := Infer("db", compose.Service{Image: "mysql", Environment: compose.Environment{"MYSQL_PASSWORD": "", "MYSQL_ROOT_PASSWORD": "root-pw"}})
	assert.Equal(t, "", info.Password)
}

func TestHostPort(t *testing.T) {
	cases := []struct {
		name  string
		ports compose.Ports
		port  int
		ok    bool
	}{
		{"mapped", compose.Ports{"15432:5432"}, 15432, true},
		{"bare", compose.Ports{"5432"}, 5432, true},
		{"first entry wins", compose.Ports{"3307:3306", "3308:3306"}, 3307, true},
		{"ip prefix", compose.Ports{"127.0.0.1:5432:5432"}, 0, false},
		{"no host side", compose.Ports{":5432"}, 0, false},
		{"range", compose.Ports{"5432-5433:5432-5433"}, 0, false},
		{"out of range", compose.Ports{"70000:5432"}, 0, false},
		{"zero", compose.Ports{"0:5432"}, 0, false},
		{"none", nil, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port, ok := HostPort(tc.ports)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.port, port)
		})
	}
}

func TestInfer_PortFallsBackToDefault(t *testing.T) {
	info, _ := Infer("db", compose.Service{Image: "mysql", Ports: compose.Ports{"${DB_PORT}:3306"}})
	assert.Equal(t, 3306, info.Port)
}

func TestInfer_PortResolutionIsIdempotent(t *testing.T) {
	service := compose.Service{Image: "postgres", Ports: compose.Ports{"15432:5432"}}

	for i := 0; i < 3; i++ {
		info, ok := Infer("db", service)
		require.True(t, ok)
		assert.Equal(t, 15432, info.Port)
	}
	assert.Equal(t, compose.Ports{"15432:5432"}, service.Ports)
}

func TestExtractConnections(t *testing.T) {
	doc := &compose.Document{Services: map[string]compose.Service{
		"web":       {Image: "nginx"},
		"users-db":  {Image: "postgres:15"},
		"orders-db": {Image: "mysql:8", Ports: compose.Ports{"13306:3306"}},
		"builder":   {},
	}}

	connections := ExtractConnections(doc)
	require.Len(t, connections, 2)
	assert.Equal(t, "orders-db", connections[0].ServiceName)
	assert.Equal(t, MySQL, connections[0].Engine)
	assert.Equal(t, 13306, connections[0].Port)
	assert.Equal(t, "users-db", connections[1].ServiceName)
	assert.Equal(t, Postgres, connections[1].Engine)

	assert.Empty(t, ExtractConnections(nil))
	assert.Empty(t, ExtractConnections(&compose.Document{}))
}

func TestEngine_Strings(t *testing.T) {
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "mysql", MySQL.String())
	assert.Equal(t, "mariadb", MariaDB.String())
	assert.Equal(t, "unknown", Engine(42).String())

	assert.Equal(t, "mysql", MySQL.DriverName())
	assert.Equal(t, "mariadb", MariaDB.DriverName())
	assert.Equal(t, "", Engine(42).DriverName())
}
