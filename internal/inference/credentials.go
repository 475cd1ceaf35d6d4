package inference

import "github.com/plantarium-platform/compose-datasources/internal/compose"

type credentials struct {
	database string
	username string
	password string
}

// fallbackChain lists the environment keys consulted in order, then the default.
type fallbackChain struct {
	keys []string
	def  string
}

func (c fallbackChain) resolve(env compose.Environment) string {
	if value, ok := env.Lookup(c.keys...); ok {
		return value
	}
	return c.def
}

type credentialRules struct {
	database fallbackChain
	username fallbackChain
	password fallbackChain
}

var rulesByEngine = map[Engine]credentialRules{
	Postgres: {
		database: fallbackChain{keys: []string{"POSTGRES_DB", "POSTGRES_DATABASE"}, def: "postgres"},
		username: fallbackChain{keys: []string{"POSTGRES_USER"}, def: "postgres"},
		password: fallbackChain{keys: []string{"POSTGRES_PASSWORD"}},
	},
	MySQL: {
		database: fallbackChain{keys: []string{"MYSQL_DATABASE"}, def: "mysql"},
		username: fallbackChain{keys: []string{"MYSQL_USER"}, def: "root"},
		password: fallbackChain{keys: []string{"MYSQL_PASSWORD", "MYSQL_ROOT_PASSWORD"}},
	},
	MariaDB: {
		database: fallbackChain{keys: []string{"MARIADB_DATABASE", "MYSQL_DATABASE"}, def: "mysql"},
		username: fallbackChain{keys: []string{"MARIADB_USER", "MYSQL_USER"}, def: "root"},
		password: fallbackChain{keys: []string{"MARIADB_PASSWORD", "MARIADB_ROOT_PASSWORD", "MYSQL_PASSWORD", "MYSQL_ROOT_PASSWORD"}},
	},
}

func credentialsFor(engine Engine, env compose.Environment) credentials {
	rules := rulesByEngine[engine]
	return credentials{
		database: rules.database.resolve(env),
		username: rules.username.resolve(env),
		password: rules.password.resolve(env),
	}
}
