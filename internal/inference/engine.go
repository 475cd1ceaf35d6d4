package inference

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/plantarium-platform/compose-datasources/internal/compose"
)

// DefaultHost is the address connections target. Databases are reached through
// the port published on the docker host, not through the container network.
const DefaultHost = "localhost"

// Engine is the database product a service is inferred to run.
type Engine int

const (
	Postgres Engine = iota
	MySQL
	MariaDB
)

// String returns the engine name as used in record comments.
func (e Engine) String() string {
	switch e {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case MariaDB:
		return "mariadb"
	default:
		return "unknown"
	}
}

// DriverName returns the host driver identifier for the engine.
func (e Engine) DriverName() string {
	switch e {
	case Postgres:
		return "postgresql"
	case MySQL:
		return "mysql"
	case MariaDB:
		return "mariadb"
	default:
		return ""
	}
}

// DefaultPort returns the well-known port of the engine.
func (e Engine) DefaultPort() int {
	switch e {
	case Postgres:
		return 5432
	default:
		return 3306
	}
}

// imageMatchers is checked in order, the first substring found in the image wins.
var imageMatchers = []struct {
	substring string
	engine    Engine
}{
	{"postgres", Postgres},
	{"mysql", MySQL},
	{"mariadb", MariaDB},
}

// DetectEngine infers the engine from a service image reference.
func DetectEngine(image string) (Engine, bool) {
	if image == "" {
		return 0, false
	}
	lower := strings.ToLower(image)
	for _, m := range imageMatchers {
		if strings.Contains(lower, m.substring) {
			return m.engine, true
		}
	}
	return 0, false
}

// ConnectionInfo describes a database reachable from the docker host.
type ConnectionInfo struct {
	ServiceName  string
	Engine       Engine
	Host         string
	Port         int
	DatabaseName string
	Username     string
	Password     string
}

// DriverName returns the driver identifier for the connection.
func (c ConnectionInfo) DriverName() string {
	return c.Engine.DriverName()
}

// JDBCURL returns the connection URL, e.g. jdbc:postgresql://localhost:5432/postgres.
func (c ConnectionInfo) JDBCURL() string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("jdbc:%s://%s:%d/%s", c.DriverName(), host, c.Port, c.DatabaseName)
}

// Infer decides whether the service is a database and extracts its connection
// parameters. It returns false for services without image or with an image
// that matches no supported engine.
func Infer(serviceName string, service compose.Service) (ConnectionInfo, bool) {
	engine, ok := DetectEngine(service.Image)
	if !ok {
		return ConnectionInfo{}, false
	}

	port, ok := HostPort(service.Ports)
	if !ok {
		port = engine.DefaultPort()
	}

	creds := credentialsFor(engine, service.Environment)

	return ConnectionInfo{
		ServiceName:  serviceName,
		Engine:       engine,
		Host:         DefaultHost,
		Port:         port,
		DatabaseName: creds.database,
		Username:     creds.username,
		Password:     creds.password,
	}, true
}

// ExtractConnections runs Infer over every service of the document, ordered by service name.
func ExtractConnections(doc *compose.Document) []ConnectionInfo {
	if doc == nil {
		return nil
	}

	names := make([]string, 0, len(doc.Services))
	for name := range doc.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var connections []ConnectionInfo
	for _, name := range names {
		if info, ok := Infer(name, doc.Services[name]); ok {
			connections = append(connections, info)
		}
	}
	return connections
}

// HostPort parses the host side of the first published port.
// "15432:5432" yields 15432, a bare "5432" is taken as the host port.
func HostPort(ports compose.Ports) (int, bool) {
	if len(ports) == 0 {
		return 0, false
	}
	host, _, _ := strings.Cut(ports[0], ":")
	port, err := strconv.Atoi(strings.TrimSpace(host))
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}
