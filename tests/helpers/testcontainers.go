// This file is a helper for running tests with testcontainers.
// It is used by the e2e tests and by the standalone cmd/testcontainers executable.
// Settings come from the environment, usually loaded from a .env file.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers is the database, identity provider and broker stack
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	BrokerContainer     testcontainers.Container

	// Env holds the settings a process on the docker host needs to reach the stack
	Env map[string]string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.BrokerContainer != nil {
		if err := tc.BrokerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate RabbitMQ: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{Env: map[string]string{}}

	debugContainer := os.Getenv("DEBUG_CONTAINER")

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Database
	dbType := getenv("DB_TYPE", "postgres")
	dbNetworkName := getenv("DB_HOST", "database")
	defaultImage, defaultPort := "postgres:16-alpine", "5432"
	if dbType == "mysql" || dbType == "mariadb" {
		defaultImage, defaultPort = "mariadb:11", "3306"
	}
	dbPortNumber := getenv("DB_PORT", defaultPort)
	tcpDbPort, err := nat.NewPort("tcp", dbPortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getenv("DB_IMAGE", defaultImage),
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          getDBInitEnvMap(dbType),
			WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Database")
	}
	testContainers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	authzDatabase := getenv("AUTHZ_DATABASE", "authorizer")
	var authzDbConnection string
	switch dbType {
	case "mysql", "mariadb":
		if err := performMySqlDBInit(dbHost, dbPort, authzDatabase); err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
		authzDbConnection = fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
			getenv("DB_ROOT_PASSWORD", "rootpass"), dbNetworkName, dbPortNumber, authzDatabase)
	default:
		if err := performPostgresDBInit(dbHost, dbPort, authzDatabase); err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
		authzDbConnection = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			getenv("DB_APP_USER", "conexo"), getenv("DB_APP_PASSWORD", "conexo"), dbNetworkName, dbPortNumber, authzDatabase)
	}
	testContainers.Env["DB_TYPE"] = dbType
	testContainers.Env["DB_HOST"] = dbHost
	testContainers.Env["DB_PORT"] = dbPort.Port()
	testContainers.Env["DB_APP_DATABASE"] = getenv("DB_APP_DATABASE", "conexo")
	testContainers.Env["DB_APP_USER"] = getenv("DB_APP_USER", "conexo")
	testContainers.Env["DB_APP_PASSWORD"] = getenv("DB_APP_PASSWORD", "conexo")

	// Authorizer
	authzPortNumber := getenv("AUTHZ_PORT", "8080")
	tcpAuthzPort, err := nat.NewPort("tcp", authzPortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authzLogLevel := "info"
	if debugContainer == "true" {
		authzLogLevel = "debug"
	}
	authzDbType := dbType
	if authzDbType == "mariadb" {
		authzDbType = "mysql"
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getenv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":                          "production",
				"CLIENT_ID":                    getenv("AUTHZ_CLIENT_ID", "conexo-test"),
				"PORT":                         authzPortNumber,
				"DATABASE_TYPE":                authzDbType,
				"DATABASE_NAME":                authzDatabase,
				"DATABASE_URL":                 authzDbConnection,
				"ADMIN_SECRET":                 getenv("AUTHZ_ADMIN_SECRET", "admin-secret"),
				"ROLES":                        "user",
				"DEFAULT_ROLES":                "user",
				"DISABLE_EMAIL_VERIFICATION":   "true",
				"DISABLE_MAGIC_LINK_LOGIN":     "true",
				"DISABLE_STRONG_PASSWORD":      "false",
				"LOG_LEVEL":                    authzLogLevel,
				"APP_COOKIE_SECURE":            "false",
				"ADMIN_COOKIE_SECURE":          "false",
				"DISABLE_REDIS_FOR_ENV":        "true",
				"DISABLE_PLAYGROUND":           "true",
				"DISABLE_SIGN_UP":              "false",
				"DISABLE_BASIC_AUTHENTICATION": "false",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"authorizer"},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	testContainers.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	testContainers.Env["AUTHZ_URL"] = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	testContainers.Env["AUTHZ_CLIENT_ID"] = getenv("AUTHZ_CLIENT_ID", "conexo-test")
	testContainers.Env["AUTHZ_ADMIN_SECRET"] = getenv("AUTHZ_ADMIN_SECRET", "admin-secret")
	logMessage(t, "AUTHZ_URL=%s", testContainers.Env["AUTHZ_URL"])

	// RabbitMQ
	tcpAmqpPort := nat.Port("5672/tcp")
	brokerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getenv("AMQP_IMAGE", "rabbitmq:3.13-alpine"),
			ExposedPorts: []string{string(tcpAmqpPort)},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(60 * time.Second),
			Networks:     []string{networkName},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start RabbitMQ")
	}
	testContainers.BrokerContainer = brokerContainer

	amqpHost, _ := brokerContainer.Host(ctx)
	amqpPort, _ := brokerContainer.MappedPort(ctx, tcpAmqpPort)
	testContainers.Env["AMQP_URL"] = fmt.Sprintf("amqp://guest:guest@%s:%s/", amqpHost, amqpPort.Port())
	logMessage(t, "AMQP_URL=%s", testContainers.Env["AMQP_URL"])

	logMessage(t, "Conexo testcontainers started successfully")
	return testContainers, nil
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": getenv("DB_ROOT_PASSWORD", "rootpass"),
			"MYSQL_DATABASE":      getenv("DB_APP_DATABASE", "conexo"),
			"MYSQL_USER":          getenv("DB_APP_USER", "conexo"),
			"MYSQL_PASSWORD":      getenv("DB_APP_PASSWORD", "conexo"),
		}
	default:
		return map[string]string{
			"POSTGRES_PASSWORD": getenv("DB_APP_PASSWORD", "conexo"),
			"POSTGRES_USER":     getenv("DB_APP_USER", "conexo"),
			"POSTGRES_DB":       getenv("DB_APP_DATABASE", "conexo"),
		}
	}
}

// waitForDB pings db until it answers or 30 seconds pass
func waitForDB(db *sql.DB) error {
	var err error
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", err)
}

func performMySqlDBInit(dbHost string, dbPort nat.Port, authzDatabase string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", getenv("DB_ROOT_PASSWORD", "rootpass"), dbHost, dbPort.Port()))
	if err != nil {
		return fmt.Errorf("connect for setup: %w", err)
	}
	defer db.Close()

	if err := waitForDB(db); err != nil {
		return err
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", getenv("DB_APP_DATABASE", "conexo")),
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDatabase),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", getenv("DB_APP_DATABASE", "conexo"), getenv("DB_APP_USER", "conexo")),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), stmt)
		}
	}
	return nil
}

func performPostgresDBInit(dbHost string, dbPort nat.Port, authzDatabase string) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getenv("DB_APP_USER", "conexo"), getenv("DB_APP_PASSWORD", "conexo"), dbHost, dbPort.Port(), getenv("DB_APP_DATABASE", "conexo"))
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("connect for setup: %w", err)
	}
	defer db.Close()

	if err := waitForDB(db); err != nil {
		return err
	}

	var exists bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", authzDatabase).Scan(&exists); err != nil {
		return fmt.Errorf("check database %s: %w", authzDatabase, err)
	}
	if !exists {
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", authzDatabase)); err != nil {
			return fmt.Errorf("create database %s: %w", authzDatabase, err)
		}
	}
	return nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
