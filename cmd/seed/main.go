// cmd/seed/main.go
//
// Seeding tool: initializes the schema and loads product and snapshot
// history CSVs into postgres.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) *sql.DB {
	db, _ := c.Context.Value(dbKey).(*sql.DB)
	return db
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "initialize and seed the pantrytrack database",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag(), schemaFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runInitSchema,
			},
			{
				Name:   "products",
				Usage:  "load products from a CSV file (name,inventory,price,unit_type,ideal_stock,image_path)",
				Flags:  []cli.Flag{newDBURLFlag(), fileFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSeedProducts,
			},
			{
				Name:   "snapshots",
				Usage:  "load snapshot history from a CSV file (product,inventory,timestamp)",
				Flags:  []cli.Flag{newDBURLFlag(), fileFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSeedSnapshots,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func schemaFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "schema",
		Usage: "Path to the schema SQL file",
		Value: "migrations/schema.sql",
	}
}

func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Usage:    "Path to the CSV file",
		Required: true,
	}
}

func runInitSchema(c *cli.Context) error {
	schema, err := os.ReadFile(c.String("schema"))
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := dbFromContext(c).ExecContext(c.Context, string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied")
	return nil
}
