// cmd/seed/loaders.go
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func runSeedProducts(c *cli.Context) error {
	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	colMap := columnMap(header)

	db := dbFromContext(c)
	query := `
		INSERT INTO products (name, inventory, price, unit_type, ideal_stock, image_path, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (name) DO NOTHING
	`

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row: %w", err)
		}

		get := fieldGetter(record, colMap)

		inventory, _ := strconv.Atoi(get("inventory"))
		idealStock, _ := strconv.Atoi(get("ideal_stock"))
		price := get("price")
		if price == "" {
			price = "0"
		}

		_, err = db.ExecContext(c.Context, query,
			get("name"), inventory, price, get("unit_type"), idealStock, get("image_path"))
		if err != nil {
			return fmt.Errorf("failed to insert product %q: %w", get("name"), err)
		}
		count++
	}

	log.Printf("Seeded %d products", count)
	return nil
}

func runSeedSnapshots(c *cli.Context) error {
	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	colMap := columnMap(header)

	db := dbFromContext(c)
	query := `
		INSERT INTO inventory_snapshots (product_id, inventory, timestamp)
		SELECT id, $2, $3 FROM products WHERE name = $1
	`

	count, skipped := 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row: %w", err)
		}

		get := fieldGetter(record, colMap)

		inventory, err := strconv.Atoi(get("inventory"))
		if err != nil {
			log.Printf("Skipping row with bad inventory %q", get("inventory"))
			skipped++
			continue
		}

		timestamp := time.Now()
		if ts := get("timestamp"); ts != "" {
			parsed, err := parseTimestamp(ts)
			if err != nil {
				log.Printf("Skipping row with bad timestamp %q", ts)
				skipped++
				continue
			}
			timestamp = parsed
		}

		res, err := db.ExecContext(c.Context, query, get("product"), inventory, timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for %q: %w", get("product"), err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			log.Printf("Skipping snapshot for unknown product %q", get("product"))
			skipped++
			continue
		}
		count++
	}

	log.Printf("Seeded %d snapshots (%d skipped)", count, skipped)
	return nil
}

func columnMap(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return colMap
}

func fieldGetter(record []string, colMap map[string]int) func(string) string {
	return func(col string) string {
		idx, ok := colMap[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
