// Command import_contributions loads numbered contributions from a CSV file
// into MongoDB so existing discussions can be drawn.
//
// Columns: target_id, position, participant_id[, deleted]. The first row is a header.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ArowuTest/forum-lottery-backend/internal/config"
	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/forum-lottery-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/forum-lottery-backend/pkg/mongodb"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: failed to read .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}
	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, 0)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	imported, skipped, err := importContributions(ctx, mongorepo.NewParticipantRepository(db), file)
	if err != nil {
		log.Fatalf("Failed to import contributions: %v", err)
	}
	log.Printf("Imported %d contributions, skipped %d", imported, skipped)
}

// importContributions reads CSV rows into repo. Malformed rows and positions
// already present are skipped and counted.
func importContributions(ctx context.Context, repo repositories.ParticipantRepository, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	if len(records) < 2 {
		return 0, 0, errors.New("CSV file is empty or has only header")
	}

	for i, record := range records[1:] {
		line := i + 2
		if len(record) < 3 {
			log.Printf("Warning: line %d has less than 3 fields, skipping", line)
			skipped++
			continue
		}
		position, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil || position <= 0 {
			log.Printf("Warning: line %d has invalid position %q, skipping", line, record[1])
			skipped++
			continue
		}
		c := &models.Contribution{
			TargetID:      strings.TrimSpace(record[0]),
			Position:      position,
			ParticipantID: strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			c.Deleted, _ = strconv.ParseBool(strings.TrimSpace(record[3]))
		}
		if c.TargetID == "" {
			log.Printf("Warning: line %d has no target, skipping", line)
			skipped++
			continue
		}

		if err := repo.Record(ctx, c); err != nil {
			if errors.Is(err, repositories.ErrDuplicateContribution) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}
	return imported, skipped, nil
}
