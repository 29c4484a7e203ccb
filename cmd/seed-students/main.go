package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/database"
	"github.com/examsched/examsched-backend/internal/logger"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/repository"
	"github.com/examsched/examsched-backend/internal/service"
)

// Imports students from a CSV file with columns:
//
//	full_name,reg_number,class_name
//
// Classes are created on demand by name.
func main() {
	var csvPath string
	flag.StringVar(&csvPath, "file", "students.csv", "Path to students CSV file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	classRepo := repository.NewClassRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	classService := service.NewClassService(classRepo, log)
	studentService := service.NewStudentService(studentRepo, log)

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("Failed to open CSV file")
	}
	defer f.Close()

	fmt.Printf("=== Importing students from %s ===\n", csvPath)

	reader := csv.NewReader(f)
	classIDs := make(map[string]int) // class name → ID

	line := 0
	successCount := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", line+1).Msg("Failed to read CSV")
		}
		line++

		if len(record) < 3 {
			fmt.Printf("Line %d: expected 3 columns, got %d. Skipping.\n", line, len(record))
			continue
		}

		fullName := strings.TrimSpace(record[0])
		regNumber := strings.TrimSpace(record[1])
		className := strings.TrimSpace(record[2])

		// Header row.
		if line == 1 && strings.EqualFold(fullName, "full_name") {
			continue
		}

		classID, ok := classIDs[className]
		if !ok {
			classID, err = findOrCreateClass(ctx, pool, classService, className)
			if err != nil {
				log.Fatal().Err(err).Str("class", className).Msg("Failed to resolve class")
			}
			classIDs[className] = classID
		}

		_, err = studentService.Create(ctx, &model.StudentRequest{
			FullName:  fullName,
			RegNumber: regNumber,
			ClassID:   classID,
		})
		if err != nil {
			fmt.Printf("Line %d: error creating student %s (%s): %v\n", line, fullName, regNumber, err)
			continue
		}
		successCount++
		if successCount%50 == 0 {
			fmt.Printf("Imported %d students...\n", successCount)
		}
	}

	fmt.Printf("\nImport completed! Successfully added %d students.\n", successCount)
}

func findOrCreateClass(ctx context.Context, pool *pgxpool.Pool, classService *service.ClassService, name string) (int, error) {
	var id int
	err := pool.QueryRow(ctx, "SELECT id FROM classes WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	fmt.Printf("Class %q not found. Creating it...\n", name)
	class, err := classService.Create(ctx, &model.ClassRequest{Name: name})
	if err != nil {
		return 0, err
	}
	return class.ID, nil
}
