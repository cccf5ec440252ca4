// Command seed loads phrase and reading content from a JSON file into the
// database. Existing rows are left alone; the seeder only inserts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/fluentphrases/backend/internal/catalog"
	"github.com/fluentphrases/backend/internal/config"
	"github.com/fluentphrases/backend/internal/database"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/repository"
)

// seedFile is the expected JSON shape
type seedFile struct {
	Phrases  []models.Phrase  `json:"phrases"`
	Readings []models.Reading `json:"readings"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		path    = flag.String("file", "seed.json", "path to the seed JSON file")
		workers = flag.Int("workers", 8, "concurrent insert workers")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}
	log.Printf("Loaded %d phrases and %d readings from %s", len(seed.Phrases), len(seed.Readings), *path)

	ctx := context.Background()

	db, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	phraseRepo := repository.NewPhraseRepository(db)
	readingRepo := repository.NewReadingRepository(db)

	inserted := seedPhrases(ctx, phraseRepo, seed.Phrases, *workers)
	log.Printf("Inserted %d/%d phrases", inserted, len(seed.Phrases))

	var readingCount int
	for i := range seed.Readings {
		rd := seed.Readings[i]
		if !catalog.IsValid(rd.Category) {
			log.Printf("Skipping reading %q: unknown category %q", rd.Title, rd.Category)
			continue
		}
		if err := readingRepo.Create(ctx, &rd); err != nil {
			log.Printf("Failed to insert reading %q: %v", rd.Title, err)
			continue
		}
		readingCount++
	}
	log.Printf("Inserted %d/%d readings", readingCount, len(seed.Readings))
}

// seedPhrases inserts phrases with a small worker pool
func seedPhrases(ctx context.Context, repo *repository.PhraseRepository, phrases []models.Phrase, workers int) int {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan models.Phrase)
	var (
		mu       sync.Mutex
		inserted int
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				p := p
				if err := repo.Create(ctx, &p); err != nil {
					log.Printf("Failed to insert phrase %q: %v", p.TargetText, err)
					continue
				}
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}

	for _, p := range phrases {
		if !catalog.IsValid(p.Category) {
			log.Printf("Skipping phrase %q: unknown category %q", p.TargetText, p.Category)
			continue
		}
		if !models.IsValidLanguage(p.Language) {
			log.Printf("Skipping phrase %q: unsupported language %q", p.TargetText, p.Language)
			continue
		}
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return inserted
}
