package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/config"
	"github.com/MegaGuyRy/market-prediction/internal/adapters/database"
	"github.com/MegaGuyRy/market-prediction/internal/market"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// loadbars bulk-loads daily OHLCV bars from a CSV file into the
// price_bars table backing the market-driven candidate strategy.
//
// Expected columns: ticker,date,open,high,low,close,volume
// with date in YYYY-MM-DD format. A header row is detected and skipped.
func main() {
	file := flag.String("file", "", "path to CSV file with daily bars")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: loadbars -file bars.csv")
		os.Exit(1)
	}

	if err := run(context.Background(), *file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	bars, err := readBars(path)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars found in %s", path)
	}

	repo := market.NewRepository(db.DB())

	const chunkSize = 1000
	saved := 0
	for i := 0; i < len(bars); i += chunkSize {
		end := i + chunkSize
		if end > len(bars) {
			end = len(bars)
		}
		if err := repo.SaveBars(ctx, bars[i:end]); err != nil {
			return fmt.Errorf("failed to save bars %d-%d: %w", i, end, err)
		}
		saved = end
	}

	logger.Info("price bars loaded",
		zap.String("file", path),
		zap.Int("bars", saved),
	)

	return nil
}

func readBars(path string) ([]models.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 7

	var bars []models.PriceBar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if line == 1 && strings.EqualFold(record[0], "ticker") {
			continue
		}

		bar, err := parseBar(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func parseBar(record []string) (models.PriceBar, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[1]))
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad date %q: %w", record[1], err)
	}

	fields := make([]decimal.Decimal, 5)
	for i, raw := range record[2:7] {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return models.PriceBar{}, fmt.Errorf("bad value %q: %w", raw, err)
		}
		fields[i] = d
	}

	ticker := strings.ToUpper(strings.TrimSpace(record[0]))
	if ticker == "" {
		return models.PriceBar{}, fmt.Errorf("empty ticker")
	}

	return models.PriceBar{
		Ticker: ticker,
		Date:   date,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
