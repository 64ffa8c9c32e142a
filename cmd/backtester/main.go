package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ridopark/JonBuhBacktest/internal/data"
	"github.com/ridopark/JonBuhBacktest/pkg/backtester"
	"github.com/ridopark/JonBuhBacktest/pkg/logging"
	"github.com/ridopark/JonBuhBacktest/pkg/strategy"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	// Command line flags
	var (
		symbolFlag     = flag.String("symbol", "AAPL", "Symbol to backtest")
		strategyFlag   = flag.String("strategy", "ma_crossover", "Strategy to use (buy_and_hold, ma_crossover, rsi_reversion, bollinger_breakout)")
		startDate      = flag.String("start", "2024-01-01", "Start date (YYYY-MM-DD)")
		endDate        = flag.String("end", "2024-12-31", "End date (YYYY-MM-DD)")
		initialCapital = flag.Float64("capital", 10000.0, "Initial capital")
		timeframe      = flag.String("timeframe", "1d", "Timeframe (1m, 5m, 15m, 1h, 1d)")
		stopLoss       = flag.Float64("stop-loss", 0, "Stop-loss fraction (e.g. 0.05 for 5%)")
		takeProfit     = flag.Float64("take-profit", 0, "Take-profit fraction")
		trailingStop   = flag.Float64("trailing-stop", 0, "Trailing-stop fraction")
		trailingTP     = flag.Float64("trailing-take-profit", 0, "Trailing take-profit fraction")
		allowShort     = flag.Bool("allow-short", false, "Permit short entries")
		jsonOut        = flag.String("json", "", "Write the full result as JSON to this file")
	)
	flag.Parse()

	// Get logging configuration from environment variables
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logConfig.Pretty = getEnvBool("LOG_PRETTY", true)
	logConfig.EnableFile = getEnvBool("LOG_TO_FILE", false)
	logConfig.LogDir = getEnv("LOG_DIR", "logs")
	logConfig.LogFileName = getEnv("LOG_FILE", "backtester.log")
	logging.Initialize(logConfig)

	logger := logging.GetLogger("main")

	if envErr != nil {
		logger.Warn().Err(envErr).Msg("Could not load .env file, using system environment variables")
	} else {
		logger.Debug().Msg("Successfully loaded .env file")
	}

	logger.Info().Msg("JonBuhBacktest")
	logger.Info().Msg("==============")

	// Parse dates
	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		logger.Fatal().Err(err).Str("start_date", *startDate).Msg("Invalid start date")
	}

	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		logger.Fatal().Err(err).Str("end_date", *endDate).Msg("Invalid end date")
	}
	end = end.Add(24 * time.Hour) // include all data for the end date

	// Get database configuration from environment variables
	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPassword := getEnv("POSTGRES_PASSWORD", "trading_password_2025")
	dbName := getEnv("POSTGRES_DB", "trading_data")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	logger.Info().Msg("Connecting to database...")
	provider, err := data.NewTimescaleDBProvider(connStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create data provider")
	}
	defer provider.Close()

	bars, err := provider.GetBars(*symbolFlag, *timeframe, start, end)
	if err != nil {
		logger.Fatal().Err(err).Str("symbol", *symbolFlag).Msg("Failed to load bars")
	}

	// Create strategy
	strat, err := buildStrategy(*strategyFlag)
	if err != nil {
		logger.Fatal().Err(err).Str("strategy", *strategyFlag).Msg("Failed to build strategy")
	}

	cfg := backtester.Config{
		InitialCapital:        *initialCapital,
		CommissionPct:         getEnvFloat("COMMISSION_RATE", 0.001),
		SlippagePct:           getEnvFloat("SLIPPAGE_RATE", 0.001),
		StopLossPct:           *stopLoss,
		TakeProfitPct:         *takeProfit,
		TrailingStopPct:       *trailingStop,
		TrailingTakeProfitPct: *trailingTP,
		AllowShort:            *allowShort,
	}

	logger.Info().
		Str("symbol", *symbolFlag).
		Str("strategy", strat.Name()).
		Int("bars", len(bars)).
		Float64("initial_capital", cfg.InitialCapital).
		Float64("commission_pct", cfg.CommissionPct).
		Float64("slippage_pct", cfg.SlippagePct).
		Msg("Running backtest")

	engine := backtester.New(strat, bars, cfg)
	result, err := engine.Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("Backtest failed")
	}

	logger.Info().Msg("\n" + result.Summary())

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, result); err != nil {
			logger.Error().Err(err).Str("path", *jsonOut).Msg("Failed to write JSON result")
		} else {
			logger.Info().Str("path", *jsonOut).Msg("Result written")
		}
	}
}

func buildStrategy(name string) (*strategy.Strategy, error) {
	switch name {
	case "buy_and_hold":
		return strategy.NewBuyAndHold()
	case "ma_crossover":
		return strategy.NewMACrossover(5, 20)
	case "rsi_reversion":
		return strategy.NewRSIReversion(14, 30, 70)
	case "bollinger_breakout":
		return strategy.NewBreakout(20, 2.0)
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func writeJSON(path string, result *backtester.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get boolean environment variable with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper function to get float environment variable with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
