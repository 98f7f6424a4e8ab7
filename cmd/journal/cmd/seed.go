package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tradingjournal/config"
	"tradingjournal/internal/adapters/logger"
	"tradingjournal/internal/adapters/sqlite"
	"tradingjournal/internal/domain"
	"tradingjournal/internal/metrics"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset into the database",
	Long: `Seed inserts a demo set of closed gold trades so the stats endpoints
have something to show. Run it once against a fresh database; running it
again appends another copy of the dataset.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedTrade struct {
	direction  domain.Direction
	entry      float64
	stopLoss   float64
	takeProfit float64
	exit       float64
	size       float64
	day        int // days after the base date
	notes      string
}

// Demo dataset: ten closed XAU/USD trades, eight winners.
var seedTrades = []seedTrade{
	{domain.Buy, 1900.0, 1895.0, 1915.0, 1912.0, 10, 0, "london open breakout"},
	{domain.Buy, 1912.0, 1906.0, 1930.0, 1928.0, 10, 2, "trend continuation"},
	{domain.Sell, 1935.0, 1941.0, 1920.0, 1922.5, 10, 4, "rejection at resistance"},
	{domain.Buy, 1921.0, 1915.0, 1940.0, 1917.0, 10, 7, "failed breakout"},
	{domain.Buy, 1918.0, 1912.0, 1936.0, 1933.0, 10, 9, "news spike follow-through"},
	{domain.Sell, 1940.0, 1946.0, 1925.0, 1926.0, 10, 11, "double top"},
	{domain.Buy, 1927.0, 1921.0, 1945.0, 1944.0, 10, 14, "pullback entry"},
	{domain.Sell, 1950.0, 1956.0, 1935.0, 1953.5, 10, 16, "countertrend fade, stopped"},
	{domain.Buy, 1948.0, 1942.0, 1966.0, 1964.0, 10, 18, "range break"},
	{domain.Buy, 1962.0, 1956.0, 1980.0, 1978.0, 10, 21, "momentum leg"},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	defer repo.Close()

	base := time.Now().UTC().AddDate(0, -1, 0).Truncate(24 * time.Hour)
	for _, s := range seedTrades {
		openedAt := base.AddDate(0, 0, s.day)
		closedAt := openedAt.Add(6 * time.Hour)

		pips := metrics.ResultPips(s.direction, s.entry, s.exit)
		usd := metrics.ResultUSD(pips, s.size)
		t := &domain.Trade{
			Pair:         "XAU/USD",
			Direction:    s.direction,
			EntryPrice:   s.entry,
			ExitPrice:    &s.exit,
			StopLoss:     &s.stopLoss,
			TakeProfit:   &s.takeProfit,
			PositionSize: s.size,
			Status:       domain.StatusClosed,
			ResultPips:   &pips,
			ResultUSD:    &usd,
			Notes:        s.notes,
			OpenedAt:     openedAt,
			ClosedAt:     &closedAt,
			CreatedAt:    openedAt,
			UpdatedAt:    closedAt,
		}
		if rr, err := metrics.RiskReward(s.entry, s.stopLoss, s.takeProfit); err == nil {
			t.RiskReward = &rr
		}

		if _, err := repo.Create(ctx, t); err != nil {
			return fmt.Errorf("seed trade: %w", err)
		}
	}

	log.Info(ctx, "Demo dataset loaded", map[string]interface{}{"trades": len(seedTrades), "db": cfg.DBPath})
	return nil
}
