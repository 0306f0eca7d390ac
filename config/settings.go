package config

import (
	"os"
	"strconv"
)

// Env-driven settings with defaults. Fee amounts are in whole currency
// units (BDT in the original deployment).

func DatabaseName() string {
	if name := os.Getenv("MONGODB_DATABASE"); name != "" {
		return name
	}
	return "civicfix"
}

func BoostFee() int64 {
	return envInt64("BOOST_FEE", 100)
}

func SubscriptionFee() int64 {
	return envInt64("SUBSCRIPTION_FEE", 1000)
}

// DailyIssueLimit caps how many issues one citizen may report per day.
func DailyIssueLimit() int {
	return int(envInt64("DAILY_ISSUE_LIMIT", 5))
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
