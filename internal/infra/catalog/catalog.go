// Package catalog provides the built-in ad catalog and the TOML seed file
// format used by `watchearn ads seed`.
//
// A seed file is a list of [[ad]] tables:
//
//	[[ad]]
//	id = 1
//	title = "Morning Coffee"
//	url = "https://cdn.watchearn.example/ads/coffee.mp4"
//	duration_seconds = 30
//	reward_amount = 100
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// DefaultReward is the reward for every built-in ad.
const DefaultReward int64 = 100

// Catalog is the built-in ad set used when no seed file is given.
var Catalog = []domain.Ad{
	{
		ID:              1,
		Title:           "Morning Coffee Blend",
		Description:     "A thirty second spot for a fair-trade roast.",
		URL:             "https://cdn.watchearn.example/ads/coffee.mp4",
		DurationSeconds: 30,
		RewardAmount:    DefaultReward,
	},
	{
		ID:              2,
		Title:           "City Runner Sneakers",
		Description:     "Lightweight trainers built for the commute.",
		URL:             "https://cdn.watchearn.example/ads/sneakers.mp4",
		DurationSeconds: 45,
		RewardAmount:    DefaultReward,
	},
	{
		ID:              3,
		Title:           "Budget Travel Deals",
		Description:     "Weekend getaways at half the usual price.",
		URL:             "https://cdn.watchearn.example/ads/travel.mp4",
		DurationSeconds: 60,
		RewardAmount:    DefaultReward,
	},
	{
		ID:              4,
		Title:           "Home Fitness App",
		Description:     "Guided workouts that fit in a lunch break.",
		URL:             "https://cdn.watchearn.example/ads/fitness.mp4",
		DurationSeconds: 75,
		RewardAmount:    DefaultReward,
	},
	{
		ID:              5,
		Title:           "Smart Savings Account",
		Description:     "Round up every purchase into savings.",
		URL:             "https://cdn.watchearn.example/ads/savings.mp4",
		DurationSeconds: 90,
		RewardAmount:    DefaultReward,
	},
}

type seedFile struct {
	Ads []domain.Ad `toml:"ad"`
}

// Load reads and validates a TOML seed file.
func Load(path string) ([]domain.Ad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes seed file contents and validates them.
func Parse(data string) ([]domain.Ad, error) {
	var f seedFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown seed keys: %v", undecoded)
	}
	if err := Validate(f.Ads); err != nil {
		return nil, err
	}
	return f.Ads, nil
}

// Validate checks that ids are unique and positive and that every ad has
// a title, a positive duration and a positive reward.
func Validate(ads []domain.Ad) error {
	if len(ads) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[int64]bool, len(ads))
	for i, ad := range ads {
		switch {
		case ad.ID <= 0:
			return fmt.Errorf("ad #%d: id must be positive, got %d", i, ad.ID)
		case seen[ad.ID]:
			return fmt.Errorf("ad #%d: duplicate id %d", i, ad.ID)
		case strings.TrimSpace(ad.Title) == "":
			return fmt.Errorf("ad %d: title is required", ad.ID)
		case ad.DurationSeconds <= 0:
			return fmt.Errorf("ad %d: duration_seconds must be positive", ad.ID)
		case ad.RewardAmount <= 0:
			return fmt.Errorf("ad %d: reward_amount must be positive", ad.ID)
		}
		seen[ad.ID] = true
	}
	return nil
}
