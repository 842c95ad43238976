package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitCSV("a, b,c"))
	assert.Nil(t, splitCSV(""))
}

func TestSplitCSVInts(t *testing.T) {
	assert.Equal(t, []int{500, 502, 503}, splitCSVInts("500,502,503"))
}

func TestValidate_RequiresTopicInRankTopic(t *testing.T) {
	cfg := &Config{
		Tier:             "GOLD",
		BootstrapServers: []string{"localhost:9092"},
		RedisHost:        "localhost",
		WebhookBaseURL:   "http://merchant",
		Topic:            "gold_topic",
		Group:            "gold_group",
		RankTopic:        []string{"silver_topic", "bronze_topic"},
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_PassesWhenTopicInRankTopic(t *testing.T) {
	cfg := &Config{
		Tier:             "GOLD",
		BootstrapServers: []string{"localhost:9092"},
		RedisHost:        "localhost",
		WebhookBaseURL:   "http://merchant",
		Topic:            "gold_topic",
		Group:            "gold_group",
		RankTopic:        []string{"gold_topic", "silver_topic", "bronze_topic"},
	}
	assert.NoError(t, cfg.Validate())
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "localhost", RedisPort: "6379"}
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
