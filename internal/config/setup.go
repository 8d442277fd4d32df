package config

// SetupValues are the settings collected by the setup wizard and written
// to the runtime .env file.
type SetupValues struct {
	DiscordToken   string `env:"DISCORD_TOKEN"`
	GoogleAPIKey   string `env:"GOOGLE_API_KEY"`
	ForumChannelID string `env:"FORUM_CHANNEL_ID"`
	FeedURL        string `env:"NEWS_RSS_URL"`
	MainModel      string `env:"GEMI_MAIN_MODEL"`
}
