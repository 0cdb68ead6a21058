package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LimitMessages  int    `env:"LIMIT_MESSAGES,default=50"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredWords   string `env:"CENSORED_WORDS"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SSEHeartbeat         time.Duration `env:"SSE_HEARTBEAT,default=15s"`
	RateLimitPerMinute   int           `env:"RATE_LIMIT_PER_MINUTE,default=600"`

	EventHandlerTimeout       time.Duration `env:"EVENT_HANDLER_TIMEOUT,default=5s"`
	LatencyThreshold          time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,default=10s"`
	ConversationSweepInterval time.Duration `env:"CONVERSATION_SWEEP_INTERVAL,default=1m"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	OtelEnabled      bool    `env:"OTEL_ENABLED,default=false"`
	OtelExporter     string  `env:"OTEL_EXPORTER,default=grpc"`
	OtelEndpoint     string  `env:"OTEL_ENDPOINT,default=localhost:4317"`
	OtelSamplingRate float64 `env:"OTEL_SAMPLING_RATE,default=1.0"`

	DebugPort int    `env:"DEBUG_PORT"`
	MailFrom  string `env:"MAIL_FROM,default=teamspace@localhost"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExtraCensoredWords splits the comma separated CENSORED_WORDS.
func (c Config) ExtraCensoredWords() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	return strings.Split(c.CensoredWords, ",")
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
