package mongo

import "time"

// Config holds the connection settings for the Mongo-backed record store.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // mongodb://... connection string
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // Per-attempt dial timeout
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // Connection pool upper bound
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // Connections kept warm
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // Idle connection lifetime
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`       // Driver-level write retries
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`        // Driver-level read retries
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // Connect attempts before failing
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // Pause between connect attempts
}
