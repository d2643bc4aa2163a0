package config

import (
	"slices"
	"strings"
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"8h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// Roles holds the lookup ids the authorization layer depends on.
type Roles struct {
	MegaAdmin          int64 `envconfig:"MEGA_ADMIN" default:"1"`
	Admin              int64 `envconfig:"ADMIN" default:"2"`
	Broker             int64 `envconfig:"BROKER" default:"3"`
	Verifier           int64 `envconfig:"VERIFIER" default:"4"`
	SystemStaffID      int64 `envconfig:"SYSTEM_STAFF_ID" default:"2"`
	UserBannedStatus   int64 `envconfig:"USER_BANNED_STATUS" default:"2"`
	StaffBlockedStatus int64 `envconfig:"STAFF_BLOCKED_STATUS" default:"2"`
}

// DefaultRoles returns the ids seeded by the initial migration.
func DefaultRoles() *Roles {
	return &Roles{
		MegaAdmin:          1,
		Admin:              2,
		Broker:             3,
		Verifier:           4,
		SystemStaffID:      2,
		UserBannedStatus:   2,
		StaffBlockedStatus: 2,
	}
}

// RightsLevels lists every staff rights level.
func (r *Roles) RightsLevels() []int64 {
	return []int64{r.MegaAdmin, r.Admin, r.Broker, r.Verifier}
}

func (r *Roles) AdminLevels() []int64 {
	return []int64{r.MegaAdmin, r.Admin}
}

func (r *Roles) BrokerLevels() []int64 {
	return []int64{r.Broker, r.Admin, r.MegaAdmin}
}

func (r *Roles) VerifierLevels() []int64 {
	return []int64{r.Verifier}
}

func (r *Roles) IsRightsLevel(id int64) bool {
	return slices.Contains(r.RightsLevels(), id)
}

// Ledger holds the operation type ids written to the history tables.
type Ledger struct {
	Increase           int64 `envconfig:"INCREASE" default:"1"`
	Decrease           int64 `envconfig:"DECREASE" default:"2"`
	Purchase           int64 `envconfig:"PURCHASE" default:"3"`
	Sale               int64 `envconfig:"SALE" default:"4"`
	DepositoryPurchase int64 `envconfig:"DEPOSITORY_PURCHASE" default:"1"`
	DepositorySale     int64 `envconfig:"DEPOSITORY_SALE" default:"2"`
}

func DefaultLedger() *Ledger {
	return &Ledger{
		Increase:           1,
		Decrease:           2,
		Purchase:           3,
		Sale:               4,
		DepositoryPurchase: 1,
		DepositorySale:     2,
	}
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Cors struct {
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000"`
}

// Origins renders the allow-list in the form fiber's cors middleware expects.
func (c *Cors) Origins() string {
	return strings.Join(c.AllowOrigins, ",")
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	Stream       string        `envconfig:"STREAM" default:"brokerage:ledger"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"TOPIC" default:"brokerage.ledger"`
}

type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Redis  *Redis `envconfig:"REDIS"`
	Kafka  *Kafka `envconfig:"KAFKA"`
}

// DefaultCacheTTL bounds how long a cached rate snapshot is served.
const DefaultCacheTTL = 5 * time.Minute

type Cache struct {
	Driver   string        `envconfig:"DRIVER" default:"none"`
	TTL      time.Duration `envconfig:"TTL" default:"5m"`
	RedisURL string        `envconfig:"REDIS_URL"`
	Prefix   string        `envconfig:"PREFIX" default:"brokerage:"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[brokerage]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"8000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Roles     *Roles     `envconfig:"ROLES"`
	Ledger    *Ledger    `envconfig:"LEDGER"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Cors      *Cors      `envconfig:"CORS"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	Cache     *Cache     `envconfig:"CACHE"`
}
