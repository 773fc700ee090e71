package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	AccessTTLMin     int    // access token time‑to‑live in minutes
	RefreshTTLDays   int    // refresh token time‑to‑live in days
	BcryptCost       int    // bcrypt cost for password hashing
	RabbitURL        string // AMQP broker URL for notifications
	GatewayURL       string // payment provider create-payment endpoint
	GatewayLogin     string // merchant id / Basic auth user at the provider
	GatewayPassword  string // Basic auth password at the provider
	CallbackURL      string // public URL the provider posts settlements to
	SuccessURL       string // customer redirect after successful payment
	FailURL          string // customer redirect after failed payment
	CallbackLogin    string // Basic auth user the provider must present on callbacks
	CallbackPassword string // Basic auth password for callbacks
	ReaperGraceMin   int    // minutes an unpaid reservation survives
	ReaperPeriodSec  int    // seconds between expiry sweeps
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),  // environment (dev/test/prod)
		Port:             must("APP_PORT"), // port to bind the HTTP server
		DBUser:           must("DB_USER"),  // database user
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:       mustInt("BCRYPT_COST"),
		RabbitURL:        must("RABBITMQ_URL"),
		GatewayURL:       must("GATEWAY_URL"),
		GatewayLogin:     must("GATEWAY_LOGIN"),
		GatewayPassword:  must("GATEWAY_PASSWORD"),
		CallbackURL:      must("CALLBACK_URL"),
		SuccessURL:       must("SUCCESS_URL"),
		FailURL:          must("FAIL_URL"),
		CallbackLogin:    must("CALLBACK_LOGIN"),
		CallbackPassword: must("CALLBACK_PASSWORD"),
		ReaperGraceMin:   mustInt("RESERVATION_TTL_MIN"), // grace window before unpaid holds expire
		ReaperPeriodSec:  mustInt("REAPER_PERIOD_SEC"),   // sweep cadence
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
