package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Strings for identifiers and secrets, ints for
// durations and costs. Provider credentials are optional: a missing value
// disables the matching integration rather than stopping the server.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	ResetTTLMin    int    // password-reset token time-to-live in minutes
	BcryptCost     int    // bcrypt cost for password hashing

	MailDomain    string // mail provider domain (reset emails)
	MailAPIKey    string // mail provider API key
	MailFrom      string // From address on outgoing mail
	BusAPIKey     string // bus arrival provider account key
	TranslateURLs string // comma-separated translation endpoints, tried in order
	GeocodeURL    string // geocoding endpoint base URL

	GoogleClientID     string // Google OAuth2 client id (calendar sync)
	GoogleClientSecret string // Google OAuth2 client secret
	GoogleRedirectURL  string // registered OAuth2 redirect URL
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		ResetTTLMin:    intOr("RESET_TOKEN_TTL_MIN", 15),
		BcryptCost:     mustInt("BCRYPT_COST"),

		MailDomain:    os.Getenv("MAIL_DOMAIN"),
		MailAPIKey:    os.Getenv("MAIL_API_KEY"),
		MailFrom:      getenv("MAIL_FROM", "EverydayCare <noreply@everydaycare.app>"),
		BusAPIKey:     os.Getenv("BUS_API_KEY"),
		TranslateURLs: os.Getenv("TRANSLATE_URLS"),
		GeocodeURL:    os.Getenv("GEOCODE_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	}
}

// IsProd reports whether the server runs in production mode. In production,
// 500 responses never include error detail.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable with a default.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
