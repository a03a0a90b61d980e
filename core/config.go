package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SMSConfig struct {
		APIKey   string
		SenderID string
		APIURL   string
	}

	// WalletConfig holds the wallet policy knobs. Money values are decimal
	// strings so they reach fixed-point arithmetic untouched by float parsing.
	WalletConfig struct {
		MinTopUp        string
		MinSMSPurchase  int
		SMSUnitPrice    string
		BulkThreshold   int
		BulkDiscountPct int
	}

	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool

		AppName         string
		Currency        string
		SecretKey       string
		FrontendBaseURL string
		WorkDir         string
		DefaultFromName string
		DefaultFromAddr string
		SendgridAPIKey  string
		RollbarToken    string

		Server   ServerConfig
		Database DatabaseConfig
		SMS      SMSConfig
		Wallet   WalletConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads configuration from the environment with DEV defaults.
// An optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "SchoolFees")
	v.SetDefault("currency", "GHS")
	v.SetDefault("secretKey", "q2x^$8uoxh2(h!x)#*c2(#yg4h^$cegm2emy&poq5-wer")
	v.SetDefault("frontendBaseUrl", "http://localhost:5173")
	v.SetDefault("defaultFromName", "SchoolFees")
	v.SetDefault("defaultFromAddr", "noreply@localhost")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "schoolfees")
	v.SetDefault("database.user", "schoolfees")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTls", true)

	v.SetDefault("sms.senderId", "SchoolFees")
	v.SetDefault("sms.apiUrl", "https://sms.arkesel.com/sms/api")

	v.SetDefault("wallet.minTopUp", "5.00")
	v.SetDefault("wallet.minSmsPurchase", 10)
	v.SetDefault("wallet.smsUnitPrice", "0.20")
	v.SetDefault("wallet.bulkThreshold", 1000)
	v.SetDefault("wallet.bulkDiscountPct", 10)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		Currency:        v.GetString("currency"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseUrl"),
		WorkDir:         wd,
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromAddr"),
		SendgridAPIKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("server.passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		SMS: SMSConfig{
			APIKey:   v.GetString("sms.apiKey"),
			SenderID: v.GetString("sms.senderId"),
			APIURL:   v.GetString("sms.apiUrl"),
		},
		Wallet: WalletConfig{
			MinTopUp:        v.GetString("wallet.minTopUp"),
			MinSMSPurchase:  v.GetInt("wallet.minSmsPurchase"),
			SMSUnitPrice:    v.GetString("wallet.smsUnitPrice"),
			BulkThreshold:   v.GetInt("wallet.bulkThreshold"),
			BulkDiscountPct: v.GetInt("wallet.bulkDiscountPct"),
		},
	}
}

// NewTestConfig returns a Config for unit tests: no env lookups, no filesystem access.
func NewTestConfig() *Config {
	return &Config{
		Env:             "TEST",
		Debug:           true,
		TestMode:        true,
		AppName:         "SchoolFees",
		Currency:        "GHS",
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:5173",
		DefaultFromName: "SchoolFees",
		DefaultFromAddr: "noreply@localhost",
		Server: ServerConfig{
			Host:                      "127.0.0.1:0",
			ShutdownTimeout:           5 * time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
			PasswordResetTimeoutDelta: time.Hour,
		},
		SMS: SMSConfig{SenderID: "SchoolFees"},
		Wallet: WalletConfig{
			MinTopUp:        "5.00",
			MinSMSPurchase:  10,
			SMSUnitPrice:    "0.20",
			BulkThreshold:   1000,
			BulkDiscountPct: 10,
		},
	}
}

// Getwd finds the project root by walking up to the nearest go.mod.
// go-test changes the working directory to the test package being run.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err = os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
