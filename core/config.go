package core

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug        bool
		TestMode     bool
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		SecretKey    string
		TimeFormat   string // display format for timestamps in notification messages
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Schedule ScheduleConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string // empty -> in-memory catalog store
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
	}

	// ScheduleConfig holds the knobs of the event aggregation engine.
	ScheduleConfig struct {
		LookaheadWindow time.Duration // how far ahead notifications are derived
		ReminderLead    time.Duration // how long before an event its reminder surfaces
		PrepLead        time.Duration // how long before an assignment its prep event lands
		RefreshSpec     string        // cron spec for periodic source refreshes
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3p!x-d4r4s4-(h&x)#*c2(#yg4h^$cegm2emy-qoz5wer")
	conf.SetDefault("timeFormat", "Jan 2, 15:04")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "0.0.0.0")
	conf.SetDefault("server.port", 8000)
	conf.SetDefault("server.debugHost", "0.0.0.0:8001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database.engine", "")
	conf.SetDefault("database.name", "darasa")
	conf.SetDefault("database.user", "postgres")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("schedule.lookaheadWindow", 7*24*time.Hour)
	conf.SetDefault("schedule.reminderLead", 24*time.Hour)
	conf.SetDefault("schedule.prepLead", 48*time.Hour)
	conf.SetDefault("schedule.refreshSpec", "@every 15m")

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     testMode,
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		TimeFormat:   conf.GetString("timeFormat"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Port:                      conf.GetInt("server.port"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     conf.GetString("database.engine"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetString("database.port"),
			DisableTLS: conf.GetBool("database.disableTLS"),
		},
		Schedule: ScheduleConfig{
			LookaheadWindow: conf.GetDuration("schedule.lookaheadWindow"),
			ReminderLead:    conf.GetDuration("schedule.reminderLead"),
			PrepLead:        conf.GetDuration("schedule.prepLead"),
			RefreshSpec:     conf.GetString("schedule.refreshSpec"),
		},
	}
}
