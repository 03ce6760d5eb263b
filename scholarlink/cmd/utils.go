package cmd

import (
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"scholarlink/scholarlink/store"
)

// Config is the environment shared by every CLI. Job parameters come in
// through flags; connection and artifact locations through the env.
type Config struct {
	DBTarget    string `env:"DB_URI,notEmpty,required"`
	ModelDir    string `env:"MODEL_DIR,notEmpty" envDefault:"./models"`
	Logfile     string `env:"LOGFILE,notEmpty" envDefault:"scholarlink.log"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"0"`
}

// ParseConfig loads the optional env file then parses the environment.
// Call after flag.Parse.
func ParseConfig(envFile string) Config {
	if envFile == "" {
		log.Printf("no env file specified, using os.Environ only")
	} else {
		log.Printf("loading env from file %s", envFile)
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalf("error loading .env file '%s': %v", envFile, err)
		}
	}

	var config Config
	if err := env.Parse(&config); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}
	return config
}

func OpenDB(target string) *gorm.DB {
	db, err := store.Open(target)
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}
	return db
}

func InitLogging(logfile string) *os.File {
	logFile, err := os.OpenFile(logfile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}

	log.SetFlags(log.Lshortfile | log.Ltime | log.Ldate)
	log.SetOutput(io.MultiWriter(logFile, os.Stderr))
	slog.Info("logging initialized", "log_file", logFile.Name())
	return logFile
}
