package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backends possibles pour le registre des commandes
const (
	BackendMemory = "memory"
	BackendScylla = "scylla"
	BackendSheet  = "sheet"
)

type Config struct {
	Port    string
	BaseURL string

	LedgerBackend string
	SheetAPIURL   string

	CompanyName   string
	CompanySites  []string
	OrderNotifyTo []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	JWTSecret         string
	AdminPasswordHash string

	CORSOrigins []string
	PDFEnabled  bool

	// Limite de soumissions de commandes par demandeur et par minute
	SubmitRateLimit int
}

// AppConfig est la configuration chargée au démarrage
var AppConfig = &Config{}

// Load lit le fichier .env (s'il existe) puis les variables d'environnement
func Load() *Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	AppConfig = FromEnv()
	return AppConfig
}

// FromEnv construit la configuration à partir de l'environnement courant
func FromEnv() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		LedgerBackend:     strings.ToLower(getEnv("LEDGER_BACKEND", BackendMemory)),
		SheetAPIURL:       os.Getenv("SHEET_API_URL"),
		CompanyName:       getEnv("COMPANY_NAME", "株式会社"),
		CompanySites:      splitList(os.Getenv("COMPANY_SITES")),
		OrderNotifyTo:     splitList(os.Getenv("ORDER_NOTIFY_TO")),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:          getEnv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		PDFEnabled:        strings.ToLower(getEnv("PDF_ENABLED", "true")) == "true",
		SubmitRateLimit:   getEnvInt("SUBMIT_RATE_LIMIT", 10),
	}

	switch cfg.LedgerBackend {
	case BackendMemory, BackendScylla, BackendSheet:
	default:
		log.Printf("⚠️ LEDGER_BACKEND inconnu (%s), utilisation du backend mémoire", cfg.LedgerBackend)
		cfg.LedgerBackend = BackendMemory
	}
	if cfg.LedgerBackend == BackendSheet && cfg.SheetAPIURL == "" {
		log.Println("⚠️ SHEET_API_URL manquant, utilisation du backend mémoire")
		cfg.LedgerBackend = BackendMemory
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%s), valeur par défaut %d", key, v, def)
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
