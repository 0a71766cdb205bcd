package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Mongo      MongoConfig
	Catalog    CatalogConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Drive      DriveConfig
	Cloudinary CloudinaryConfig
	Twilio     TwilioConfig
	Uploads    UploadsConfig
	IDCard     IDCardConfig
	OTP        OTPConfig
	Bootstrap  BootstrapConfig
}

// MongoConfig points at the document store holding student records.
type MongoConfig struct {
	URI      string
	Database string
}

// CatalogConfig configures the relational store backing the product panel.
type CatalogConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	Expiration         time.Duration
	RememberExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DriveConfig holds Google Drive service-account settings.
type DriveConfig struct {
	ServiceAccountFile string
	ParentFolderID     string
}

// CloudinaryConfig holds the photo-upload account settings.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// TwilioConfig holds SMS delivery credentials.
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// UploadsConfig bounds inbound document uploads.
type UploadsConfig struct {
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

// IDCardConfig drives the card generation pipeline.
type IDCardConfig struct {
	TemplatePath    string
	OutputDir       string
	PhotoTimeout    time.Duration
	SofficeBinary   string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// OTPConfig governs phone verification codes.
type OTPConfig struct {
	Length int
	TTL    time.Duration
}

// BootstrapConfig seeds the initial super admin.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Mongo = MongoConfig{
		URI:      v.GetString("MONGO_URI"),
		Database: v.GetString("DATABASE_NAME"),
	}

	cfg.Catalog = CatalogConfig{
		Enabled:      v.GetBool("ENABLE_CATALOG"),
		Host:         v.GetString("CATALOG_DB_HOST"),
		Port:         v.GetInt("CATALOG_DB_PORT"),
		User:         v.GetString("CATALOG_DB_USER"),
		Password:     v.GetString("CATALOG_DB_PASSWORD"),
		Name:         v.GetString("CATALOG_DB_NAME"),
		SSLMode:      v.GetString("CATALOG_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("CATALOG_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("CATALOG_DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:             v.GetString("SECRET_KEY"),
		Expiration:         parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RememberExpiration: parseDuration(v.GetString("JWT_REMEMBER_EXPIRATION"), 30*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Drive = DriveConfig{
		ServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ParentFolderID:     v.GetString("GOOGLE_DRIVE_PARENT_FOLDER_ID"),
	}

	cfg.Cloudinary = CloudinaryConfig{
		CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		APIKey:    v.GetString("CLOUDINARY_API_KEY"),
		APISecret: v.GetString("CLOUDINARY_API_SECRET"),
		Folder:    v.GetString("CLOUDINARY_FOLDER"),
	}

	cfg.Twilio = TwilioConfig{
		AccountSID:  v.GetString("TWILIO_SID"),
		AuthToken:   v.GetString("TWILIO_AUTH_TOKEN"),
		PhoneNumber: v.GetString("TWILIO_PHONE_NUMBER"),
	}

	maxUpload := v.GetInt64("MAX_FILE_SIZE_MB")
	if maxUpload <= 0 {
		maxUpload = 5
	}
	cfg.Uploads = UploadsConfig{
		MaxFileSizeBytes:  maxUpload * 1024 * 1024,
		AllowedExtensions: splitAndTrim(v.GetString("ALLOWED_EXTENSIONS")),
	}

	cfg.IDCard = IDCardConfig{
		TemplatePath:    v.GetString("ID_CARD_TEMPLATE"),
		OutputDir:       v.GetString("ID_CARD_OUTPUT_DIR"),
		PhotoTimeout:    parseDuration(v.GetString("ID_CARD_PHOTO_TIMEOUT"), 30*time.Second),
		SofficeBinary:   v.GetString("ID_CARD_SOFFICE_BINARY"),
		SignedURLSecret: v.GetString("ID_CARD_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("ID_CARD_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.OTP = OTPConfig{
		Length: v.GetInt("OTP_LENGTH"),
		TTL:    parseDuration(v.GetString("OTP_TTL"), 5*time.Minute),
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminEmail:    v.GetString("DEFAULT_ADMIN_EMAIL"),
		AdminPassword: v.GetString("DEFAULT_ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces the configuration the process cannot run without.
func (c *Config) validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("DATABASE_NAME", "student_registration")

	v.SetDefault("ENABLE_CATALOG", false)
	v.SetDefault("CATALOG_DB_HOST", "localhost")
	v.SetDefault("CATALOG_DB_PORT", 5432)
	v.SetDefault("CATALOG_DB_USER", "postgres")
	v.SetDefault("CATALOG_DB_PASSWORD", "postgres")
	v.SetDefault("CATALOG_DB_NAME", "product_catalog")
	v.SetDefault("CATALOG_DB_SSL_MODE", "disable")
	v.SetDefault("CATALOG_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("CATALOG_DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_REMEMBER_EXPIRATION", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "./credentials.json")
	v.SetDefault("GOOGLE_DRIVE_PARENT_FOLDER_ID", "")

	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "student_photos")

	v.SetDefault("TWILIO_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")

	v.SetDefault("MAX_FILE_SIZE_MB", 5)
	v.SetDefault("ALLOWED_EXTENSIONS", "pdf,png,jpg,jpeg")

	v.SetDefault("ID_CARD_TEMPLATE", "./templates/id_card.pptx")
	v.SetDefault("ID_CARD_OUTPUT_DIR", "./generated_id_cards")
	v.SetDefault("ID_CARD_PHOTO_TIMEOUT", "30s")
	v.SetDefault("ID_CARD_SOFFICE_BINARY", "soffice")
	v.SetDefault("ID_CARD_SIGNED_URL_SECRET", "dev_card_secret")
	v.SetDefault("ID_CARD_SIGNED_URL_TTL", "30m")

	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_TTL", "5m")

	v.SetDefault("DEFAULT_ADMIN_EMAIL", "superadmin@college.edu")
	v.SetDefault("DEFAULT_ADMIN_PASSWORD", "superadmin1234")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
