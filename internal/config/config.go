package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type (
	Container struct {
		App         *App
		Token       *Token
		DB          *DB
		HTTP        *HTTP
		Redis       *Redis
		Strava      *Strava
		Notifier    *Notifier
		Alerts      *Alerts
		UserService *UserService
	}

	App struct {
		Name string
		Env  string
	}

	Token struct {
		Secret   string
		Duration string
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
	}

	Redis struct {
		Address  string
		Password string
	}

	Strava struct {
		ClientID     string
		ClientSecret string
		TokenURL     string
		APIURL       string
		RedirectURI  string
	}

	Notifier struct {
		WebhookURL string
	}

	Alerts struct {
		RealertDays string
	}

	UserService struct {
		Address string
	}
)

func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load()
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Name: os.Getenv("APP_NAME"),
		Env:  os.Getenv("APP_ENV"),
	}

	token := &Token{
		Secret:   os.Getenv("TOKEN_SECRET"),
		Duration: os.Getenv("TOKEN_DURATION"),
	}

	db := &DB{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
	}

	http := &HTTP{
		Port:           os.Getenv("HTTP_PORT"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		URL:            os.Getenv("HTTP_URL"),
		Env:            os.Getenv("APP_ENV"),
	}

	redis := &Redis{
		Address:  os.Getenv("REDIS_ADDRESS"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	strava := &Strava{
		ClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		TokenURL:     os.Getenv("STRAVA_TOKEN_URL"),
		APIURL:       os.Getenv("STRAVA_API_URL"),
		RedirectURI:  os.Getenv("STRAVA_REDIRECT_URI"),
	}
	if strava.TokenURL == "" {
		strava.TokenURL = "https://www.strava.com/oauth/token"
	}
	if strava.APIURL == "" {
		strava.APIURL = "https://www.strava.com/api/v3"
	}

	notifier := &Notifier{
		WebhookURL: os.Getenv("NOTIFIER_WEBHOOK_URL"),
	}

	alerts := &Alerts{
		RealertDays: os.Getenv("ALERT_REALERT_DAYS"),
	}

	userService := &UserService{
		Address: os.Getenv("USER_SERVICE_ADDRESS"),
	}

	return &Container{
		App:         app,
		Token:       token,
		DB:          db,
		HTTP:        http,
		Redis:       redis,
		Strava:      strava,
		Notifier:    notifier,
		Alerts:      alerts,
		UserService: userService,
	}, nil
}

func (a *Alerts) RealertDaysInt() int {
	days, err := strconv.Atoi(a.RealertDays)
	if err != nil || days <= 0 {
		return 14 // дефолт если не задано
	}
	return days
}
