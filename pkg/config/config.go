package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	PostgresConnStr         string
	AccessTokenSecret       string
	RefreshTokenSecret      string
	FirebaseCredentialsPath string
	S3Bucket                string
	S3Region                string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		AccessTokenSecret:       getEnv("ACCESS_TOKEN_SECRET", "supersecretaccesskey"),
		RefreshTokenSecret:      getEnv("REFRESH_TOKEN_SECRET", "supersecretrefreshkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		S3Bucket:                getEnv("S3_BUCKET", "postit-media"),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
