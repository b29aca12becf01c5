package config

import "os"

type Config struct {
	ListenAddr    string
	DBPath        string
	VisionBackend string
	OllamaHost    string
	OllamaModel   string
	ClaudeAPIKey  string
	ClaudeModel   string
	ImagePath     string
	LogLevel      string
	LogFile       string
}

func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "/data/roomproof.db"),
		VisionBackend: getEnv("VISION_BACKEND", "ollama"),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "moondream"),
		ClaudeAPIKey:  getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:   getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		ImagePath:     getEnv("IMAGE_LOCAL_PATH", "/data/images"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
