package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type ModelProvider string

const (
	ModelProviderOpenAI      ModelProvider = "openai"
	ModelProviderOllama      ModelProvider = "ollama"
	ModelProviderHuggingFace ModelProvider = "huggingface"
	ModelProviderGemini      ModelProvider = "gemini"
)

type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeGCP   StorageType = "GCP"
	StorageTypeAWS   StorageType = "AWS"
	StorageTypeAzure StorageType = "Azure"
)

type VectorStoreType string

const (
	VectorStoreLocal    VectorStoreType = "local"
	VectorStoreWeaviate VectorStoreType = "weaviate"
	VectorStoreQdrant   VectorStoreType = "qdrant"
)

type HistoryType string

const (
	HistoryNone     HistoryType = "none"
	HistorySQLite   HistoryType = "sqlite"
	HistoryMongo    HistoryType = "mongo"
	HistoryFirebase HistoryType = "firebase"
)

type AuthProvider string

const (
	AuthFirebase AuthProvider = "firebase"
	AuthJWT      AuthProvider = "jwt"
)

type Config struct {
	AppName       string            `mapstructure:"app_name"`
	Debug         bool              `mapstructure:"debug"`
	Port          string            `mapstructure:"port" validate:"required"`
	ModelProvider ModelProvider     `mapstructure:"model_provider" validate:"oneof=openai ollama huggingface gemini"`
	Models        ModelsConfig      `mapstructure:"models"`
	Storage       StorageConfig     `mapstructure:"storage"`
	VectorStore   VectorStoreConfig `mapstructure:"vector_store"`
	History       HistoryConfig     `mapstructure:"history"`
	Auth          AuthConfig        `mapstructure:"auth"`
	Chunking      ChunkingConfig    `mapstructure:"chunking"`
	Retrieval     RetrievalConfig   `mapstructure:"retrieval"`
	Upload        UploadConfig      `mapstructure:"upload"`
	Cors          CorsConfig        `mapstructure:"cors"`
}

type ModelsConfig struct {
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Ollama      OllamaConfig      `mapstructure:"ollama"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	LLMModel        string `mapstructure:"llm_model"`
	EmbeddingsModel string `mapstructure:"embeddings_model"`
}

type OllamaConfig struct {
	URL             string `mapstructure:"url"`
	LLMModel        string `mapstructure:"llm_model"`
	EmbeddingsModel string `mapstructure:"embeddings_model"`
}

type HuggingFaceConfig struct {
	APIToken        string `mapstructure:"api_token"`
	ChatURL         string `mapstructure:"chat_url"`
	InferenceURL    string `mapstructure:"inference_url"`
	LLMModel        string `mapstructure:"llm_model"`
	EmbeddingsModel string `mapstructure:"embeddings_model"`
}

type GeminiConfig struct {
	// APIKey may hold several comma separated keys, they are rotated on failure.
	APIKey          string `mapstructure:"api_key"`
	LLMModel        string `mapstructure:"llm_model"`
	EmbeddingsModel string `mapstructure:"embeddings_model"`
}

// ModelNames is the pair of models used by the active provider.
type ModelNames struct {
	LLM        string
	Embeddings string
}

type StorageConfig struct {
	Type                  StorageType `mapstructure:"type"`
	LocalPath             string      `mapstructure:"local_path"`
	Bucket                string      `mapstructure:"bucket"`
	GCPCredentialsFile    string      `mapstructure:"gcp_credentials_file"`
	AWSRegion             string      `mapstructure:"aws_region"`
	AzureConnectionString string      `mapstructure:"azure_connection_string"`
}

type VectorStoreConfig struct {
	Type      VectorStoreType `mapstructure:"type" validate:"oneof=local weaviate qdrant"`
	LocalPath string          `mapstructure:"local_path"`
	Weaviate  WeaviateConfig  `mapstructure:"weaviate"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	Collection string `mapstructure:"collection"`
}

type HistoryConfig struct {
	Type          HistoryType `mapstructure:"type" validate:"oneof=none sqlite mongo firebase"`
	Limit         int         `mapstructure:"limit" validate:"gte=0"`
	SQLitePath    string      `mapstructure:"sqlite_path"`
	MongoURI      string      `mapstructure:"mongo_uri"`
	MongoDatabase string      `mapstructure:"mongo_database"`
	MessagesPath  string      `mapstructure:"messages_path"`
}

type AuthConfig struct {
	Provider                AuthProvider `mapstructure:"provider" validate:"oneof=firebase jwt"`
	FirebaseCredentialsFile string       `mapstructure:"firebase_credentials_file"`
	FirebaseProjectID       string       `mapstructure:"firebase_project_id"`
	FirebaseDatabaseURL     string       `mapstructure:"firebase_database_url"`
	JWTSecret               string       `mapstructure:"jwt_secret"`
}

type ChunkingConfig struct {
	MaxChunkSize     int `mapstructure:"max_chunk_size" validate:"gt=0"`
	OverlapSize      int `mapstructure:"overlap_size" validate:"gte=0,ltfield=MaxChunkSize"`
	EmbedBatchSize   int `mapstructure:"embed_batch_size" validate:"gt=0"`
	EmbedConcurrency int `mapstructure:"embed_concurrency" validate:"gt=0"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k" validate:"gt=0"`
}

type UploadConfig struct {
	MaxSize   int64 `mapstructure:"max_size" validate:"gte=0"`
	KeepFiles bool  `mapstructure:"keep_files"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "PDF Q&A")
	v.SetDefault("debug", false)
	v.SetDefault("port", "8000")
	v.SetDefault("model_provider", string(ModelProviderOllama))

	v.SetDefault("models.openai.api_key", "")
	v.SetDefault("models.openai.base_url", "")
	v.SetDefault("models.openai.llm_model", "gpt-3.5-turbo")
	v.SetDefault("models.openai.embeddings_model", "text-embedding-ada-002")
	v.SetDefault("models.ollama.url", "http://localhost:11434")
	v.SetDefault("models.ollama.llm_model", "llama3-chatqa")
	v.SetDefault("models.ollama.embeddings_model", "all-minilm")
	v.SetDefault("models.huggingface.api_token", "")
	v.SetDefault("models.huggingface.chat_url", "https://router.huggingface.co/v1")
	v.SetDefault("models.huggingface.inference_url", "https://router.huggingface.co/hf-inference")
	v.SetDefault("models.huggingface.llm_model", "sentence-transformers/all-MiniLM-L6-v2")
	v.SetDefault("models.huggingface.embeddings_model", "sentence-transformers/all-mpnet-base-v2")
	v.SetDefault("models.gemini.api_key", "")
	v.SetDefault("models.gemini.llm_model", "gemini-1.5-flash")
	v.SetDefault("models.gemini.embeddings_model", "text-embedding-004")

	v.SetDefault("storage.type", string(StorageTypeLocal))
	v.SetDefault("storage.local_path", "data/pdfs")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.gcp_credentials_file", "")
	v.SetDefault("storage.aws_region", "")
	v.SetDefault("storage.azure_connection_string", "")

	v.SetDefault("vector_store.type", string(VectorStoreLocal))
	v.SetDefault("vector_store.local_path", "data/vectors.db")
	v.SetDefault("vector_store.weaviate.host", "http://localhost:8080")
	v.SetDefault("vector_store.weaviate.api_key", "")
	v.SetDefault("vector_store.qdrant.host", "localhost")
	v.SetDefault("vector_store.qdrant.port", 6334)
	v.SetDefault("vector_store.qdrant.api_key", "")
	v.SetDefault("vector_store.qdrant.use_tls", false)
	v.SetDefault("vector_store.qdrant.collection", "pdf_chunks")

	v.SetDefault("history.type", string(HistoryNone))
	v.SetDefault("history.limit", 10)
	v.SetDefault("history.sqlite_path", "data/history.db")
	v.SetDefault("history.mongo_uri", "")
	v.SetDefault("history.mongo_database", "pdfqa")
	v.SetDefault("history.messages_path", "users/{uid}/messages")

	v.SetDefault("auth.provider", string(AuthFirebase))
	v.SetDefault("auth.firebase_credentials_file", "")
	v.SetDefault("auth.firebase_project_id", "")
	v.SetDefault("auth.firebase_database_url", "")
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("chunking.max_chunk_size", 1000)
	v.SetDefault("chunking.overlap_size", 100)
	v.SetDefault("chunking.embed_batch_size", 32)
	v.SetDefault("chunking.embed_concurrency", 2)
	v.SetDefault("retrieval.top_k", 4)
	v.SetDefault("upload.max_size", 10<<20)
	v.SetDefault("upload.keep_files", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// LoadConfig reads the YAML file at configPath (skipped when empty) and
// overlays environment variables. Nested keys map to env names with "."
// replaced by "_", secrets also bind to their conventional names.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.BindEnv("models.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("models.huggingface.api_token", "HF_API_TOKEN")
	v.BindEnv("models.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("vector_store.weaviate.api_key", "WEAVIATE_APIKEY")
	v.BindEnv("vector_store.qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("storage.azure_connection_string", "AZURE_CONNECTION_STRING")
	v.BindEnv("history.mongo_uri", "MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	storageType, err := ParseStorageType(string(config.Storage.Type))
	if err != nil {
		return nil, err
	}
	config.Storage.Type = storageType
	config.ModelProvider = ModelProvider(strings.ToLower(string(config.ModelProvider)))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ParseStorageType accepts any casing of local, GCP, AWS and Azure.
func ParseStorageType(s string) (StorageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return StorageTypeLocal, nil
	case "gcp":
		return StorageTypeGCP, nil
	case "aws":
		return StorageTypeAWS, nil
	case "azure":
		return StorageTypeAzure, nil
	}
	return "", fmt.Errorf("unknown storage type %q", s)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	switch c.ModelProvider {
	case ModelProviderOpenAI:
		if c.Models.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OpenAI API key not found"))
		}
	case ModelProviderGemini:
		if c.Models.Gemini.APIKey == "" {
			errs = append(errs, errors.New("gemini API key not found"))
		}
	}

	switch c.Storage.Type {
	case StorageTypeLocal:
		if c.Storage.LocalPath == "" {
			errs = append(errs, errors.New("storage.local_path is required for local storage"))
		}
	case StorageTypeGCP, StorageTypeAWS:
		if c.Storage.Bucket == "" {
			errs = append(errs, fmt.Errorf("storage.bucket is required for %s storage", c.Storage.Type))
		}
	case StorageTypeAzure:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket (container) is required for Azure storage"))
		}
		if c.Storage.AzureConnectionString == "" {
			errs = append(errs, errors.New("storage.azure_connection_string is required for Azure storage"))
		}
	}

	switch c.Auth.Provider {
	case AuthFirebase:
		if c.Auth.FirebaseCredentialsFile == "" {
			errs = append(errs, errors.New("auth.firebase_credentials_file is required for firebase auth"))
		}
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required for jwt auth"))
		}
	}

	switch c.History.Type {
	case HistoryMongo:
		if c.History.MongoURI == "" {
			errs = append(errs, errors.New("history.mongo_uri is required for mongo history"))
		}
	case HistoryFirebase:
		if c.Auth.FirebaseCredentialsFile == "" || c.Auth.FirebaseDatabaseURL == "" {
			errs = append(errs, errors.New("firebase history needs auth.firebase_credentials_file and auth.firebase_database_url"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", multierr.Combine(errs...))
	}
	return nil
}

// Active returns the model names configured for provider.
func (m ModelsConfig) Active(provider ModelProvider) ModelNames {
	switch provider {
	case ModelProviderOpenAI:
		return ModelNames{LLM: m.OpenAI.LLMModel, Embeddings: m.OpenAI.EmbeddingsModel}
	case ModelProviderHuggingFace:
		return ModelNames{LLM: m.HuggingFace.LLMModel, Embeddings: m.HuggingFace.EmbeddingsModel}
	case ModelProviderGemini:
		return ModelNames{LLM: m.Gemini.LLMModel, Embeddings: m.Gemini.EmbeddingsModel}
	default:
		return ModelNames{LLM: m.Ollama.LLMModel, Embeddings: m.Ollama.EmbeddingsModel}
	}
}

// WatchConfig calls onChange with the re-read config whenever the file at
// configPath is written. Invalid edits are reported through onError and
// the previous config stays in effect.
func WatchConfig(configPath string, onChange func(*Config), onError func(error)) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
