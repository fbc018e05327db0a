package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"mini-voxel/internal/world"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for the streaming core and the front ends
type Config struct {
	World  WorldConfig  `yaml:"world"`
	Viewer ViewerConfig `yaml:"viewer"`
}

// WorldConfig holds chunk streaming and generation settings
type WorldConfig struct {
	ChunkEdgeLength      int     `yaml:"chunk_edge_length" validate:"min=1,max=128"`
	RenderDistanceChunks int     `yaml:"render_distance_chunks" validate:"min=1,max=64"`
	NoiseSeed            *uint32 `yaml:"noise_seed"`
	NoiseKind            string  `yaml:"noise_kind" validate:"omitempty,oneof=simplex value perlin"`
	NoiseScale           float64 `yaml:"noise_scale" validate:"gt=0"`
	Workers              int     `yaml:"workers" validate:"min=0,max=256"`
	MaxGeneratePerTick   int     `yaml:"max_generate_per_tick" validate:"min=0"`
	TickRateHz           int     `yaml:"tick_rate_hz" validate:"min=1,max=1000"`
}

// ViewerConfig holds window and camera settings
type ViewerConfig struct {
	WindowWidth  int     `yaml:"window_width" validate:"min=1"`
	WindowHeight int     `yaml:"window_height" validate:"min=1"`
	FOVDegrees   float32 `yaml:"fov_degrees" validate:"gt=0,lt=180"`
	MoveSpeed    float32 `yaml:"move_speed" validate:"gt=0"`
	VSync        bool    `yaml:"vsync"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkEdgeLength:      world.DefaultChunkEdge,
			RenderDistanceChunks: 8,
			NoiseKind:            string(world.NoiseSimplex),
			NoiseScale:           world.DefaultNoiseScale,
			TickRateHz:           20,
		},
		Viewer: ViewerConfig{
			WindowWidth:  1280,
			WindowHeight: 720,
			FOVDegrees:   60,
			MoveSpeed:    5,
			VSync:        true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// a .env file in the working directory and VOXEL_* environment variables,
// in that order. A missing seed is replaced with a random one.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found (this is OK if using environment variables): %v", err)
	}
	cfg.applyEnv()

	if cfg.World.NoiseSeed == nil {
		seed := world.RandomSeed()
		cfg.World.NoiseSeed = &seed
		log.Printf("config: no noise seed configured, using %d", seed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	w := &c.World
	w.ChunkEdgeLength = getIntEnv("VOXEL_CHUNK_EDGE", w.ChunkEdgeLength)
	w.RenderDistanceChunks = getIntEnv("VOXEL_RENDER_DISTANCE", w.RenderDistanceChunks)
	w.NoiseKind = getEnv("VOXEL_NOISE", w.NoiseKind)
	w.NoiseScale = getFloatEnv("VOXEL_NOISE_SCALE", w.NoiseScale)
	w.Workers = getIntEnv("VOXEL_WORKERS", w.Workers)
	w.MaxGeneratePerTick = getIntEnv("VOXEL_MAX_GENERATE_PER_TICK", w.MaxGeneratePerTick)
	w.TickRateHz = getIntEnv("VOXEL_TICK_RATE", w.TickRateHz)
	if v := os.Getenv("VOXEL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			log.Printf("Warning: invalid seed value for VOXEL_SEED: %s, ignoring", v)
		} else {
			s := uint32(seed)
			w.NoiseSeed = &s
		}
	}
}

var validate = validator.New()

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Validate checks value ranges on every section
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalid, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Seed returns the configured noise seed, or 0 before Load resolved it.
func (w WorldConfig) Seed() uint32 {
	if w.NoiseSeed == nil {
		return 0
	}
	return *w.NoiseSeed
}

// WorldOptions converts the settings into world construction options.
// Renderer and Mesher are left for the caller.
func (w WorldConfig) WorldOptions() (world.Options, error) {
	kind, err := world.ParseNoiseKind(w.NoiseKind)
	if err != nil {
		return world.Options{}, err
	}
	return world.Options{
		Edge:           w.ChunkEdgeLength,
		RenderDistance: w.RenderDistanceChunks,
		Noise:          world.NewNoiseField(kind, w.Seed()),
		Generator: world.GeneratorOptions{
			Scale:      w.NoiseScale,
			Workers:    w.Workers,
			MaxPerTick: w.MaxGeneratePerTick,
		},
	}, nil
}

// Helper functions for environment variable access

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return intValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid float value for %s: %s, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
