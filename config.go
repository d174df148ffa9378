package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type config struct {
	Listen string `yaml:"listen"`
	// Public URL turtles use to reach this server, filled into the kernel.
	BaseURL string `yaml:"base_url"`
	// Path prefix of every endpoint.
	Key      string `yaml:"key"`
	StateDir string `yaml:"state_dir"`
	// Per RPC call deadline for remote turtles.
	CallTimeoutMs int `yaml:"call_timeout_ms"`
	// Digs per forced step before giving up. 0 retries forever.
	ForceRetryLimit int `yaml:"force_retry_limit"`

	Miner     minerConfig     `yaml:"miner"`
	Fuel      fuelConfig      `yaml:"fuel"`
	Path      pathConfig      `yaml:"path"`
	Inventory inventoryConfig `yaml:"inventory"`
	Sim       simConfig       `yaml:"sim"`
}

type minerConfig struct {
	ShaftDepth int       `yaml:"shaft_depth"`
	Torch      string    `yaml:"torch"`
	Ores       oreConfig `yaml:"ores"`
}

type oreConfig struct {
	Suffixes []string `yaml:"suffixes"`
	Names    []string `yaml:"names"`
}

type fuelConfig struct {
	Items    []string `yaml:"items"`
	MinLevel int      `yaml:"min_level"`
}

type pathConfig struct {
	Blocks []string `yaml:"blocks"`
	Fluids []string `yaml:"fluids"`
}

type inventoryConfig struct {
	Chest          string        `yaml:"chest"`
	ChestTimeoutMs int           `yaml:"chest_timeout_ms"`
	Keep           []keepEntry   `yaml:"keep"`
	Supply         []supplyEntry `yaml:"supply"`
}

// Parameters of the simulated world used by -sim.
type simConfig struct {
	Seed       int64 `yaml:"seed"`
	Radius     int   `yaml:"radius"`
	Veins      int   `yaml:"veins"`
	VeinSize   int   `yaml:"vein_size"`
	Iterations int   `yaml:"iterations"`
}

func defaultConfig() config {
	return config{
		Listen:          ":4456",
		BaseURL:         "http://localhost:4456",
		Key:             "/72ceda8b",
		StateDir:        "state",
		CallTimeoutMs:   10000,
		ForceRetryLimit: 64,
		Miner: minerConfig{
			ShaftDepth: 7,
			Torch:      "minecraft:torch",
			Ores: oreConfig{
				Suffixes: []string{"_ore"},
				Names:    []string{"minecraft:ancient_debris"},
			},
		},
		Fuel: fuelConfig{
			Items:    []string{"minecraft:coal", "minecraft:coal_block"},
			MinLevel: 500,
		},
		Path: pathConfig{
			Blocks: []string{"minecraft:cobblestone", "minecraft:cobbled_deepslate", "minecraft:dirt"},
			Fluids: []string{"minecraft:water", "minecraft:lava"},
		},
		Inventory: inventoryConfig{
			Chest:          "enderchests:ender_chest",
			ChestTimeoutMs: 1000,
			Keep: []keepEntry{
				{Name: "minecraft:cobblestone", MaxCount: 64},
			},
			Supply: []supplyEntry{
				{Name: "minecraft:torch", Count: 64},
				{Name: "minecraft:coal", Count: 64},
			},
		},
		Sim: simConfig{
			Seed:       1337,
			Radius:     48,
			Veins:      120,
			VeinSize:   8,
			Iterations: 4,
		},
	}
}

// Loads the YAML config at path over the defaults. An empty path just
// returns the defaults. NINJA_* environment variables win over both.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *config) applyEnv(getenv func(string) string) error {
	for name, dst := range map[string]*string{
		"NINJA_LISTEN":    &c.Listen,
		"NINJA_BASE_URL":  &c.BaseURL,
		"NINJA_KEY":       &c.Key,
		"NINJA_STATE_DIR": &c.StateDir,
	} {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	for name, dst := range map[string]*int{
		"NINJA_SHAFT_DEPTH":       &c.Miner.ShaftDepth,
		"NINJA_FORCE_RETRY_LIMIT": &c.ForceRetryLimit,
		"NINJA_FUEL_MIN_LEVEL":    &c.Fuel.MinLevel,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

func (c config) validate() error {
	switch {
	case c.Miner.ShaftDepth < 1:
		return fmt.Errorf("miner.shaft_depth must be at least 1, got %d", c.Miner.ShaftDepth)
	case c.ForceRetryLimit < 0:
		return fmt.Errorf("force_retry_limit must not be negative, got %d", c.ForceRetryLimit)
	case c.Inventory.Chest == "":
		return fmt.Errorf("inventory.chest must be set")
	case len(c.Fuel.Items) == 0:
		return fmt.Errorf("fuel.items must not be empty")
	}
	return nil
}
