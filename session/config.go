package session

const defaultLabelPrefix = "Chat"

// Config holds session store initialization parameters.
type Config struct {
	// Seed lists display labels to create at startup; the first seeded
	// session becomes active.
	Seed []string `json:"seed,omitempty"`
	// LabelPrefix is used for generated labels ("Chat" when empty).
	LabelPrefix string `json:"label_prefix,omitempty"`
}

// DefaultConfig returns the default session store configuration.
func DefaultConfig() Config {
	return Config{LabelPrefix: defaultLabelPrefix}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if len(source.Seed) > 0 {
		c.Seed = source.Seed
	}
	if source.LabelPrefix != "" {
		c.LabelPrefix = source.LabelPrefix
	}
}

// New creates a Store from configuration, seeding any configured sessions.
// When sessions are seeded, the first one is left active.
func New(cfg *Config) (*Store, error) {
	store := NewStore(cfg.LabelPrefix)
	for _, label := range cfg.Seed {
		if _, err := store.SelectOrCreate(label); err != nil {
			return nil, err
		}
	}
	if len(cfg.Seed) > 0 {
		if _, err := store.SelectOrCreate(cfg.Seed[0]); err != nil {
			return nil, err
		}
	}
	return store, nil
}
