package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# sitegen configuration
site:
  title: "My Site"
  description: "A site built from markdown"
  base_url: "https://example.com"
  tags_prefix: "tags"
  # rss_default: true

content:
  dir: "./content"
  # debounce: 50ms

output:
  dir: "./public"

# rebuild:
#   interval: 15m

# nats:
#   url: "nats://localhost:4222"
#   subject: "sitegen.rebuild"

# history:
#   db: "./sitegen-history.db"

logging:
  level: info
  format: text
`

// Init writes an example configuration file. Existing files are only
// replaced with force.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}
	return nil
}
