package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryConfig describes presentation defaults for a category. Items are
// not constrained to configured categories.
type CategoryConfig struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Icon          string   `json:"icon" yaml:"icon"`
	Color         string   `json:"color" yaml:"color"`
	MinThreshold  int      `json:"minThreshold" yaml:"minThreshold"`
	DynamicFields []string `json:"dynamicFields" yaml:"dynamicFields"`
}

// DefaultCategories is the built-in category list.
var DefaultCategories = []CategoryConfig{
	{ID: "1", Name: "Computers & Tablets", Icon: "Laptop", Color: "blue", MinThreshold: 5, DynamicFields: []string{"CPU Type", "RAM", "Storage"}},
	{ID: "2", Name: "Cellphones & Wearables", Icon: "Smartphone", Color: "indigo", MinThreshold: 8, DynamicFields: []string{"IMEI", "Screen Size", "Network"}},
	{ID: "3", Name: "TV, Audio & Video", Icon: "Tv", Color: "purple", MinThreshold: 3, DynamicFields: []string{"Resolution", "Panel Type"}},
	{ID: "4", Name: "Cameras", Icon: "Camera", Color: "rose", MinThreshold: 2, DynamicFields: []string{"Sensor Type", "Megapixels"}},
	{ID: "5", Name: "Gaming", Icon: "Gamepad2", Color: "emerald", MinThreshold: 10, DynamicFields: []string{"Platform", "Region Code"}},
	{ID: "6", Name: "Beauty", Icon: "Heart", Color: "pink", MinThreshold: 15, DynamicFields: []string{"Volume", "Ingredients"}},
	{ID: "7", Name: "Home & Kitchen", Icon: "Coffee", Color: "orange", MinThreshold: 5, DynamicFields: []string{"Wattage", "Material"}},
	{ID: "8", Name: "Sport & Training", Icon: "Dumbbell", Color: "cyan", MinThreshold: 4, DynamicFields: []string{"Weight", "Size"}},
	{ID: "9", Name: "Musical Instruments", Icon: "Music", Color: "violet", MinThreshold: 3, DynamicFields: []string{"Instrument Type", "Brand", "Condition"}},
}

type categoryFile struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// LoadCategories reads category configuration from a YAML file. An empty path
// returns DefaultCategories.
func LoadCategories(path string) ([]CategoryConfig, error) {
	if path == "" {
		return DefaultCategories, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: read categories: %w", err)
	}
	var file categoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("inventory: parse categories: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("inventory: %s defines no categories", path)
	}
	seen := make(map[string]struct{}, len(file.Categories))
	for i, c := range file.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("inventory: category %d has no name", i)
		}
		if c.MinThreshold < 0 {
			return nil, fmt.Errorf("inventory: category %q has negative minThreshold", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("inventory: duplicate category %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return file.Categories, nil
}
