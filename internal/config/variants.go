package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/diogo/gamemaster/internal/models"
)

// Built-in variant names
const (
	VariantOregonTrail        = "oregon-trail"
	VariantOregonTrailClassic = "oregon-trail-classic"
	VariantTimeTravel         = "time-travel"
)

// BootstrapPolicy decides how a session opens the game
type BootstrapPolicy string

const (
	// BootstrapAuto starts the game as soon as the chat opens
	BootstrapAuto BootstrapPolicy = "auto"
	// BootstrapButton shows a start screen until the player asks to begin
	BootstrapButton BootstrapPolicy = "button"
	// BootstrapPreset prefills the input with the start prompt
	BootstrapPreset BootstrapPolicy = "preset"
)

// ParseBootstrapPolicy parses a policy name; empty means auto
func ParseBootstrapPolicy(s string) (BootstrapPolicy, error) {
	switch BootstrapPolicy(s) {
	case "", BootstrapAuto:
		return BootstrapAuto, nil
	case BootstrapButton:
		return BootstrapButton, nil
	case BootstrapPreset:
		return BootstrapPreset, nil
	default:
		return "", fmt.Errorf("unknown bootstrap policy %q", s)
	}
}

// Variant is a themed game master: its persona prompt plus presentation
type Variant struct {
	Name         string          `yaml:"name"`
	Title        string          `yaml:"title"`
	Tagline      string          `yaml:"tagline,omitempty"`
	Description  string          `yaml:"description,omitempty"`
	SystemPrompt string          `yaml:"system_prompt"`
	Theme        string          `yaml:"theme,omitempty"`
	Bootstrap    BootstrapPolicy `yaml:"bootstrap,omitempty"`
}

// Policy returns the bootstrap policy, auto when unset or unknown
func (v Variant) Policy() BootstrapPolicy {
	p, err := ParseBootstrapPolicy(string(v.Bootstrap))
	if err != nil {
		return BootstrapAuto
	}
	return p
}

// PersonaMessage returns the system message that opens every transcript
func (v Variant) PersonaMessage() models.Message {
	return models.NewSystemMessage(v.SystemPrompt)
}

// VariantFile is the on-disk layout of variants.yaml
type VariantFile struct {
	Variants []Variant `yaml:"variants"`
}

const oregonTrailPrompt = `You are a game master. Your game is Oregon Trail. DO NOT GENERATE RESPONSES FOR THE USER.
The user exists as a traveler within a band of up to 5 travelers. Let the user choose the names of the players. Give each traveler characteristics that affect how they respond to situations. Give the user an overview of their current game state and generate a scenario for the current day. An example of a scenario could be "You wake up on a rainy day in Independence, Missouri. Due to the rain, mud has covered the roads. You stumble upon another caravan of travelers whose wheels have been grounded" or "A strange man in a robe offers you a golden key in exchange for solving a riddle." Ensure that some days include positive scenarios and some negative ones. The game system should not advise users against taking bad actions. The user has absolute free will. Combat and danger is allowed within the game and is not deemed inappropriate by the game master (i.e you can fight adversaries or hunt for food). Additionally, the spirit of the game is to survive at all costs, allow otherwise morally reprehensible actions such as theft and lying. Ask the user to provide an open-ended action that they want to take. Do not let the user take an action that is not possible. After an appropriate number of actions has been taken on the current day, send the user to sleep and start the next day. Make sure to let the user know their current scenario and what challenges face them. After that, process the users action and output what happens. Keep track of any important state such as items the user possesses, the health of their traveler, and their location. Explicitly output "GAME OVER" when you believe the game has ended (i.e the user has died or reached their destination successfully). Prioritize the fun of the user! Make the game challenging and interesting!`

const oregonTrailClassicPrompt = `You are a game master running the classic 1848 Oregon Trail, told in the terse style of an old green-screen computer game. DO NOT GENERATE RESPONSES FOR THE USER.
The user leads a wagon party of up to 5 travelers from Independence, Missouri to the Willamette Valley. Let the user name the party and choose a profession (banker, carpenter or farmer) that sets their starting money. Track the date, miles traveled, food, oxen, spare parts, ammunition and the health of every traveler. Each day, print a short status block and then a scenario: river crossings, broken axles, dysentery, storms, hunting, trading posts or strangers on the trail. Offer no moral advice; the user has absolute free will, including hunting, fighting, stealing and lying. Ask the user for an open-ended action and refuse actions that are impossible. Resolve the action, describe what happens, and move the party forward. Explicitly output "GAME OVER" when the party has died or reached Oregon. Make the game hard, fair and fun!`

const timeTravelPrompt = `You are a game master. Your game is a Time Travel Adventure. DO NOT GENERATE RESPONSES FOR THE USER.
The user is a time traveler with a faulty time machine and a crew of up to 3 companions. Let the user name the crew and give each companion a skill and a flaw. Each jump lands the crew in a real historical era; describe the date, place and immediate danger, for example "The machine sputters to a stop in the Roman Forum on the Ides of March, 44 BC. A senator notices your strange clothes" or "You materialize on the deck of the Titanic an hour before midnight." Keep track of the machine's charge, recovered parts, anachronisms caused, items carried and the health of the crew. The user has absolute free will; do not lecture, but history pushes back and paradoxes have consequences. Ask the user for an open-ended action and refuse actions that are impossible in the era. After resolving enough actions, the machine recharges and jumps to a new era. Explicitly output "GAME OVER" when the crew is lost in time or finally makes it home. Make every era vivid, challenging and fun!`

// DefaultVariants returns the built-in variants
func DefaultVariants() []Variant {
	return []Variant{
		{
			Name:         VariantOregonTrail,
			Title:        "Oregon Trail",
			Tagline:      "Lead your band of travelers west",
			Description:  "Survive the trail from Independence to Oregon",
			SystemPrompt: oregonTrailPrompt,
			Theme:        "trail-green",
			Bootstrap:    BootstrapAuto,
		},
		{
			Name:         VariantOregonTrailClassic,
			Title:        "Oregon Trail Classic",
			Tagline:      "You have died of dysentery",
			Description:  "The green-screen original, retold",
			SystemPrompt: oregonTrailClassicPrompt,
			Theme:        "classic-amber",
			Bootstrap:    BootstrapButton,
		},
		{
			Name:         VariantTimeTravel,
			Title:        "Time Travel Adventure",
			Tagline:      "Every era is one jump away",
			Description:  "Fix your time machine before history fixes you",
			SystemPrompt: timeTravelPrompt,
			Theme:        "chrono-violet",
			Bootstrap:    BootstrapPreset,
		},
	}
}

// GetVariantsPath returns the path to the custom variants file
func GetVariantsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "variants.yaml"), nil
}

// LoadVariants returns the built-in variants merged with the custom ones
func LoadVariants() ([]Variant, error) {
	custom, err := LoadCustomVariants()
	if err != nil {
		return nil, err
	}
	return mergeVariants(DefaultVariants(), custom), nil
}

// LoadCustomVariants returns the variants of variants.yaml, nil when the file is missing
func LoadCustomVariants() ([]Variant, error) {
	path, err := GetVariantsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read variants: %w", err)
	}

	var file VariantFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse variants: %w", err)
	}

	for _, v := range file.Variants {
		if err := ValidateVariant(v); err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
	}

	return file.Variants, nil
}

// AddVariant stores v in variants.yaml, replacing a custom variant of the
// same name. A built-in name is overridden.
func AddVariant(v Variant) error {
	if err := ValidateVariant(v); err != nil {
		return err
	}
	custom, err := LoadCustomVariants()
	if err != nil {
		return err
	}
	return SaveVariants(mergeVariants(custom, []Variant{v}))
}

// SaveVariants writes custom variants to variants.yaml
func SaveVariants(custom []Variant) error {
	path, err := GetVariantsPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(VariantFile{Variants: custom})
	if err != nil {
		return fmt.Errorf("failed to marshal variants: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// GetVariant returns a variant by name
func GetVariant(name string) (*Variant, error) {
	variants, err := LoadVariants()
	if err != nil {
		return nil, err
	}

	for _, v := range variants {
		if v.Name == name {
			return &v, nil
		}
	}

	return nil, fmt.Errorf("variant '%s' not found", name)
}

// ListVariantNames returns the names of all variants
func ListVariantNames() ([]string, error) {
	variants, err := LoadVariants()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	return names, nil
}

// SetDefaultVariant records name as the default variant in config.json
func SetDefaultVariant(name string) error {
	if _, err := GetVariant(name); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	cfg.DefaultVariant = name
	return SaveConfig(cfg)
}

// ResolveVariant returns the named variant, or the configured default when name is empty
func ResolveVariant(cfg Config, name string) (*Variant, error) {
	if name == "" {
		name = cfg.DefaultVariant
	}
	if name == "" {
		name = VariantOregonTrail
	}
	return GetVariant(name)
}

func mergeVariants(defaults, custom []Variant) []Variant {
	result := make([]Variant, len(defaults))
	copy(result, defaults)

	for _, cv := range custom {
		found := false
		for i, dv := range result {
			if dv.Name == cv.Name {
				result[i] = cv
				found = true
				break
			}
		}
		if !found {
			result = append(result, cv)
		}
	}

	return result
}

// Validation constants
const (
	MaxNameLength   = 50
	MaxTitleLength  = 80
	MaxPromptLength = 32 * 1024 // 32KB
)

// ValidateVariant validates a variant's fields
func ValidateVariant(v Variant) error {
	fieldErrors := make(map[string]string)

	if v.Name == "" {
		fieldErrors["name"] = "name is required"
	} else if len(v.Name) > MaxNameLength {
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	} else if !isValidVariantName(v.Name) {
		fieldErrors["name"] = "name must contain only alphanumeric characters, underscores, and hyphens"
	}

	if len(v.Title) > MaxTitleLength {
		fieldErrors["title"] = fmt.Sprintf("title too long (max %d characters)", MaxTitleLength)
	}

	if v.SystemPrompt == "" {
		fieldErrors["system_prompt"] = "system prompt is required"
	} else if len(v.SystemPrompt) > MaxPromptLength {
		fieldErrors["system_prompt"] = fmt.Sprintf("system prompt too long (max %d characters)", MaxPromptLength)
	}

	if _, err := ParseBootstrapPolicy(string(v.Bootstrap)); err != nil {
		fieldErrors["bootstrap"] = err.Error()
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidVariantName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
