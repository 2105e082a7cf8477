package dataloop

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PromptItemSuffix is the file extension given to prompt items on import.
//
// Naming contract (v1): a prompt item created from a table row with primary
// key N is stored under the item name "N" + PromptItemSuffix, e.g. "42.json".
// Export recovers the primary key by stripping exactly this suffix, so the
// suffix must stay fixed-length (5 bytes) and must not change without also
// migrating existing items.
const PromptItemSuffix = ".json"

// PromptMimeText is the mimetype of a plain-text prompt element.
const PromptMimeText = "application/text"

// PromptItem is this system's normalized unit of a question/response pair
// used for annotation. It serializes to the Dataloop prompt-item JSON file
// format.
type PromptItem struct {
	Name    string
	Prompts []Prompt
}

// Prompt is one prompt turn identified by a key unique within the item.
type Prompt struct {
	Key      string
	Elements []PromptElement
}

// PromptElement is one piece of prompt content.
type PromptElement struct {
	MimeType string `json:"mimetype"`
	Value    string `json:"value"`
}

// NewPromptItem creates an empty prompt item with the given base name.
func NewPromptItem(name string) *PromptItem {
	return &PromptItem{Name: name}
}

// AddUserPrompt appends a plain-text user prompt keyed by the next ordinal.
func (p *PromptItem) AddUserPrompt(text string) {
	key := strconv.Itoa(len(p.Prompts) + 1)
	p.Prompts = append(p.Prompts, Prompt{
		Key:      key,
		Elements: []PromptElement{{MimeType: PromptMimeText, Value: text}},
	})
}

// FileName returns the item name with the naming-contract suffix applied.
func (p *PromptItem) FileName() string {
	return p.Name + PromptItemSuffix
}

// FirstPromptKey returns the key of the first prompt, or "" when the item
// has no prompts.
func (p *PromptItem) FirstPromptKey() string {
	if len(p.Prompts) == 0 {
		return ""
	}
	return p.Prompts[0].Key
}

// promptItemFile is the on-platform JSON shape of a prompt item.
type promptItemFile struct {
	Shebang  string                     `json:"shebang"`
	Metadata promptItemFileMetadata     `json:"metadata"`
	Prompts  map[string][]PromptElement `json:"prompts"`
}

type promptItemFileMetadata struct {
	DLType string `json:"dltype"`
}

// MarshalContent serializes the prompt item to its JSON file content.
func (p *PromptItem) MarshalContent() ([]byte, error) {
	file := promptItemFile{
		Shebang:  "dataloop",
		Metadata: promptItemFileMetadata{DLType: "prompt"},
		Prompts:  make(map[string][]PromptElement, len(p.Prompts)),
	}
	for _, prompt := range p.Prompts {
		file.Prompts[prompt.Key] = prompt.Elements
	}
	return json.Marshal(file)
}

// ParsePromptItem decodes prompt-item JSON content downloaded from the
// platform. Prompt keys are ordered numerically when all keys are integers
// (the import-time convention), lexically otherwise, so the first prompt is
// stable across decodes.
func ParsePromptItem(itemName string, content []byte) (*PromptItem, error) {
	var file promptItemFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to decode prompt item %q: %w", itemName, err)
	}
	if file.Metadata.DLType != "prompt" {
		return nil, fmt.Errorf("item %q is not a prompt item (dltype %q)", itemName, file.Metadata.DLType)
	}

	keys := make([]string, 0, len(file.Prompts))
	for key := range file.Prompts {
		keys = append(keys, key)
	}
	sortPromptKeys(keys)

	item := &PromptItem{Name: strings.TrimSuffix(itemName, PromptItemSuffix)}
	for _, key := range keys {
		item.Prompts = append(item.Prompts, Prompt{Key: key, Elements: file.Prompts[key]})
	}
	return item, nil
}

// sortPromptKeys orders keys numerically when possible, lexically otherwise.
func sortPromptKeys(keys []string) {
	allNumeric := true
	for _, key := range keys {
		if _, err := strconv.Atoi(key); err != nil {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		return
	}
	sort.Strings(keys)
}

// RowID recovers the source-table primary key from a prompt item name per
// the naming contract: the name must be "<integer>" + PromptItemSuffix.
func RowID(itemName string) (int64, error) {
	if !strings.HasSuffix(itemName, PromptItemSuffix) {
		return 0, fmt.Errorf("item name %q does not follow the prompt naming contract (missing %q suffix)", itemName, PromptItemSuffix)
	}
	base := strings.TrimSuffix(itemName, PromptItemSuffix)
	id, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item name %q does not follow the prompt naming contract (%q is not an integer row id)", itemName, base)
	}
	return id, nil
}
